package plugin

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownPlugin is returned by Lookup for an unregistered name.
	ErrUnknownPlugin = errors.New("plugin: unknown plugin")
	// ErrDuplicatePlugin is returned by Register for a name in use.
	ErrDuplicatePlugin = errors.New("plugin: duplicate plugin")
)

// Registry maps plugin names to descriptors.
type Registry struct {
	descs map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descs: make(map[string]Descriptor)}
}

// Register adds a descriptor.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return errors.New("plugin: empty plugin name")
	}

	if d.Factory == nil {
		return fmt.Errorf("plugin: %s: nil factory", d.Name)
	}

	if _, exists := r.descs[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, d.Name)
	}

	r.descs[d.Name] = d

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err.Error())
	}
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	d, ok := r.descs[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}

	return d, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descs))
	for name := range r.descs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New looks up name and instantiates it.
func (r *Registry) New(name string, ctx Context) (*Instance, error) {
	d, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	return NewInstance(d, ctx)
}
