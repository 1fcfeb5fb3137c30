// Package plugins collects every instrument and effect into one registry.
package plugins

import (
	"github.com/cwbudde/algo-mjack/plugin"
	"github.com/cwbudde/algo-mjack/plugins/fx"
	"github.com/cwbudde/algo-mjack/plugins/synth"
)

// DefaultRegistry returns a registry holding every built-in plugin.
func DefaultRegistry() *plugin.Registry {
	r := plugin.NewRegistry()

	for _, d := range synth.All() {
		r.MustRegister(d)
	}

	for _, d := range fx.All() {
		r.MustRegister(d)
	}

	return r
}
