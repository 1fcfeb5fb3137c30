package plugin

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// State is the saved form of an instance's controls.
type State struct {
	Info string         `json:"info"`
	CC   map[string]int `json:"cc"`
}

// SaveState writes the persisted controls of c as indented JSON.
func SaveState(w io.Writer, info string, c *Controls) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(State{Info: info, CC: c.Snapshot()}); err != nil {
		return fmt.Errorf("plugin: encode state: %w", err)
	}

	return nil
}

// LoadState reads JSON state into c and returns the keys it did not
// recognise, sorted. A document without a "cc" object is an error.
func LoadState(r io.Reader, c *Controls) ([]string, error) {
	var s State

	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("plugin: decode state: %w", err)
	}

	if s.CC == nil {
		return nil, fmt.Errorf("plugin: state has no \"cc\" object")
	}

	unknown := c.Restore(s.CC)
	sort.Strings(unknown)

	return unknown, nil
}
