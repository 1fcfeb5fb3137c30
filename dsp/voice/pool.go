// Package voice assigns note keys to a fixed pool of monophonic voices.
//
// The pool only tracks which key each slot plays and whether it is held.
// Synthesis state (oscillators, filters, envelopes) lives with the caller,
// indexed by the slot number the pool returns, and is never freed: a slot
// keeps its state across silences so gliding into it stays continuous.
package voice

import (
	"fmt"
	"math"
)

const (
	// MaxVoices is the largest supported pool.
	MaxVoices = 32
	// DefaultVoices is the pool size used when WithVoices is not given.
	DefaultVoices = 8
	// NoKey marks a slot that has never been assigned.
	NoKey = -1
)

// Assign tells the caller how a NoteOn landed in the pool.
type Assign int

const (
	// Fresh means a released slot was taken: trigger envelopes and set the
	// frequency.
	Fresh Assign = iota
	// Retrigger means the key already had a slot.
	Retrigger
	// Glide means a held neighbouring key's slot was retargeted. Keep the
	// envelope and phase and move only the pitch.
	Glide
	// Stolen means no slot was free and a held one was taken over.
	Stolen
)

func (a Assign) String() string {
	switch a {
	case Fresh:
		return "fresh"
	case Retrigger:
		return "retrigger"
	case Glide:
		return "glide"
	case Stolen:
		return "stolen"
	default:
		return fmt.Sprintf("Assign(%d)", int(a))
	}
}

// StealPolicy selects the slot used when no released slot exists.
type StealPolicy int

const (
	// StealRoundRobin takes the next slot in rotation.
	StealRoundRobin StealPolicy = iota
	// StealQuietest takes the slot with the least energy as reported by
	// the callback passed to WithEnergy. Under this policy every slot is a
	// candidate, held or not, and keys are matched whether held or not.
	StealQuietest
)

// Option mutates pool configuration.
type Option func(*config) error

type config struct {
	voices int
	policy StealPolicy
	energy func(int) float64
	glide  bool
}

func defaultConfig() config {
	return config{voices: DefaultVoices, policy: StealRoundRobin, glide: true}
}

// WithVoices sets the pool size in [1, MaxVoices].
func WithVoices(n int) Option {
	return func(cfg *config) error {
		if n < 1 || n > MaxVoices {
			return fmt.Errorf("voice: pool size must be in [1,%d]: %d", MaxVoices, n)
		}

		cfg.voices = n

		return nil
	}
}

// WithStealPolicy sets how a slot is chosen when the pool is full.
func WithStealPolicy(p StealPolicy) Option {
	return func(cfg *config) error {
		if p != StealRoundRobin && p != StealQuietest {
			return fmt.Errorf("voice: unknown steal policy: %d", p)
		}

		cfg.policy = p

		return nil
	}
}

// WithEnergy sets the per-slot energy callback used by StealQuietest.
func WithEnergy(fn func(idx int) float64) Option {
	return func(cfg *config) error {
		cfg.energy = fn
		return nil
	}
}

// WithGlide enables or disables gliding into a held neighbouring key.
func WithGlide(enabled bool) Option {
	return func(cfg *config) error {
		cfg.glide = enabled
		return nil
	}
}

// Pool is a fixed-size voice allocator. It does not allocate after New.
type Pool struct {
	keys   [MaxVoices]int
	held   [MaxVoices]bool
	n      int
	next   int
	policy StealPolicy
	energy func(int) float64
	glide  bool
}

// New creates a pool with every slot unassigned.
func New(opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.policy == StealQuietest && cfg.energy == nil {
		return nil, fmt.Errorf("voice: StealQuietest requires an energy callback")
	}

	p := &Pool{n: cfg.voices, policy: cfg.policy, energy: cfg.energy, glide: cfg.glide}
	p.Reset()

	return p, nil
}

// Len returns the pool size.
func (p *Pool) Len() int { return p.n }

// Key returns the key assigned to slot idx, or NoKey.
func (p *Pool) Key(idx int) int { return p.keys[idx] }

// Held reports whether slot idx has a key down.
func (p *Pool) Held(idx int) bool { return p.held[idx] }

// Active returns the number of held slots.
func (p *Pool) Active() int {
	n := 0
	for i := range p.n {
		if p.held[i] {
			n++
		}
	}

	return n
}

// NoteOn assigns key to a slot and reports how it was placed.
//
// In order: a slot already holding key is retriggered; a slot holding an
// adjacent key (key±1) glides to key; otherwise the rotation cursor walks
// the pool for a released slot. When none is found the policy picks a
// held slot to steal.
func (p *Pool) NoteOn(key int) (int, Assign) {
	if p.policy == StealQuietest {
		return p.noteOnQuietest(key)
	}

	for i := range p.n {
		if p.held[i] && p.keys[i] == key {
			return i, Retrigger
		}
	}

	if p.glide {
		for i := range p.n {
			if p.held[i] && (p.keys[i] == key-1 || p.keys[i] == key+1) {
				p.keys[i] = key
				return i, Glide
			}
		}
	}

	for range p.n {
		i := p.advance()
		if !p.held[i] {
			p.assign(i, key)
			return i, Fresh
		}
	}

	i := p.advance()
	p.assign(i, key)

	return i, Stolen
}

func (p *Pool) noteOnQuietest(key int) (int, Assign) {
	for i := range p.n {
		if p.keys[i] == key {
			p.held[i] = true
			return i, Retrigger
		}
	}

	best, bestEnergy := 0, math.Inf(1)
	for i := range p.n {
		if e := p.energy(i); e < bestEnergy {
			best, bestEnergy = i, e
		}
	}

	kind := Fresh
	if p.held[best] {
		kind = Stolen
	}

	p.assign(best, key)

	return best, kind
}

// NoteOff releases every slot holding key and returns the first one. It is
// a no-op when no held slot matches.
func (p *Pool) NoteOff(key int) (int, bool) {
	idx, ok := -1, false

	for i := range p.n {
		if p.held[i] && p.keys[i] == key {
			p.held[i] = false
			if !ok {
				idx, ok = i, true
			}
		}
	}

	return idx, ok
}

// Reset unassigns every slot and rewinds the rotation.
func (p *Pool) Reset() {
	for i := range p.keys {
		p.keys[i] = NoKey
	}

	p.held = [MaxVoices]bool{}
	p.next = 0
}

func (p *Pool) advance() int {
	i := p.next

	p.next++
	if p.next >= p.n {
		p.next = 0
	}

	return i
}

func (p *Pool) assign(i, key int) {
	p.keys[i] = key
	p.held[i] = true
}
