// Package config holds the runtime tunables read by every tick and the process
// settings loaded from the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
)

// ErrOutOfRange is returned when a tunable is set outside its allowed range.
var ErrOutOfRange = errors.New("value out of range")

// ErrUnknownTunable is returned when a tunable name is not recognized.
var ErrUnknownTunable = errors.New("unknown tunable")

// Render is the set of named numeric tunables adjustable at runtime.
type Render struct {
	ParticleCount    float64 `json:"particleCount"    env:"PARTICLE_COUNT"    envDefault:"3500"`
	CardSize         float64 `json:"cardSize"         env:"CARD_SIZE"         envDefault:"1"`
	RotationSpeed    float64 `json:"rotationSpeed"    env:"ROTATION_SPEED"    envDefault:"0.1"`
	FloatSpeed       float64 `json:"floatSpeed"       env:"FLOAT_SPEED"       envDefault:"0.1"`
	BloomStrength    float64 `json:"bloomStrength"    env:"BLOOM_STRENGTH"    envDefault:"1.5"`
	BloomRadius      float64 `json:"bloomRadius"      env:"BLOOM_RADIUS"      envDefault:"0.4"`
	BloomThreshold   float64 `json:"bloomThreshold"   env:"BLOOM_THRESHOLD"   envDefault:"0.85"`
	ReadScale        float64 `json:"readScale"        env:"READ_SCALE"        envDefault:"4.5"`
	PinchSensitivity float64 `json:"pinchSensitivity" env:"PINCH_SENSITIVITY" envDefault:"0.05"`
}

// Default returns the initial tunables.
func Default() Render {
	return Render{
		ParticleCount:    3500,
		CardSize:         1,
		RotationSpeed:    0.1,
		FloatSpeed:       0.1,
		BloomStrength:    1.5,
		BloomRadius:      0.4,
		BloomThreshold:   0.85,
		ReadScale:        4.5,
		PinchSensitivity: 0.05,
	}
}

// Range is the inclusive interval a tunable may take, with the slider step
// used by settings panels.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Ranges maps every tunable name to its allowed range.
var Ranges = map[string]Range{
	"particleCount":    {Min: 1000, Max: 10000, Step: 100},
	"cardSize":         {Min: 0.1, Max: 2, Step: 0.05},
	"rotationSpeed":    {Min: 0, Max: 0.5, Step: 0.01},
	"floatSpeed":       {Min: 0, Max: 0.5, Step: 0.01},
	"bloomStrength":    {Min: 0, Max: 5, Step: 0.1},
	"bloomRadius":      {Min: 0, Max: 2, Step: 0.05},
	"bloomThreshold":   {Min: 0, Max: 1, Step: 0.01},
	"readScale":        {Min: 1, Max: 10, Step: 0.1},
	"pinchSensitivity": {Min: 0.01, Max: 0.2, Step: 0.005},
}

// Names returns the tunable names in a stable order.
func Names() []string {
	names := make([]string, 0, len(Ranges))
	for name := range Ranges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Render) field(name string) *float64 {
	switch name {
	case "particleCount":
		return &r.ParticleCount
	case "cardSize":
		return &r.CardSize
	case "rotationSpeed":
		return &r.RotationSpeed
	case "floatSpeed":
		return &r.FloatSpeed
	case "bloomStrength":
		return &r.BloomStrength
	case "bloomRadius":
		return &r.BloomRadius
	case "bloomThreshold":
		return &r.BloomThreshold
	case "readScale":
		return &r.ReadScale
	case "pinchSensitivity":
		return &r.PinchSensitivity
	}
	return nil
}

// Get returns the value of the named tunable.
func (r Render) Get(name string) (float64, error) {
	f := r.field(name)
	if f == nil {
		return 0, fmt.Errorf("%s: %w", name, ErrUnknownTunable)
	}
	return *f, nil
}

// Set assigns the named tunable, rejecting values outside its range.
func (r *Render) Set(name string, v float64) error {
	f := r.field(name)
	if f == nil {
		return fmt.Errorf("%s: %w", name, ErrUnknownTunable)
	}
	rng := Ranges[name]
	if !rng.Contains(v) {
		return fmt.Errorf("%s=%g not in [%g, %g]: %w", name, v, rng.Min, rng.Max, ErrOutOfRange)
	}
	*f = v
	return nil
}

// Validate checks every tunable against its range.
func (r Render) Validate() error {
	var errs []error
	for _, name := range Names() {
		v := *r.field(name)
		rng := Ranges[name]
		if !rng.Contains(v) {
			errs = append(errs, fmt.Errorf("%s=%g not in [%g, %g]: %w", name, v, rng.Min, rng.Max, ErrOutOfRange))
		}
	}
	return errors.Join(errs...)
}

// Clamp returns a copy with every tunable limited to its range.
func (r Render) Clamp() Render {
	for _, name := range Names() {
		f := r.field(name)
		*f = Ranges[name].Clamp(*f)
	}
	return r
}

// Shared publishes the current tunables to the tick. Writers replace the whole
// value; the last write wins and readers see it on their next Snapshot.
type Shared struct {
	v atomic.Pointer[Render]
}

// NewShared returns a holder initialized with r.
func NewShared(r Render) *Shared {
	s := &Shared{}
	s.Store(r)
	return s
}

// Snapshot returns the current tunables.
func (s *Shared) Snapshot() Render {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return Default()
}

// Store replaces the current tunables.
func (s *Shared) Store(r Render) {
	s.v.Store(&r)
}

// Update applies fn to a copy of the current tunables and stores the result
// if fn succeeds. Concurrent updates are never lost: fn is re-run on the
// newer value if another writer got in first, so it must not have side
// effects.
func (s *Shared) Update(fn func(*Render) error) (Render, error) {
	for {
		old := s.v.Load()
		r := Default()
		if old != nil {
			r = *old
		}
		if err := fn(&r); err != nil {
			return s.Snapshot(), err
		}
		if s.v.CompareAndSwap(old, &r) {
			return r, nil
		}
	}
}
