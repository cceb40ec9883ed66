package session

import (
	"strings"

	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/tuning"
)

// ReferencePolicy decides when a disabled reference tone goes quiet while
// inputs are still held.
type ReferencePolicy int

const (
	// DropImmediately stops the drone as soon as it is disabled.
	DropImmediately ReferencePolicy = iota
	// DropAtNextTransition waits for the next allocation or release.
	DropAtNextTransition
)

func (p ReferencePolicy) String() string {
	if p == DropAtNextTransition {
		return "deferred"
	}
	return "immediate"
}

// ParseReferencePolicy accepts "immediate" or "deferred".
func ParseReferencePolicy(s string) (ReferencePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediate":
		return DropImmediately, true
	case "deferred":
		return DropAtNextTransition, true
	}
	return DropImmediately, false
}

// Config is the tuning state shared by the router, the renderers and the
// sinks.
type Config struct {
	BaseFrequency        float64
	EDODivisions         int
	RatioSets            []tuning.RatioSet
	ActiveRatioSlot      int
	RatioMode            int
	CentsDown            float64
	CentsUp              float64
	ReferenceOffsetCents float64
	ReferenceEnabled     bool
	ReferencePolicy      ReferencePolicy
	Waveform             channel.Waveform
}

// DefaultConfig matches the explorer's starting state: 220 Hz base, 12-EDO,
// a 4:5:6:7:8 chord and a drone one octave down that follows any input.
func DefaultConfig() Config {
	return Config{
		BaseFrequency:        220,
		EDODivisions:         12,
		RatioSets:            []tuning.RatioSet{{4, 5, 6, 7, 8}},
		CentsDown:            1400,
		CentsUp:              2000,
		ReferenceOffsetCents: 1200,
		ReferenceEnabled:     true,
		ReferencePolicy:      DropImmediately,
		Waveform:             channel.Sawtooth,
	}
}

// ActiveRatioSet returns the selected ratio slot, or nil if there is none.
func (c Config) ActiveRatioSet() tuning.RatioSet {
	if c.ActiveRatioSlot < 0 || c.ActiveRatioSlot >= len(c.RatioSets) {
		return nil
	}
	return c.RatioSets[c.ActiveRatioSlot]
}

// RatioRoot is the index of the ratio the ratio keyboard measures from.
func (c Config) RatioRoot() int {
	if c.RatioMode < 0 || c.RatioMode >= len(c.ActiveRatioSet()) {
		return 0
	}
	return c.RatioMode
}

// ReferenceCents is where the drone sits relative to the base frequency.
func (c Config) ReferenceCents() float64 {
	return -c.ReferenceOffsetCents
}

// EDORatioOffsets places the active ratio set on the EDO keyboard: for each
// step that is nearest to one of the ratios, the ratio's offset in cents.
func (c Config) EDORatioOffsets() map[int]float64 {
	set := c.ActiveRatioSet()
	if !set.Playable() || c.EDODivisions < 2 {
		return nil
	}
	cents := make([]float64, len(set))
	for i := range set {
		cents[i] = set.Cents(c.RatioRoot(), i)
	}
	return tuning.NearestRatioOffsets(cents, c.EDODivisions)
}
