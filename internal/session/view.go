package session

import (
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/tuning"
)

// View is what a renderer needs for one frame. It is a copy; renderers can
// keep it without holding on to session state.
type View struct {
	Config   Config
	Channels []channel.Channel

	// Cents of every sounding channel, the drone included.
	PlayedCents []float64
	// Ratio keyboard and EDO keyboard buttons currently held.
	PlayedRatioSteps []int
	PlayedEDOSteps   []int
}

// Snapshot captures the current state for drawing. Taking a snapshot never
// changes the session, so hosts may redraw as often as they like.
func (s *Session) Snapshot() View {
	v := View{
		Config:   s.cfg,
		Channels: s.pool.Snapshot(),
	}
	v.Config.RatioSets = make([]tuning.RatioSet, len(s.cfg.RatioSets))
	for i, set := range s.cfg.RatioSets {
		v.Config.RatioSets[i] = append(tuning.RatioSet(nil), set...)
	}
	for _, ch := range v.Channels {
		if !ch.Active() {
			continue
		}
		v.PlayedCents = append(v.PlayedCents, ch.Pitch.Cents)
		if i, ok := ch.Pitch.RatioStep(); ok {
			v.PlayedRatioSteps = append(v.PlayedRatioSteps, i)
		}
		if i, ok := ch.Pitch.EDOStep(); ok {
			v.PlayedEDOSteps = append(v.PlayedEDOSteps, i)
		}
	}
	return v
}

// RatioHeld reports whether ratio button i is being played.
func (v View) RatioHeld(i int) bool {
	for _, p := range v.PlayedRatioSteps {
		if p == i {
			return true
		}
	}
	return false
}

// EDOHeld reports whether EDO button i is being played.
func (v View) EDOHeld(i int) bool {
	for _, p := range v.PlayedEDOSteps {
		if p == i {
			return true
		}
	}
	return false
}

// Active counts sounding input channels, the drone excluded.
func (v View) Active() int {
	n := 0
	for _, ch := range v.Channels {
		if ch.Active() && ch.Source != channel.Reference {
			n++
		}
	}
	return n
}
