// Package session owns the channel pool and the tuning configuration of one
// running explorer, and keeps the reference drone in step with them.
package session

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/tuning"
)

// Session is the single owner of mutable explorer state. It is driven from
// one goroutine; hosts serialise their events onto it.
type Session struct {
	cfg  Config
	pool *channel.Pool
	log  *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for channel and config events.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConfig replaces the default configuration. Values are not validated;
// hosts that take user input should go through the setters instead.
func WithConfig(cfg Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// New creates a session with one channel per sink. sinks[0] plays the
// reference tone.
func New(sinks []channel.Sink, opts ...Option) *Session {
	s := &Session{
		cfg:  DefaultConfig(),
		pool: channel.NewPool(sinks),
		log:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pool.SetWaveform(s.cfg.Waveform)
	s.tuneReference()
	return s
}

// Config returns a copy of the current tuning configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// PoolSize is the number of channels including the reference slot.
func (s *Session) PoolSize() int {
	return s.pool.Len()
}

// Allocate returns a free playable channel without assigning it.
func (s *Session) Allocate() *channel.Channel {
	return s.pool.Allocate()
}

// Find returns the channel owned by an input, or nil.
func (s *Session) Find(kind channel.Source, correlator int) *channel.Channel {
	return s.pool.Find(kind, correlator)
}

// Engage assigns ch to an input at the given pitch and starts it.
func (s *Session) Engage(ch *channel.Channel, kind channel.Source, correlator int, pitch channel.Pitch) bool {
	if !s.pool.Assign(ch, kind, correlator, pitch, s.frequency(pitch)) {
		return false
	}
	s.log.Debug("engaged", "channel", ch.Index, "source", kind, "id", ch.SourceID, "cents", pitch.Cents)
	s.updateReference()
	return true
}

// Retune moves an engaged channel to a new pitch.
func (s *Session) Retune(ch *channel.Channel, pitch channel.Pitch) {
	if ch == nil {
		return
	}
	s.pool.Retune(ch, pitch, s.frequency(pitch))
}

// Release frees ch (nil is allowed) and re-evaluates the reference tone.
// The re-evaluation happens even without a channel because a physical input
// may have been held without ever getting one.
func (s *Session) Release(ch *channel.Channel) {
	if ch != nil && ch.Active() {
		s.log.Debug("released", "channel", ch.Index, "source", ch.Source)
	}
	s.pool.Release(ch)
	s.updateReference()
}

// SetPointerHeld records the physical pointer button state.
func (s *Session) SetPointerHeld(held bool) {
	s.pool.SetPointerHeld(held)
}

// AllOff silences every channel, the reference included.
func (s *Session) AllOff() {
	s.pool.StopAll()
	s.log.Info("all channels off")
}

func (s *Session) frequency(p channel.Pitch) float64 {
	return tuning.FrequencyAt(s.cfg.BaseFrequency, p.Cents)
}

func (s *Session) referencePitch() (channel.Pitch, float64) {
	cents := s.cfg.ReferenceCents()
	return channel.Free(cents), tuning.FrequencyAt(s.cfg.BaseFrequency, cents)
}

func (s *Session) tuneReference() {
	pitch, hz := s.referencePitch()
	s.pool.TuneReference(pitch, hz)
}

// updateReference starts the drone when something is playing and the drone
// is enabled, and stops it when nothing is playing or it has been disabled.
func (s *Session) updateReference() {
	ref := s.pool.Reference()
	anyActive := s.pool.CountActiveNonReference() > 0

	switch {
	case s.cfg.ReferenceEnabled && anyActive && !ref.Active():
		pitch, hz := s.referencePitch()
		s.pool.ActivateReference(pitch, hz)
		s.log.Debug("reference on", "hz", hz)
	case ref.Active() && (!anyActive || !s.cfg.ReferenceEnabled):
		s.pool.DeactivateReference()
		s.log.Debug("reference off")
	}
}
