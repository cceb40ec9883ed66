package session

import (
	"math"
	"strconv"
	"strings"

	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/tuning"
)

// The setters below follow the control-panel contract: an invalid value is
// ignored, the previous value stays, and the return value reports whether
// anything changed.

// SetBaseFrequency changes the base frequency. The drone and every engaged
// channel are retuned to keep their cents.
func (s *Session) SetBaseFrequency(hz float64) bool {
	if !(hz > 0) || math.IsInf(hz, 1) {
		s.log.Debug("ignored base frequency", "value", hz)
		return false
	}
	s.cfg.BaseFrequency = hz
	s.tuneReference()
	s.pool.Each(func(ch *channel.Channel) {
		s.pool.Retune(ch, ch.Pitch, s.frequency(ch.Pitch))
	})
	s.log.Debug("base frequency", "hz", hz)
	return true
}

// SetBaseFrequencyText parses a form value for SetBaseFrequency.
func (s *Session) SetBaseFrequencyText(text string) bool {
	v, ok := parseNumber(text)
	return ok && s.SetBaseFrequency(v)
}

// SetEDODivisions changes the EDO size; it must be at least 2. Channels
// already playing EDO steps keep their pitch until moved, and steps the new
// keyboard no longer has become free pitches.
func (s *Session) SetEDODivisions(n int) bool {
	if n < 2 {
		s.log.Debug("ignored edo", "value", n)
		return false
	}
	s.cfg.EDODivisions = n
	s.freeStaleSteps()
	s.log.Debug("edo", "divisions", n)
	return true
}

// SetEDOText parses a form value for SetEDODivisions.
func (s *Session) SetEDOText(text string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	return err == nil && s.SetEDODivisions(n)
}

// StepEDO nudges the EDO size, never going below 2.
func (s *Session) StepEDO(offset int) bool {
	return s.SetEDODivisions(max(s.cfg.EDODivisions+offset, 2))
}

// SetReferenceOffset sets how many cents below base the drone sits.
func (s *Session) SetReferenceOffset(cents float64) bool {
	if !(cents >= 0) || math.IsInf(cents, 1) {
		s.log.Debug("ignored reference offset", "value", cents)
		return false
	}
	s.cfg.ReferenceOffsetCents = cents
	s.tuneReference()
	return true
}

// SetReferenceOffsetText parses a form value for SetReferenceOffset.
func (s *Session) SetReferenceOffsetText(text string) bool {
	v, ok := parseNumber(text)
	return ok && s.SetReferenceOffset(v)
}

// SetRatioText replaces the ratio slots from text such as "4:5:6 8:9:10".
func (s *Session) SetRatioText(text string) bool {
	sets, ok := tuning.ParseRatioSets(text)
	if !ok {
		s.log.Debug("ignored ratios", "value", text)
		return false
	}
	s.cfg.RatioSets = sets
	if s.cfg.ActiveRatioSlot >= len(sets) {
		s.cfg.ActiveRatioSlot = 0
	}
	if s.cfg.RatioMode >= len(s.cfg.ActiveRatioSet()) {
		s.cfg.RatioMode = 0
	}
	s.freeStaleSteps()
	s.log.Debug("ratios", "sets", len(sets))
	return true
}

// SelectRatioSlot makes slot i the ratio keyboard.
func (s *Session) SelectRatioSlot(i int) bool {
	if i < 0 || i >= len(s.cfg.RatioSets) {
		return false
	}
	s.cfg.ActiveRatioSlot = i
	if s.cfg.RatioMode >= len(s.cfg.ActiveRatioSet()) {
		s.cfg.RatioMode = 0
	}
	s.freeStaleSteps()
	return true
}

// NextRatioSlot cycles through the ratio slots.
func (s *Session) NextRatioSlot() bool {
	if len(s.cfg.RatioSets) < 2 {
		return false
	}
	return s.SelectRatioSlot((s.cfg.ActiveRatioSlot + 1) % len(s.cfg.RatioSets))
}

// SelectRatioMode picks which ratio of the active set acts as the root.
func (s *Session) SelectRatioMode(i int) bool {
	if i < 0 || i >= len(s.cfg.ActiveRatioSet()) {
		return false
	}
	s.cfg.RatioMode = i
	return true
}

// SetCentsRange sets the visible span of the cents axis.
func (s *Session) SetCentsRange(down, up float64) bool {
	if !(down >= 0) || !(up >= 0) || down+up <= 0 || math.IsInf(down+up, 0) {
		return false
	}
	s.cfg.CentsDown, s.cfg.CentsUp = down, up
	return true
}

// SetReferenceEnabled turns automatic drone activation on or off. With the
// immediate policy the drone follows right away; with the deferred policy
// it changes at the next allocation or release.
func (s *Session) SetReferenceEnabled(enabled bool) {
	s.cfg.ReferenceEnabled = enabled
	if s.cfg.ReferencePolicy == DropImmediately {
		s.updateReference()
	}
}

// SetReferencePolicy chooses how SetReferenceEnabled takes effect.
func (s *Session) SetReferencePolicy(p ReferencePolicy) {
	s.cfg.ReferencePolicy = p
}

// SetWaveform changes the waveform of every channel.
func (s *Session) SetWaveform(w channel.Waveform) {
	s.cfg.Waveform = w
	s.pool.SetWaveform(w)
}

// freeStaleSteps turns held ratio and EDO steps that no longer exist on the
// keyboards into free pitches at the same cents, so they keep sounding.
func (s *Session) freeStaleSteps() {
	set := s.cfg.ActiveRatioSet()
	s.pool.Each(func(ch *channel.Channel) {
		stale := false
		if i, ok := ch.Pitch.RatioStep(); ok {
			stale = !set.Playable() || i >= len(set)
		}
		if i, ok := ch.Pitch.EDOStep(); ok {
			stale = i > s.cfg.EDODivisions
		}
		if stale {
			s.log.Debug("step freed", "channel", ch.Index, "cents", ch.Pitch.Cents)
			s.pool.Retune(ch, channel.Free(ch.Pitch.Cents), s.frequency(ch.Pitch))
		}
	})
}

func parseNumber(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
