// Package midiout plays the channel pool on a MIDI port. Each channel gets
// its own MIDI channel so that pitch bend can carry the microtonal offset of
// every voice independently.
package midiout

import (
	"math"

	"github.com/icco/xentune/internal/channel"
	"gitlab.com/gomidi/midi/v2"
)

const (
	drumChannel = 9
	maxChannels = 15

	// DefaultBendRange is the pitch bend range in semitones requested from
	// the receiver with RPN 0.
	DefaultBendRange = 2

	defaultVelocity = 100
)

// SendFunc delivers one message, e.g. the function returned by midi.SendTo.
type SendFunc func(msg midi.Message) error

// ChannelFor maps a pool index to a MIDI channel, skipping the drum channel.
func ChannelFor(index int) (uint8, bool) {
	if index < 0 || index >= maxChannels {
		return 0, false
	}
	if index >= drumChannel {
		index++
	}
	return uint8(index), true //nolint:gosec // bounded above
}

// NoteFor splits a frequency into the nearest MIDI key and the remaining
// offset in semitones, within [-0.5, 0.5] unless the key was clamped.
func NoteFor(hz float64) (uint8, float64) {
	if !(hz > 0) {
		return 0, 0
	}
	n := 69 + 12*math.Log2(hz/440)
	key := math.Max(0, math.Min(127, math.Round(n)))
	return uint8(key), n - key
}

// BendValue converts an offset in semitones into a 14-bit signed bend for
// the given range, clamped to what the message can carry.
func BendValue(semitones, bendRange float64) int16 {
	if bendRange <= 0 {
		return 0
	}
	v := math.Round(semitones / bendRange * 8192)
	return int16(math.Max(-8192, math.Min(8191, v)))
}

// program numbers (General MIDI, zero based) standing in for each waveform.
var programs = map[channel.Waveform]uint8{
	channel.Sine:     73, // flute
	channel.Square:   80, // square lead
	channel.Sawtooth: 81, // sawtooth lead
	channel.Triangle: 79, // ocarina
}

// Sink drives one MIDI channel. While a note sounds, retuning within the
// bend range only sends pitch bend; moving further re-triggers the note.
type Sink struct {
	send      SendFunc
	channel   uint8
	bendRange float64

	hz      float64
	key     uint8
	playing bool
	err     error
}

// NewSink creates a sink on MIDI channel ch. Call Setup before playing.
func NewSink(send SendFunc, ch uint8) *Sink {
	return &Sink{send: send, channel: ch, bendRange: DefaultBendRange}
}

// Sinks creates one sink per pool index, n at most 15, and sets each up.
func Sinks(send SendFunc, n int) ([]channel.Sink, error) {
	sinks := make([]channel.Sink, 0, n)
	for i := 0; i < n; i++ {
		ch, ok := ChannelFor(i)
		if !ok {
			break
		}
		s := NewSink(send, ch)
		if err := s.Setup(); err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

// Setup sets the receiver's bend range through RPN 0 and resets the bend.
func (s *Sink) Setup() error {
	semis := uint8(s.bendRange)
	cents := uint8(math.Round((s.bendRange - float64(semis)) * 100))
	for _, msg := range []midi.Message{
		midi.ControlChange(s.channel, 101, 0),
		midi.ControlChange(s.channel, 100, 0),
		midi.ControlChange(s.channel, 6, semis),
		midi.ControlChange(s.channel, 38, cents),
		midi.ControlChange(s.channel, 101, 127),
		midi.ControlChange(s.channel, 100, 127),
		midi.Pitchbend(s.channel, 0),
	} {
		if err := s.send(msg); err != nil {
			return err
		}
	}
	return nil
}

// Channel is the MIDI channel this sink plays on.
func (s *Sink) Channel() uint8 {
	return s.channel
}

// Err returns the first send error, if any. The channel.Sink methods cannot
// report errors, so they are kept here.
func (s *Sink) Err() error {
	return s.err
}

func (s *Sink) emit(msg midi.Message) {
	if err := s.send(msg); err != nil && s.err == nil {
		s.err = err
	}
}

// SetWaveform selects the General MIDI program closest to w.
func (s *Sink) SetWaveform(w channel.Waveform) {
	if p, ok := programs[w]; ok {
		s.emit(midi.ProgramChange(s.channel, p))
	}
}

// SetFrequency retunes the sink.
func (s *Sink) SetFrequency(hz float64) {
	s.hz = hz
	if !s.playing {
		return
	}
	if !(hz > 0) {
		s.Stop()
		return
	}

	n := 69 + 12*math.Log2(hz/440)
	if offset := n - float64(s.key); math.Abs(offset) <= s.bendRange {
		s.emit(midi.Pitchbend(s.channel, BendValue(offset, s.bendRange)))
		return
	}
	s.emit(midi.NoteOff(s.channel, s.key))
	s.strike()
}

// Start sounds the current frequency.
func (s *Sink) Start() {
	if s.playing || !(s.hz > 0) {
		return
	}
	s.strike()
}

// Stop releases the sounding note.
func (s *Sink) Stop() {
	if !s.playing {
		return
	}
	s.emit(midi.NoteOff(s.channel, s.key))
	s.playing = false
}

func (s *Sink) strike() {
	key, offset := NoteFor(s.hz)
	s.emit(midi.Pitchbend(s.channel, BendValue(offset, s.bendRange)))
	s.emit(midi.NoteOn(s.channel, key, defaultVelocity))
	s.key = key
	s.playing = true
}
