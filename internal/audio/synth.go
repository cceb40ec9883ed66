// Package audio renders the channel pool through an oscillator bank played
// by oto.
package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/icco/xentune/internal/channel"
)

const (
	sampleRate   = 44100
	channelCount = 2 // stereo
	bitDepth     = 2 // 16-bit

	attackStep   = 0.002
	releaseDecay = 0.9992
	silence      = 0.001
	glide        = 0.005
)

// voice is one oscillator. frequency glides towards target so that drags
// across the centboard do not click.
type voice struct {
	waveform  channel.Waveform
	target    float64
	frequency float64
	phase     float64
	envelope  float64
	releasing bool
	active    bool
}

// Synth is a fixed bank of oscillators, one per channel. The audio device
// pulls samples from it on its own goroutine, so every voice change takes
// the lock.
type Synth struct {
	mu           sync.Mutex
	otoCtx       *oto.Context
	player       *oto.Player
	voices       []*voice
	masterVolume float64
}

// New creates a bank of n voices without an audio device. Use Read to pull
// samples.
func New(n int) *Synth {
	s := &Synth{
		voices:       make([]*voice, n),
		masterVolume: 0.3,
	}
	for i := range s.voices {
		s.voices[i] = &voice{}
	}
	return s
}

// Open creates a bank of n voices and starts streaming it to the default
// audio device.
func Open(n int) (*Synth, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-readyChan

	s := New(n)
	s.otoCtx = otoCtx
	s.player = otoCtx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

// Len is the number of voices.
func (s *Synth) Len() int {
	return len(s.voices)
}

// Voice returns the sink driving voice i.
func (s *Synth) Voice(i int) channel.Sink {
	return &Voice{synth: s, index: i}
}

// Sinks returns one sink per voice, in order, ready for a channel pool.
func (s *Synth) Sinks() []channel.Sink {
	sinks := make([]channel.Sink, len(s.voices))
	for i := range sinks {
		sinks[i] = s.Voice(i)
	}
	return sinks
}

// Read renders interleaved 16-bit stereo samples. It never fails; a
// silent bank produces zeros.
func (s *Synth) Read(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	numSamples := len(buf) / (channelCount * bitDepth)

	for i := 0; i < numSamples; i++ {
		var sample float64

		for _, v := range s.voices {
			if !v.active {
				continue
			}
			sample += generateWave(v.waveform, v.phase) * v.envelope * 0.2

			v.frequency += (v.target - v.frequency) * glide
			v.phase += v.frequency / sampleRate
			if v.phase >= 1.0 {
				v.phase -= math.Floor(v.phase)
			}

			if v.releasing {
				v.envelope *= releaseDecay
				if v.envelope < silence {
					v.active = false
					v.envelope = 0
				}
			} else if v.envelope < 1.0 {
				v.envelope = min(v.envelope+attackStep, 1.0)
			}
		}

		sample *= s.masterVolume
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		sampleInt := int16(sample * 32767)
		idx := i * channelCount * bitDepth
		buf[idx] = byte(sampleInt)
		buf[idx+1] = byte(sampleInt >> 8)
		buf[idx+2] = byte(sampleInt)
		buf[idx+3] = byte(sampleInt >> 8)
	}

	return len(buf), nil
}

func generateWave(w channel.Waveform, phase float64) float64 {
	switch w {
	case channel.Sine:
		return math.Sin(2 * math.Pi * phase)
	case channel.Square:
		if phase < 0.5 {
			return 0.8
		}
		return -0.8
	case channel.Sawtooth:
		return 2*phase - 1
	case channel.Triangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Playing counts voices that are still audible, including ones fading out.
func (s *Synth) Playing() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, v := range s.voices {
		if v.active {
			n++
		}
	}
	return n
}

// AllNotesOff fades out every voice.
func (s *Synth) AllNotesOff() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.voices {
		if v.active {
			v.releasing = true
		}
	}
}

// SetVolume sets the master volume (0.0 - 1.0)
func (s *Synth) SetVolume(vol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.masterVolume = min(max(vol, 0), 1)
}

// Close stops the stream. The bank keeps its state and can still be read.
func (s *Synth) Close() error {
	if s.player == nil {
		return nil
	}
	s.player.Pause()
	return nil
}

// Voice is the channel.Sink for one oscillator of a Synth.
type Voice struct {
	synth *Synth
	index int
}

func (v *Voice) with(fn func(*voice)) {
	v.synth.mu.Lock()
	defer v.synth.mu.Unlock()
	fn(v.synth.voices[v.index])
}

// SetWaveform changes the oscillator shape without restarting it.
func (v *Voice) SetWaveform(w channel.Waveform) {
	v.with(func(o *voice) { o.waveform = w })
}

// SetFrequency retunes the oscillator. A silent voice jumps straight to the
// new frequency; a sounding one glides.
func (v *Voice) SetFrequency(hz float64) {
	v.with(func(o *voice) {
		o.target = hz
		if !o.active {
			o.frequency = hz
		}
	})
}

// Start begins the attack. Starting a sounding voice only cancels its
// release.
func (v *Voice) Start() {
	v.with(func(o *voice) {
		if !o.active {
			o.phase = 0
			o.envelope = 0
			o.frequency = o.target
		}
		o.active = true
		o.releasing = false
	})
}

// Stop begins the release.
func (v *Voice) Stop() {
	v.with(func(o *voice) {
		if o.active {
			o.releasing = true
		}
	})
}
