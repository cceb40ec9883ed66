package channel

import "strings"

// Waveform selects the oscillator shape of a sink.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

var waveformNames = [...]string{"sine", "square", "sawtooth", "triangle"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return "unknown"
	}
	return waveformNames[w]
}

// Next cycles through the waveforms.
func (w Waveform) Next() Waveform {
	return (w + 1) % Waveform(len(waveformNames))
}

// ParseWaveform accepts the names returned by String, case-insensitively.
func ParseWaveform(name string) (Waveform, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), true
		}
	}
	return Sine, false
}

// Sink is the sound output behind one channel. Implementations must accept
// redundant Start and Stop calls.
type Sink interface {
	SetWaveform(w Waveform)
	SetFrequency(hz float64)
	Start()
	Stop()
}

// Discard is a Sink that does nothing.
type Discard struct{}

func (Discard) SetWaveform(Waveform) {}
func (Discard) SetFrequency(float64) {}
func (Discard) Start()               {}
func (Discard) Stop()                {}

// Fanout drives several sinks as one, e.g. the oscillator bank and a MIDI
// port at the same time.
type Fanout []Sink

func (f Fanout) SetWaveform(w Waveform) {
	for _, s := range f {
		s.SetWaveform(w)
	}
}

func (f Fanout) SetFrequency(hz float64) {
	for _, s := range f {
		s.SetFrequency(hz)
	}
}

func (f Fanout) Start() {
	for _, s := range f {
		s.Start()
	}
}

func (f Fanout) Stop() {
	for _, s := range f {
		s.Stop()
	}
}
