// Package channel holds the fixed pool of voice slots shared by every input
// source. Slot 0 is reserved for the reference drone.
package channel

const (
	// ReferenceIndex is the slot reserved for the reference tone.
	ReferenceIndex = 0
	// DefaultSize is one reference slot plus nine playable slots.
	DefaultSize = 10
)

// Channel is one voice slot.
type Channel struct {
	Index    int
	Source   Source
	Pitch    Pitch
	SourceID int
}

// Active reports whether anything owns the channel.
func (c Channel) Active() bool {
	return c.Source != Off
}

// Pool is a fixed array of channels, each bound to one Sink for its whole
// life. A Pool is not safe for concurrent use; drive it from the UI loop.
type Pool struct {
	channels    []Channel
	sinks       []Sink
	pointerHeld bool
}

// NewPool creates one channel per sink. Pools always have at least one
// playable slot; missing sinks are filled with Discard.
func NewPool(sinks []Sink) *Pool {
	s := make([]Sink, len(sinks), max(len(sinks), 2))
	copy(s, sinks)
	for len(s) < 2 {
		s = append(s, Discard{})
	}

	p := &Pool{
		channels: make([]Channel, len(s)),
		sinks:    s,
	}
	for i := range p.channels {
		p.channels[i].Index = i
	}
	return p
}

// Len returns the pool size including the reference slot.
func (p *Pool) Len() int {
	return len(p.channels)
}

// Allocate returns the first free playable channel without assigning it, or
// nil when every playable slot is taken. Nothing is queued or stolen.
func (p *Pool) Allocate() *Channel {
	for i := ReferenceIndex + 1; i < len(p.channels); i++ {
		if p.channels[i].Source == Off {
			return &p.channels[i]
		}
	}
	return nil
}

// Find returns the channel owned by the given input. Keyboard and touch
// inputs are matched on their correlator; there is only ever one pointer, so
// the correlator is ignored for it.
func (p *Pool) Find(kind Source, correlator int) *Channel {
	switch kind {
	case Keyboard, Touch, Pointer:
	default:
		return nil
	}
	for i := ReferenceIndex + 1; i < len(p.channels); i++ {
		ch := &p.channels[i]
		if ch.Source != kind {
			continue
		}
		if kind == Pointer || ch.SourceID == correlator {
			return ch
		}
	}
	return nil
}

// Assign hands ch to an input, tunes its sink to hz and starts it. It
// refuses the reference slot, non-input sources and empty pitches.
func (p *Pool) Assign(ch *Channel, kind Source, correlator int, pitch Pitch, hz float64) bool {
	if ch == nil || ch.Index == ReferenceIndex || !pitch.IsSet() {
		return false
	}
	switch kind {
	case Keyboard, Touch:
	case Pointer:
		correlator = 0
	default:
		return false
	}

	*ch = Channel{Index: ch.Index, Source: kind, Pitch: pitch, SourceID: correlator}
	sink := p.sinks[ch.Index]
	sink.SetFrequency(hz)
	sink.Start()
	return true
}

// Retune replaces the pitch of an engaged channel.
func (p *Pool) Retune(ch *Channel, pitch Pitch, hz float64) {
	if ch == nil || ch.Source == Off || !pitch.IsSet() {
		return
	}
	ch.Pitch = pitch
	p.sinks[ch.Index].SetFrequency(hz)
}

// Release stops the channel's sink and returns the slot to Off. Releasing a
// free channel or the reference slot does nothing.
func (p *Pool) Release(ch *Channel) {
	if ch == nil || ch.Index == ReferenceIndex || ch.Source == Off {
		return
	}
	p.sinks[ch.Index].Stop()
	*ch = Channel{Index: ch.Index}
}

// Reference returns the reserved slot.
func (p *Pool) Reference() *Channel {
	return &p.channels[ReferenceIndex]
}

// ActivateReference starts the drone.
func (p *Pool) ActivateReference(pitch Pitch, hz float64) {
	ref := p.Reference()
	*ref = Channel{Index: ReferenceIndex, Source: Reference, Pitch: pitch}
	sink := p.sinks[ReferenceIndex]
	sink.SetFrequency(hz)
	sink.Start()
}

// DeactivateReference stops the drone if it is sounding.
func (p *Pool) DeactivateReference() {
	ref := p.Reference()
	if ref.Source != Reference {
		return
	}
	p.sinks[ReferenceIndex].Stop()
	*ref = Channel{Index: ReferenceIndex}
}

// TuneReference retunes the drone's sink whether or not it is sounding.
func (p *Pool) TuneReference(pitch Pitch, hz float64) {
	ref := p.Reference()
	if ref.Source == Reference {
		ref.Pitch = pitch
	}
	p.sinks[ReferenceIndex].SetFrequency(hz)
}

// SetPointerHeld records whether the pointer button is physically down. It
// counts as activity even when no channel could be allocated for it.
func (p *Pool) SetPointerHeld(held bool) {
	p.pointerHeld = held
}

// PointerHeld reports the last value given to SetPointerHeld.
func (p *Pool) PointerHeld() bool {
	return p.pointerHeld
}

// CountActiveNonReference counts channels owned by inputs, plus one while
// the pointer is held.
func (p *Pool) CountActiveNonReference() int {
	n := 0
	for _, ch := range p.channels {
		if ch.Source != Off && ch.Source != Reference {
			n++
		}
	}
	if p.pointerHeld {
		n++
	}
	return n
}

// SetWaveform changes the waveform of every sink.
func (p *Pool) SetWaveform(w Waveform) {
	for _, s := range p.sinks {
		s.SetWaveform(w)
	}
}

// StopAll silences and frees every channel, the reference included.
func (p *Pool) StopAll() {
	for i := range p.channels {
		if p.channels[i].Source != Off {
			p.sinks[i].Stop()
		}
		p.channels[i] = Channel{Index: i}
	}
	p.pointerHeld = false
}

// Snapshot copies the channel states for renderers.
func (p *Pool) Snapshot() []Channel {
	out := make([]Channel, len(p.channels))
	copy(out, p.channels)
	return out
}

// Each calls fn for every engaged input channel.
func (p *Pool) Each(fn func(ch *Channel)) {
	for i := ReferenceIndex + 1; i < len(p.channels); i++ {
		if p.channels[i].Source != Off {
			fn(&p.channels[i])
		}
	}
}
