package midiout

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarterNote = 960
	recordBPM           = 120
)

type recorded struct {
	at  time.Duration
	msg midi.Message
}

// Recorder captures outgoing messages with their timing and writes them as
// a Standard MIDI File.
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	start  time.Time
	events []recorded
}

// NewRecorder starts a recording now.
func NewRecorder() *Recorder {
	return newRecorderAt(time.Now)
}

func newRecorderAt(now func() time.Time) *Recorder {
	return &Recorder{now: now, start: now()}
}

// Send records msg. It matches SendFunc so it can be combined with a port
// through Tee.
func (r *Recorder) Send(msg midi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, recorded{
		at:  r.now().Sub(r.start),
		msg: append(midi.Message(nil), msg...),
	})
	return nil
}

// Len is the number of recorded messages.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func ticks(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d.Seconds() * recordBPM / 60 * ticksPerQuarterNote)
}

// WriteFile saves the recording: a tempo track followed by one track with
// every message in order.
func (r *Recorder) WriteFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(recordBPM))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	var track smf.Track
	var lastTick uint32
	for _, ev := range r.events {
		tick := max(ticks(ev.at), lastTick)
		track.Add(tick-lastTick, ev.msg)
		lastTick = tick
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return fmt.Errorf("error adding track: %w", err)
	}

	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
