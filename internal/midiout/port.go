package midiout

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// OutPorts lists the names of the available MIDI outputs.
func OutPorts() []string {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}

// Port is an open MIDI output.
type Port struct {
	out  drivers.Out
	send SendFunc
}

// Open connects to the output whose name contains name.
func Open(name string) (*Port, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("finding MIDI output %q: %w", name, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", out.String(), err)
	}
	return &Port{out: out, send: send}, nil
}

// Name of the connected port.
func (p *Port) Name() string {
	return p.out.String()
}

// Send delivers msg to the port.
func (p *Port) Send(msg midi.Message) error {
	return p.send(msg)
}

// AllNotesOff sends CC 123 on every channel the sinks may use.
func (p *Port) AllNotesOff() error {
	var errs []error
	for i := 0; i < maxChannels; i++ {
		ch, _ := ChannelFor(i)
		if err := p.send(midi.ControlChange(ch, 123, 0)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close silences the port and closes it.
func (p *Port) Close() error {
	_ = p.AllNotesOff()
	return p.out.Close()
}

// Tee returns a SendFunc that delivers every message to all of sends. It
// keeps going after a failure and reports the failures together.
func Tee(sends ...SendFunc) SendFunc {
	return func(msg midi.Message) error {
		var errs []error
		for _, send := range sends {
			if err := send(msg); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
