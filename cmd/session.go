package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/icco/xentune/internal/audio"
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/midiout"
	"github.com/icco/xentune/internal/session"
	"github.com/icco/xentune/internal/tuning"
)

// rig is a session wired to its outputs.
type rig struct {
	session  *session.Session
	synth    *audio.Synth
	port     *midiout.Port
	recorder *midiout.Recorder
	log      *log.Logger
}

// configFromFlags validates the tuning flags. Unlike the runtime setters,
// bad flags are reported instead of ignored.
func configFromFlags() (session.Config, error) {
	cfg := session.DefaultConfig()

	if !(baseFrequency > 0) {
		return cfg, fmt.Errorf("--base must be positive, got %v", baseFrequency)
	}
	cfg.BaseFrequency = baseFrequency

	if edoDivisions < 2 {
		return cfg, fmt.Errorf("--edo must be at least 2, got %d", edoDivisions)
	}
	cfg.EDODivisions = edoDivisions

	sets, ok := tuning.ParseRatioSets(ratioText)
	if !ok {
		return cfg, fmt.Errorf("--ratios: no ratios in %q", ratioText)
	}
	cfg.RatioSets = sets

	if !(refOffset >= 0) {
		return cfg, fmt.Errorf("--ref-offset must not be negative, got %v", refOffset)
	}
	cfg.ReferenceOffsetCents = refOffset
	cfg.ReferenceEnabled = refEnabled

	policy, ok := session.ParseReferencePolicy(refPolicy)
	if !ok {
		return cfg, fmt.Errorf("--ref-policy must be immediate or deferred, got %q", refPolicy)
	}
	cfg.ReferencePolicy = policy

	w, ok := channel.ParseWaveform(waveformName)
	if !ok {
		return cfg, fmt.Errorf("unknown --waveform %q", waveformName)
	}
	cfg.Waveform = w

	if !(centsDown >= 0) || !(centsUp >= 0) || centsDown+centsUp <= 0 {
		return cfg, fmt.Errorf("--cents-down and --cents-up must span a range")
	}
	cfg.CentsDown, cfg.CentsUp = centsDown, centsUp
	return cfg, nil
}

// newRig opens the configured outputs and builds a session over them.
// Every pool slot gets one sink from each output, fanned out.
func newRig(logger *log.Logger) (*rig, error) {
	cfg, err := configFromFlags()
	if err != nil {
		return nil, err
	}
	if channelCount < 2 || channelCount > 15 {
		return nil, fmt.Errorf("--channels must be between 2 and 15, got %d", channelCount)
	}

	r := &rig{log: logger}
	var banks [][]channel.Sink

	if !mute {
		synth, err := audio.Open(channelCount)
		if err != nil {
			return nil, err
		}
		r.synth = synth
		banks = append(banks, synth.Sinks())
	}

	var sends []midiout.SendFunc
	if midiOutName != "" {
		port, err := midiout.Open(midiOutName)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
		r.port = port
		sends = append(sends, port.Send)
		logger.Info("MIDI output", "port", port.Name())
	}
	if recordPath != "" {
		r.recorder = midiout.NewRecorder()
		sends = append(sends, r.recorder.Send)
		logger.Info("recording", "file", recordPath)
	}
	if len(sends) > 0 {
		sinks, err := midiout.Sinks(midiout.Tee(sends...), channelCount)
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("setting up MIDI channels: %w", err)
		}
		banks = append(banks, sinks)
	}

	r.session = session.New(combine(banks, channelCount), session.WithConfig(cfg), session.WithLogger(logger))
	logger.Debug("session ready", "channels", channelCount, "base", cfg.BaseFrequency, "edo", cfg.EDODivisions)
	return r, nil
}

// combine builds n sinks, each driving slot i of every bank.
func combine(banks [][]channel.Sink, n int) []channel.Sink {
	sinks := make([]channel.Sink, n)
	for i := range sinks {
		var fan channel.Fanout
		for _, bank := range banks {
			if i < len(bank) {
				fan = append(fan, bank[i])
			}
		}
		switch len(fan) {
		case 0:
			sinks[i] = channel.Discard{}
		case 1:
			sinks[i] = fan[0]
		default:
			sinks[i] = fan
		}
	}
	return sinks
}

// Close silences everything, saves the recording and releases devices.
func (r *rig) Close() error {
	var errs []error
	if r.session != nil {
		r.session.AllOff()
	}
	if r.recorder != nil && r.recorder.Len() > 0 {
		if err := r.recorder.WriteFile(recordPath); err != nil {
			errs = append(errs, err)
		} else {
			r.log.Info("recording saved", "file", recordPath, "messages", r.recorder.Len())
		}
	}
	if r.port != nil {
		if err := r.port.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing MIDI output: %w", err))
		}
	}
	if r.synth != nil {
		r.synth.AllNotesOff()
		_ = r.synth.Close()
	}
	return errors.Join(errs...)
}
