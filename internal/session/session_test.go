package session

import (
	"math"
	"testing"

	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/tuning"
)

type fakeSink struct {
	hz       float64
	waveform channel.Waveform
	playing  bool
}

func (f *fakeSink) SetWaveform(w channel.Waveform) { f.waveform = w }
func (f *fakeSink) SetFrequency(hz float64)        { f.hz = hz }
func (f *fakeSink) Start()                         { f.playing = true }
func (f *fakeSink) Stop()                          { f.playing = false }

func newTestSession(opts ...Option) (*Session, []*fakeSink) {
	fakes := make([]*fakeSink, channel.DefaultSize)
	sinks := make([]channel.Sink, channel.DefaultSize)
	for i := range fakes {
		fakes[i] = &fakeSink{}
		sinks[i] = fakes[i]
	}
	return New(sinks, opts...), fakes
}

func engageFree(t *testing.T, s *Session, kind channel.Source, id int, cents float64) *channel.Channel {
	t.Helper()
	ch := s.Allocate()
	if ch == nil {
		t.Fatal("pool exhausted")
	}
	if !s.Engage(ch, kind, id, channel.Free(cents)) {
		t.Fatal("engage refused")
	}
	return ch
}

func TestNewTunesReferenceAndWaveform(t *testing.T) {
	_, fakes := newTestSession()
	if math.Abs(fakes[0].hz-110) > 1e-9 {
		t.Errorf("reference sink tuned to %v, want 110", fakes[0].hz)
	}
	for i, f := range fakes {
		if f.waveform != channel.Sawtooth {
			t.Errorf("sink %d waveform = %v, want sawtooth", i, f.waveform)
		}
		if f.playing {
			t.Errorf("sink %d playing before any input", i)
		}
	}
}

func TestReferenceFollowsInputs(t *testing.T) {
	s, fakes := newTestSession()

	a := engageFree(t, s, channel.Touch, 1, 0)
	if !fakes[0].playing || s.pool.Reference().Source != channel.Reference {
		t.Fatal("reference should start with the first input")
	}
	b := engageFree(t, s, channel.Touch, 2, 100)

	s.Release(a)
	if !fakes[0].playing {
		t.Fatal("reference stopped while an input is still held")
	}
	s.Release(b)
	if fakes[0].playing || s.pool.Reference().Active() {
		t.Fatal("reference should stop with the last input")
	}
}

func TestReferenceDisabledNeverStarts(t *testing.T) {
	s, fakes := newTestSession()
	s.SetReferenceEnabled(false)

	engageFree(t, s, channel.Keyboard, 0, 0)
	if fakes[0].playing {
		t.Error("disabled reference started")
	}
}

func TestReferenceDisableImmediate(t *testing.T) {
	s, fakes := newTestSession()
	engageFree(t, s, channel.Touch, 1, 0)

	s.SetReferenceEnabled(false)
	if fakes[0].playing {
		t.Error("immediate policy should drop the drone on toggle")
	}

	s.SetReferenceEnabled(true)
	if !fakes[0].playing {
		t.Error("immediate policy should restart the drone while inputs are held")
	}
}

func TestReferenceDisableDeferred(t *testing.T) {
	s, fakes := newTestSession()
	s.SetReferencePolicy(DropAtNextTransition)
	engageFree(t, s, channel.Touch, 1, 0)

	s.SetReferenceEnabled(false)
	if !fakes[0].playing {
		t.Fatal("deferred policy should keep the drone until the next transition")
	}

	engageFree(t, s, channel.Touch, 2, 50)
	if fakes[0].playing {
		t.Error("deferred policy should drop the drone at the next allocation")
	}
}

func TestReleaseWithoutChannelStillEvaluatesReference(t *testing.T) {
	s, fakes := newTestSession()
	s.SetPointerHeld(true)
	ch := engageFree(t, s, channel.Touch, 1, 0)

	s.Release(ch)
	if !fakes[0].playing {
		t.Fatal("held pointer should keep the drone on")
	}

	s.SetPointerHeld(false)
	s.Release(nil)
	if fakes[0].playing {
		t.Error("drone should stop once the pointer lets go")
	}
}

func TestSetBaseFrequencyRetunes(t *testing.T) {
	s, fakes := newTestSession()
	ch := engageFree(t, s, channel.Pointer, 0, 1200)

	if !s.SetBaseFrequency(100) {
		t.Fatal("valid base frequency rejected")
	}
	if math.Abs(fakes[ch.Index].hz-200) > 1e-9 {
		t.Errorf("engaged channel at %v Hz, want 200", fakes[ch.Index].hz)
	}
	if math.Abs(fakes[0].hz-50) > 1e-9 {
		t.Errorf("reference at %v Hz, want 50", fakes[0].hz)
	}
	if ch.Pitch.Cents != 1200 {
		t.Errorf("cents changed to %v", ch.Pitch.Cents)
	}
}

func TestReferenceOffsetRetunesWhileOff(t *testing.T) {
	s, fakes := newTestSession()
	if !s.SetReferenceOffset(700) {
		t.Fatal("valid offset rejected")
	}
	want := 220 * math.Pow(2, -700.0/1200)
	if math.Abs(fakes[0].hz-want) > 1e-9 {
		t.Errorf("reference sink at %v, want %v", fakes[0].hz, want)
	}
	if fakes[0].playing {
		t.Error("retuning must not start the drone")
	}
}

func TestInvalidSettingsAreIgnored(t *testing.T) {
	s, _ := newTestSession()
	before := s.Config()

	tests := []struct {
		name  string
		apply func() bool
	}{
		{"zero base", func() bool { return s.SetBaseFrequency(0) }},
		{"negative base", func() bool { return s.SetBaseFrequency(-5) }},
		{"NaN base", func() bool { return s.SetBaseFrequency(math.NaN()) }},
		{"text base", func() bool { return s.SetBaseFrequencyText("abc") }},
		{"edo 1", func() bool { return s.SetEDODivisions(1) }},
		{"edo text", func() bool { return s.SetEDOText("twelve") }},
		{"negative offset", func() bool { return s.SetReferenceOffset(-1) }},
		{"offset text", func() bool { return s.SetReferenceOffsetText("") }},
		{"junk ratios", func() bool { return s.SetRatioText("hello") }},
		{"slot out of range", func() bool { return s.SelectRatioSlot(3) }},
		{"mode out of range", func() bool { return s.SelectRatioMode(5) }},
		{"empty range", func() bool { return s.SetCentsRange(0, 0) }},
	}
	for _, tt := range tests {
		if tt.apply() {
			t.Errorf("%s: applied, want ignored", tt.name)
		}
	}

	after := s.Config()
	if after.BaseFrequency != before.BaseFrequency ||
		after.EDODivisions != before.EDODivisions ||
		after.ReferenceOffsetCents != before.ReferenceOffsetCents ||
		after.ActiveRatioSet().String() != before.ActiveRatioSet().String() ||
		after.CentsDown != before.CentsDown || after.CentsUp != before.CentsUp {
		t.Errorf("config changed: before %+v, after %+v", before, after)
	}
}

func TestTextSetters(t *testing.T) {
	s, _ := newTestSession()
	if !s.SetBaseFrequencyText(" 261.6 ") || s.Config().BaseFrequency != 261.6 {
		t.Errorf("base = %v", s.Config().BaseFrequency)
	}
	if !s.SetEDOText("31") || s.Config().EDODivisions != 31 {
		t.Errorf("edo = %v", s.Config().EDODivisions)
	}
	if !s.SetReferenceOffsetText("0") || s.Config().ReferenceOffsetCents != 0 {
		t.Errorf("offset = %v", s.Config().ReferenceOffsetCents)
	}
}

func TestStepEDO(t *testing.T) {
	s, _ := newTestSession()
	s.StepEDO(1)
	if got := s.Config().EDODivisions; got != 13 {
		t.Errorf("edo = %d, want 13", got)
	}
	s.SetEDODivisions(2)
	s.StepEDO(-1)
	if got := s.Config().EDODivisions; got != 2 {
		t.Errorf("edo = %d, want the minimum of 2", got)
	}
}

func TestRatioSlots(t *testing.T) {
	s, _ := newTestSession()
	if !s.SetRatioText("4:5:6 8:9:10:11") {
		t.Fatal("ratio text rejected")
	}
	if !s.SelectRatioSlot(1) || s.Config().ActiveRatioSet().String() != "8:9:10:11" {
		t.Fatalf("active set = %v", s.Config().ActiveRatioSet())
	}
	if !s.SelectRatioMode(3) || s.Config().RatioRoot() != 3 {
		t.Fatalf("root = %d", s.Config().RatioRoot())
	}

	// A shorter replacement resets the slot and mode that no longer exist.
	s.SetRatioText("2:3")
	cfg := s.Config()
	if cfg.ActiveRatioSlot != 0 || cfg.RatioMode != 0 {
		t.Errorf("slot %d mode %d, want 0 0", cfg.ActiveRatioSlot, cfg.RatioMode)
	}
	if s.NextRatioSlot() {
		t.Error("NextRatioSlot with a single slot should do nothing")
	}
}

func TestSnapshotDoesNotMutate(t *testing.T) {
	s, _ := newTestSession()
	ch := s.Allocate()
	s.Engage(ch, channel.Keyboard, 7, channel.EDOStep(7, 700))
	ch = s.Allocate()
	s.Engage(ch, channel.Touch, 3, channel.RatioStep(2, 701.96))

	first := s.Snapshot()
	second := s.Snapshot()

	if len(first.Channels) != len(second.Channels) {
		t.Fatal("snapshots differ in size")
	}
	for i := range first.Channels {
		if first.Channels[i] != second.Channels[i] {
			t.Errorf("channel %d changed between snapshots", i)
		}
	}
	if !first.EDOHeld(7) || !first.RatioHeld(2) || first.RatioHeld(7) {
		t.Errorf("played steps wrong: edo %v ratio %v", first.PlayedEDOSteps, first.PlayedRatioSteps)
	}
	// Two inputs plus the drone.
	if len(first.PlayedCents) != 3 || first.Active() != 2 {
		t.Errorf("played cents %v, active %d", first.PlayedCents, first.Active())
	}

	first.Channels[1].Source = channel.Off
	if s.Snapshot().Channels[1].Source == channel.Off {
		t.Error("snapshot aliases pool state")
	}

	first.Config.RatioSets[0][1] = 99
	first.Config.RatioSets[0] = nil
	if got := s.Config().RatioSets[0]; len(got) != 5 || got[1] != 5 {
		t.Errorf("snapshot aliases ratio sets: %v", got)
	}
}

func TestAllOff(t *testing.T) {
	s, fakes := newTestSession()
	engageFree(t, s, channel.Touch, 1, 0)
	engageFree(t, s, channel.Keyboard, 2, 200)

	s.AllOff()
	for i, f := range fakes {
		if f.playing {
			t.Errorf("sink %d still playing", i)
		}
	}
	if s.Snapshot().Active() != 0 {
		t.Error("channels still active")
	}
}

func TestSetWaveform(t *testing.T) {
	s, fakes := newTestSession()
	s.SetWaveform(channel.Square)
	if s.Config().Waveform != channel.Square || fakes[5].waveform != channel.Square {
		t.Error("waveform not applied")
	}
}

func TestParseReferencePolicy(t *testing.T) {
	for _, p := range []ReferencePolicy{DropImmediately, DropAtNextTransition} {
		got, ok := ParseReferencePolicy(p.String())
		if !ok || got != p {
			t.Errorf("ParseReferencePolicy(%q) = %v, %v", p.String(), got, ok)
		}
	}
	if _, ok := ParseReferencePolicy("sometimes"); ok {
		t.Error("unknown policy accepted")
	}
}

func TestEDORatioOffsets(t *testing.T) {
	cfg := DefaultConfig()
	off := cfg.EDORatioOffsets()
	want := map[int]float64{0: 0, 4: -13.686, 7: 1.955, 10: -31.174, 12: 0}
	if len(off) != len(want) {
		t.Fatalf("offsets = %v", off)
	}
	for step, w := range want {
		if math.Abs(off[step]-w) > 0.001 {
			t.Errorf("step %d offset = %.3f, want %.3f", step, off[step], w)
		}
	}

	cfg.RatioMode = 2
	if off := cfg.EDORatioOffsets(); math.Abs(off[5]-(-1.955)) > 0.001 || len(off) != 3 {
		t.Errorf("measured from 6 only 6, 7 and 8 are inside the octave: %v", off)
	}

	cfg.RatioSets = []tuning.RatioSet{{3}}
	if cfg.EDORatioOffsets() != nil {
		t.Error("an unplayable set has no offsets")
	}
}

func TestConfigChangeFreesStaleSteps(t *testing.T) {
	s, fakes := newTestSession()
	engage := func(id int, pitch channel.Pitch) *channel.Channel {
		t.Helper()
		ch := s.Allocate()
		if ch == nil || !s.Engage(ch, channel.Touch, id, pitch) {
			t.Fatal("engage failed")
		}
		return ch
	}
	ratio := engage(1, channel.RatioStep(4, 1200))
	edo := engage(2, channel.EDOStep(9, 900))
	low := engage(3, channel.EDOStep(3, 300))
	hz := fakes[edo.Index].hz

	s.SetRatioText("4:5 4:5:6:7:8")
	s.SetEDODivisions(5)

	if ratio.Pitch.Kind != channel.FreePitch || ratio.Pitch.Cents != 1200 {
		t.Errorf("ratio channel pitch = %+v, want free at 1200", ratio.Pitch)
	}
	if edo.Pitch.Kind != channel.FreePitch || edo.Pitch.Cents != 900 {
		t.Errorf("edo channel pitch = %+v, want free at 900", edo.Pitch)
	}
	if step, ok := low.Pitch.EDOStep(); !ok || step != 3 {
		t.Errorf("step 3 still exists at 5-EDO, got %+v", low.Pitch)
	}
	if !fakes[edo.Index].playing || fakes[edo.Index].hz != hz {
		t.Error("freeing a step changed the sound")
	}

	v := s.Snapshot()
	if v.RatioHeld(4) || v.EDOHeld(9) || !v.EDOHeld(3) {
		t.Errorf("held ratio %v, edo %v", v.PlayedRatioSteps, v.PlayedEDOSteps)
	}

	kept := engage(4, channel.RatioStep(1, 386.3))
	s.SelectRatioSlot(1)
	if _, ok := kept.Pitch.RatioStep(); !ok {
		t.Error("ratio step 1 exists in both sets and should stay")
	}
	s.SelectRatioSlot(0)
	s.SetRatioText("4")
	if kept.Pitch.Kind != channel.FreePitch {
		t.Error("an unplayable set leaves no ratio buttons to hold")
	}
}
