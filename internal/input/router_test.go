package input

import (
	"math"
	"testing"

	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/session"
)

type fakeSink struct {
	hz      float64
	playing bool
}

func (f *fakeSink) SetWaveform(channel.Waveform) {}
func (f *fakeSink) SetFrequency(hz float64)      { f.hz = hz }
func (f *fakeSink) Start()                       { f.playing = true }
func (f *fakeSink) Stop()                        { f.playing = false }

type harness struct {
	router  *Router
	session *session.Session
	sinks   []*fakeSink
	redraws int
}

// The canvas is 540 wide: keyboards span x=20..520, so a five-ratio
// keyboard has 100 wide buttons.
func newHarness() *harness {
	h := &harness{}
	h.sinks = make([]*fakeSink, channel.DefaultSize)
	sinks := make([]channel.Sink, channel.DefaultSize)
	for i := range sinks {
		h.sinks[i] = &fakeSink{}
		sinks[i] = h.sinks[i]
	}
	h.session = session.New(sinks)
	h.router = NewRouter(h.session, DefaultLayout(540), func() { h.redraws++ })
	return h
}

func (h *harness) channel(i int) channel.Channel {
	return h.session.Snapshot().Channels[i]
}

func touch(id int, x, y float64) Event {
	return Event{Kind: channel.Touch, Correlator: id, X: x, Y: y}
}

func pointer(x, y float64) Event {
	return Event{Kind: channel.Pointer, X: x, Y: y}
}

func key(t *testing.T, r rune) Event {
	t.Helper()
	step, ok := KeyStep(r)
	if !ok {
		t.Fatalf("KeyStep(%q) failed", r)
	}
	return Event{Kind: channel.Keyboard, Correlator: step}
}

func TestTouchExhaustion(t *testing.T) {
	h := newHarness()

	for id := 0; id < 10; id++ {
		h.router.Press(touch(id, float64(50+id*40), 100))
	}

	v := h.session.Snapshot()
	for i := 1; i < channel.DefaultSize; i++ {
		ch := v.Channels[i]
		if ch.Source != channel.Touch || ch.SourceID != i-1 {
			t.Errorf("channel %d = %+v, want touch %d", i, ch, i-1)
		}
	}
	if v.Active() != 9 {
		t.Errorf("active = %d, want 9", v.Active())
	}
	if h.session.Find(channel.Touch, 9) != nil {
		t.Error("tenth touch should have been dropped")
	}
	if v.Channels[0].Source != channel.Reference || !h.sinks[0].playing {
		t.Error("reference should be active")
	}
	if h.router.Held() != 10 {
		t.Errorf("held = %d, want 10 even though one touch has no channel", h.router.Held())
	}

	// Lifting the dropped touch is harmless; lifting the rest stops the drone.
	h.router.Release(touch(9, 0, 0))
	if !h.sinks[0].playing {
		t.Fatal("drone stopped while nine touches are down")
	}
	for id := 0; id < 9; id++ {
		h.router.Release(touch(id, -100, -100))
	}
	if h.session.Snapshot().Channels[0].Active() || h.sinks[0].playing {
		t.Error("drone should stop with the last touch")
	}
	if h.router.Held() != 0 {
		t.Errorf("held = %d after releasing everything", h.router.Held())
	}
}

func TestKeyPressAndRelease(t *testing.T) {
	h := newHarness()

	h.router.Press(key(t, '3'))
	ch := h.channel(1)
	if ch.Source != channel.Keyboard || ch.SourceID != 2 {
		t.Fatalf("channel 1 = %+v, want keyboard step 2", ch)
	}
	if step, ok := ch.Pitch.EDOStep(); !ok || step != 2 || ch.Pitch.Cents != 200 {
		t.Fatalf("pitch = %+v, want EDO step 2 at 200 cents", ch.Pitch)
	}
	if !h.sinks[0].playing {
		t.Fatal("reference should follow the key")
	}

	h.router.Release(key(t, '3'))
	if h.channel(1).Active() {
		t.Error("channel 1 should be off")
	}
	if h.channel(0).Active() || h.sinks[0].playing {
		t.Error("reference should stop with its only input")
	}
}

func TestKeyZeroIsStepNine(t *testing.T) {
	if step, ok := KeyStep('0'); !ok || step != 9 {
		t.Errorf("KeyStep('0') = %d, %v; want 9", step, ok)
	}
	if step, ok := KeyStep('1'); !ok || step != 0 {
		t.Errorf("KeyStep('1') = %d, %v; want 0", step, ok)
	}
	if _, ok := KeyStep('a'); ok {
		t.Error("letters are not keyboard steps")
	}
}

func TestKeyRepeatDoesNotAllocateTwice(t *testing.T) {
	h := newHarness()
	h.router.Press(key(t, '5'))
	h.router.Press(key(t, '5'))

	if h.session.Snapshot().Active() != 1 {
		t.Errorf("active = %d, want 1", h.session.Snapshot().Active())
	}
	h.router.Release(key(t, '5'))
	if h.session.Snapshot().Active() != 0 {
		t.Error("single release should free the key")
	}
}

func TestKeyOutsideEDOIsIgnored(t *testing.T) {
	h := newHarness()
	h.session.SetEDODivisions(5)

	h.router.Press(key(t, '0'))
	if h.session.Snapshot().Active() != 0 {
		t.Error("step 9 does not exist in 5-EDO")
	}
	if !h.router.KeyHeld(9) {
		t.Error("the key is still physically held")
	}
	h.router.Release(key(t, '0'))
	if h.router.Held() != 0 {
		t.Error("release bookkeeping out of step")
	}
}

func TestRegionDispatch(t *testing.T) {
	l := DefaultLayout(540)
	tests := []struct {
		y    float64
		want Region
	}{
		{0, CentBoard},
		{150, CentBoard},
		{200, CentBoard},
		{250, RatioKeyboard},
		{400, RatioKeyboard},
		{401, EDOKeyboard},
		{600, EDOKeyboard},
		{601, NoRegion},
		{-1, NoRegion},
	}
	for _, tt := range tests {
		if got := l.RegionAt(tt.y); got != tt.want {
			t.Errorf("RegionAt(%v) = %v, want %v", tt.y, got, tt.want)
		}
	}

	l.SetVisible(RatioKeyboard, false)
	if got := l.RegionAt(250); got != EDOKeyboard {
		t.Errorf("with the ratio keyboard hidden RegionAt(250) = %v, want edo-keyboard", got)
	}
	if got := l.RegionAt(150); got != CentBoard {
		t.Errorf("RegionAt(150) = %v, want centboard regardless of the rest", got)
	}

	l.SetVisible(RatioModes, true)
	if got := l.RegionAt(230); got != RatioModes {
		t.Errorf("RegionAt(230) = %v, want ratio-modes", got)
	}
}

func TestCentboardPitch(t *testing.T) {
	h := newHarness()
	// x=0 is -1400 cents and x=540 is +2000 cents.
	h.router.Press(pointer(540, 10))
	ch := h.channel(1)
	if ch.Source != channel.Pointer || ch.Pitch.Kind != channel.FreePitch || ch.Pitch.Cents != 2000 {
		t.Fatalf("channel 1 = %+v", ch)
	}
	if _, ok := ch.Pitch.RatioStep(); ok {
		t.Error("free pitch must not carry a ratio step")
	}
}

func TestRatioKeyboardPitch(t *testing.T) {
	h := newHarness()
	h.router.Press(touch(1, 150, 300))

	ch := h.channel(1)
	step, ok := ch.Pitch.RatioStep()
	if !ok || step != 1 {
		t.Fatalf("pitch = %+v, want ratio step 1", ch.Pitch)
	}
	if math.Abs(ch.Pitch.Cents-386.31) > 0.01 {
		t.Errorf("cents = %v, want about 386.31", ch.Pitch.Cents)
	}
	if math.Abs(h.sinks[1].hz-275) > 1e-9 {
		t.Errorf("sink at %v Hz, want 275", h.sinks[1].hz)
	}
}

func TestEDOKeyboardPitch(t *testing.T) {
	h := newHarness()
	// 13 buttons across 500 units; step 7 covers about 289..327.
	h.router.Press(touch(1, 300, 500))

	ch := h.channel(1)
	step, ok := ch.Pitch.EDOStep()
	if !ok || step != 7 || ch.Pitch.Cents != 700 {
		t.Fatalf("pitch = %+v, want EDO step 7 at exactly 700 cents", ch.Pitch)
	}
}

func TestUnplayableRatioSetIsARegionMiss(t *testing.T) {
	h := newHarness()
	h.session.SetRatioText("4")

	h.router.Press(touch(1, 150, 300))
	if h.session.Snapshot().Active() != 0 {
		t.Error("a single-ratio keyboard should not engage a channel")
	}
	if h.channel(0).Active() {
		t.Error("nothing sounds, so no drone either")
	}
}

func TestMarginIsARegionMiss(t *testing.T) {
	h := newHarness()
	h.router.Press(touch(1, 5, 300))
	if h.session.Snapshot().Active() != 0 {
		t.Error("the keyboard margin has no buttons")
	}
}

func TestOutsideCanvasPressIgnored(t *testing.T) {
	h := newHarness()
	h.router.Press(pointer(-1, 100))
	h.router.Press(touch(3, 100, 601))

	if h.router.Held() != 0 || h.redraws != 0 {
		t.Errorf("held %d redraws %d, want no state change", h.router.Held(), h.redraws)
	}
}

func TestMoveAcrossRegions(t *testing.T) {
	h := newHarness()
	h.router.Press(touch(4, 150, 300))
	if _, ok := h.channel(1).Pitch.RatioStep(); !ok {
		t.Fatal("expected a ratio pitch")
	}

	h.router.Move(touch(4, 300, 500))
	ch := h.channel(1)
	if step, ok := ch.Pitch.EDOStep(); !ok || step != 7 {
		t.Fatalf("after move pitch = %+v, want EDO step 7", ch.Pitch)
	}
	if _, ok := ch.Pitch.RatioStep(); ok {
		t.Error("ratio step should be cleared by the EDO selection")
	}
	if ch.Source != channel.Touch || ch.SourceID != 4 || ch.Index != 1 {
		t.Errorf("move reallocated the channel: %+v", ch)
	}

	// Margins and off-canvas points keep the stale pitch.
	h.router.Move(touch(4, 5, 500))
	h.router.Move(touch(4, 900, 500))
	if h.channel(1).Pitch != ch.Pitch {
		t.Errorf("pitch changed on a region miss: %+v", h.channel(1).Pitch)
	}
}

func TestPointerDragRetunes(t *testing.T) {
	h := newHarness()
	h.router.Move(pointer(100, 100))
	if h.session.Snapshot().Active() != 0 {
		t.Fatal("hovering must not play")
	}

	h.router.Press(pointer(140, 100))
	before := h.sinks[1].hz
	h.router.Move(pointer(240, 100))
	if h.sinks[1].hz <= before {
		t.Errorf("dragging right should raise the pitch: %v -> %v", before, h.sinks[1].hz)
	}

	h.router.Release(pointer(9999, 9999))
	if h.session.Snapshot().Active() != 0 || h.sinks[1].playing {
		t.Error("release outside the canvas should still stop the pointer")
	}
}

func TestPointerHeldWithoutChannelKeepsDrone(t *testing.T) {
	h := newHarness()
	for id := 0; id < 9; id++ {
		h.router.Press(touch(id, 100, 100))
	}
	h.router.Press(pointer(100, 100))
	if h.session.Find(channel.Pointer, 0) != nil {
		t.Fatal("pool should be exhausted")
	}

	for id := 0; id < 9; id++ {
		h.router.Release(touch(id, 100, 100))
	}
	if !h.sinks[0].playing {
		t.Fatal("the held pointer should keep the drone going")
	}
	h.router.Release(pointer(100, 100))
	if h.sinks[0].playing {
		t.Error("drone should stop after the pointer lets go")
	}
}

func TestDuplicateReleaseIsNoop(t *testing.T) {
	h := newHarness()
	h.router.Press(touch(1, 100, 100))
	h.router.Release(touch(1, 100, 100))
	redraws := h.redraws

	h.router.Release(touch(1, 100, 100))
	h.router.Release(touch(42, 100, 100))
	if h.redraws != redraws {
		t.Error("releasing unknown inputs should not redraw")
	}
}

func TestRatioModeRow(t *testing.T) {
	h := newHarness()
	l := h.router.Layout()
	l.SetVisible(RatioModes, true)
	h.router.SetLayout(l)

	// The mode row sits at 200..240; button 2 is x=220..320.
	h.router.Press(touch(1, 250, 220))
	if got := h.session.Config().RatioRoot(); got != 2 {
		t.Fatalf("ratio root = %d, want 2", got)
	}
	if h.session.Snapshot().Active() != 0 {
		t.Error("selecting a mode does not play")
	}
	h.router.Release(touch(1, 250, 220))

	// Ratio keyboard now measures from 6: button 4 is 8/6.
	h.router.Press(touch(2, 450, 300))
	want := 1200 * math.Log2(8.0/6.0)
	if got := h.channel(1).Pitch.Cents; math.Abs(got-want) > 1e-9 {
		t.Errorf("cents = %v, want %v", got, want)
	}
}

func TestRedrawIsIdempotent(t *testing.T) {
	h := newHarness()
	h.router.Press(touch(1, 150, 300))
	h.router.Press(key(t, '8'))

	before := h.session.Snapshot()
	h.router.redraw()
	h.router.redraw()
	after := h.session.Snapshot()

	for i := range before.Channels {
		if before.Channels[i] != after.Channels[i] {
			t.Errorf("channel %d changed across redraws", i)
		}
	}
}

func TestAllOffClearsBookkeeping(t *testing.T) {
	h := newHarness()
	h.router.Press(touch(1, 150, 300))
	h.router.Press(key(t, '1'))
	h.router.Press(pointer(10, 10))

	h.router.AllOff()
	if h.router.Held() != 0 || h.session.Snapshot().Active() != 0 {
		t.Error("AllOff left inputs engaged")
	}
	for i, s := range h.sinks {
		if s.playing {
			t.Errorf("sink %d still playing", i)
		}
	}

	// Keys lifted after the panic are ignored.
	h.router.Release(key(t, '1'))
}
