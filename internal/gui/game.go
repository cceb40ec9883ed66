// Package gui hosts the explorer in an ebiten window: mouse, touch and
// number-row keys are routed into the session, and every frame is drawn
// from a session snapshot.
package gui

import (
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/input"
	"golang.design/x/clipboard"
)

const (
	defaultWidth = 960
	minWidth     = 240
	maxPaste     = 4096
)

// digitKeys lists the number row in keyboard order, 1 through 0.
var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5,
	ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9, ebiten.KeyDigit0,
}

// keyStep maps a number-row key to its keyboard step.
func keyStep(k ebiten.Key) (int, bool) {
	for i, d := range digitKeys {
		if d == k {
			return i, true
		}
	}
	return 0, false
}

// Game implements ebiten.Game over an input router.
type Game struct {
	router *input.Router

	width    int
	cursorX  int
	cursorY  int
	touchIDs []ebiten.TouchID

	clipboardOnce sync.Once
	clipboardOK   bool
}

// New creates a game driving r.
func New(r *input.Router) *Game {
	return &Game{router: r, width: int(r.Layout().Width)}
}

// Run opens the window and blocks until it is closed.
func Run(r *input.Router, title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(defaultWidth, int(r.Layout().Height))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	g := New(r)
	err := ebiten.RunGame(g)
	r.AllOff()
	return err
}

// Update polls input once per tick.
func (g *Game) Update() error {
	g.handleKeys()
	g.handleMouse()
	g.handleTouches()
	return nil
}

// Layout keeps the logical height of the canvas fixed and lets the width
// follow the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	l := g.router.Layout()
	w := logicalWidth(outsideWidth, outsideHeight, l.Height)
	if w != g.width {
		g.width = w
		g.router.SetLayout(resized(l, w))
	}
	return w, int(l.Height)
}

func logicalWidth(outsideWidth, outsideHeight int, height float64) int {
	if outsideHeight <= 0 {
		return minWidth
	}
	return max(int(float64(outsideWidth)*height/float64(outsideHeight)), minWidth)
}

// resized keeps region visibility and heights while changing the width.
func resized(l input.Layout, width int) input.Layout {
	l.Width = float64(width)
	l.Blocks = append([]input.Block(nil), l.Blocks...)
	return l
}

func (g *Game) handleKeys() {
	s := g.router.Session()
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	routeDigits(g.router, inpututil.IsKeyJustPressed, inpututil.IsKeyJustReleased)

	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.handleClipboardPaste()
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.router.AllOff()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp), inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		s.StepEDO(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown), inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		s.StepEDO(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		s.SetWaveform(s.Config().Waveform.Next())
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		s.SetReferenceEnabled(!s.Config().ReferenceEnabled)
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		s.NextRatioSlot()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		l := resized(g.router.Layout(), g.width)
		l.SetVisible(input.RatioModes, !l.Visible(input.RatioModes))
		g.router.SetLayout(l)
	}
}

// routeDigits feeds number key edges to the router. It runs before any
// shortcut so that a release is never lost.
func routeDigits(r *input.Router, justPressed, justReleased func(ebiten.Key) bool) {
	for _, k := range digitKeys {
		step, _ := keyStep(k)
		ev := input.Event{Kind: channel.Keyboard, Correlator: step}
		if justPressed(k) {
			r.Press(ev)
		}
		if justReleased(k) {
			r.Release(ev)
		}
	}
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	moved := mx != g.cursorX || my != g.cursorY
	g.cursorX, g.cursorY = mx, my

	ev := input.Event{Kind: channel.Pointer, X: float64(mx), Y: float64(my)}
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.router.Press(ev)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.router.Release(ev)
	case moved && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.router.Move(ev)
	}
}

func (g *Game) handleTouches() {
	g.touchIDs = inpututil.AppendJustPressedTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		x, y := ebiten.TouchPosition(id)
		g.router.Press(touchEvent(id, x, y))
	}

	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		x, y := ebiten.TouchPosition(id)
		px, py := inpututil.TouchPositionInPreviousTick(id)
		if x != px || y != py {
			g.router.Move(touchEvent(id, x, y))
		}
	}

	g.touchIDs = inpututil.AppendJustReleasedTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		g.router.Release(touchEvent(id, x, y))
	}
}

func touchEvent(id ebiten.TouchID, x, y int) input.Event {
	return input.Event{Kind: channel.Touch, Correlator: int(id), X: float64(x), Y: float64(y)}
}

func (g *Game) handleClipboardPaste() {
	g.clipboardOnce.Do(func() {
		g.clipboardOK = clipboard.Init() == nil
	})
	if !g.clipboardOK {
		return
	}
	if text := pasteText(clipboard.Read(clipboard.FmtText)); text != "" {
		g.router.Session().SetRatioText(text)
	}
}

// pasteText flattens clipboard contents into one line of ratio text.
func pasteText(raw []byte) string {
	if len(raw) > maxPaste {
		raw = raw[:maxPaste]
	}
	return strings.Join(strings.Fields(string(raw)), " ")
}
