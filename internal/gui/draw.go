package gui

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/icco/xentune/internal/input"
	"github.com/icco/xentune/internal/session"
	"github.com/icco/xentune/internal/tuning"
	"golang.org/x/image/font/basicfont"
)

var (
	background  = color.RGBA{18, 18, 24, 255}
	gridColor   = color.RGBA{60, 60, 72, 255}
	ratioColor  = color.RGBA{90, 140, 200, 255}
	playedColor = color.RGBA{255, 215, 0, 255}
	refColor    = color.RGBA{200, 90, 200, 255}
	keyColor    = color.RGBA{44, 44, 56, 255}
	heldColor   = color.RGBA{125, 86, 244, 255}
	labelColor  = color.RGBA{190, 190, 190, 255}
	dimColor    = color.RGBA{120, 120, 120, 255}
)

// Draw renders the current snapshot. It reads state only.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	v := g.router.Session().Snapshot()
	l := g.router.Layout()

	if top, bottom, ok := l.Bounds(input.CentBoard); ok {
		drawCentBoard(screen, l, v, int(top), int(bottom))
	}
	if top, bottom, ok := l.Bounds(input.RatioModes); ok {
		drawRatioModes(screen, l, v, int(top), int(bottom))
	}
	if top, bottom, ok := l.Bounds(input.RatioKeyboard); ok {
		drawRatioKeyboard(screen, l, v, int(top), int(bottom))
	}
	// The last block runs to the bottom of the canvas.
	if top, _, ok := l.Bounds(input.EDOKeyboard); ok {
		drawEDOKeyboard(screen, l, v, int(top), int(l.Height))
	}
	drawStatus(screen, v)
}

func fillRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	dst.SubImage(r).(*ebiten.Image).Fill(c)
}

func vline(dst *ebiten.Image, x, top, bottom int, c color.Color) {
	fillRect(dst, image.Rect(x, top, x+1, bottom), c)
}

func drawCentBoard(dst *ebiten.Image, l input.Layout, v session.View, top, bottom int) {
	cfg := v.Config
	span := l.CentSpan()

	for _, c := range edoGridCents(cfg.EDODivisions, cfg.CentsDown, cfg.CentsUp) {
		vline(dst, int(tuning.XForCents(c, span, cfg.CentsDown, cfg.CentsUp)), top, bottom, gridColor)
	}
	set := cfg.ActiveRatioSet()
	if set.Playable() {
		for i := range set {
			c := set.Cents(cfg.RatioRoot(), i)
			x := int(tuning.XForCents(c, span, cfg.CentsDown, cfg.CentsUp))
			vline(dst, x, top+(bottom-top)/2, bottom, ratioColor)
		}
	}

	for i, ch := range v.Channels {
		if !ch.Active() {
			continue
		}
		c := playedColor
		if i == 0 {
			c = refColor
		}
		x := int(tuning.XForCents(ch.Pitch.Cents, span, cfg.CentsDown, cfg.CentsUp))
		fillRect(dst, image.Rect(x-1, top, x+2, bottom), c)
		text.Draw(dst, fmt.Sprintf("%.1f", ch.Pitch.Cents), basicfont.Face7x13, x+4, bottom-6, c)
	}
}

// edoGridCents lists the EDO steps that fall inside [-down, up].
func edoGridCents(divisions int, down, up float64) []float64 {
	if divisions < 2 {
		return nil
	}
	step := tuning.StepCents(divisions)
	var out []float64
	for k := int(-down / step); float64(k)*step <= up; k++ {
		if c := float64(k) * step; c >= -down {
			out = append(out, c)
		}
	}
	return out
}

func drawButtons(dst *ebiten.Image, l input.Layout, n, top, bottom int, held func(i int) bool, label func(i int) (string, string)) {
	span := l.KeySpan()
	for i := 0; i < n; i++ {
		b := tuning.ButtonSpan(i, n, span)
		r := image.Rect(int(b.Min)+1, top+2, int(b.Max)-1, bottom-2)
		c := keyColor
		if held(i) {
			c = heldColor
		}
		fillRect(dst, r, c)

		main, sub := label(i)
		text.Draw(dst, main, basicfont.Face7x13, r.Min.X+4, r.Min.Y+16, labelColor)
		if sub != "" {
			text.Draw(dst, sub, basicfont.Face7x13, r.Min.X+4, r.Min.Y+32, dimColor)
		}
	}
}

func drawRatioModes(dst *ebiten.Image, l input.Layout, v session.View, top, bottom int) {
	set := v.Config.ActiveRatioSet()
	if !set.Playable() {
		return
	}
	drawButtons(dst, l, len(set), top, bottom,
		func(i int) bool { return i == v.Config.RatioRoot() },
		func(i int) (string, string) { return fmt.Sprint(set[i]), "" })
}

func drawRatioKeyboard(dst *ebiten.Image, l input.Layout, v session.View, top, bottom int) {
	set := v.Config.ActiveRatioSet()
	if !set.Playable() {
		text.Draw(dst, "enter at least two ratios", basicfont.Face7x13, int(l.Margin), top+20, dimColor)
		return
	}
	root := set[v.Config.RatioRoot()]
	drawButtons(dst, l, len(set), top, bottom, v.RatioHeld,
		func(i int) (string, string) { return tuning.RatioLabel(set[i], root) })
}

func drawEDOKeyboard(dst *ebiten.Image, l input.Layout, v session.View, top, bottom int) {
	cfg := v.Config
	if cfg.EDODivisions < 2 {
		return
	}
	offsets := cfg.EDORatioOffsets()
	drawButtons(dst, l, cfg.EDODivisions+1, top, bottom, v.EDOHeld,
		func(i int) (string, string) {
			if off, ok := offsets[i]; ok {
				return fmt.Sprint(i), fmt.Sprintf("%+.0f", off)
			}
			return fmt.Sprint(i), ""
		})
}

func statusLine(v session.View) string {
	cfg := v.Config
	ref := "off"
	if cfg.ReferenceEnabled {
		ref = fmt.Sprintf("-%.0fc", cfg.ReferenceOffsetCents)
	}
	return fmt.Sprintf("%.2f Hz  %d-EDO  %s  %s  ref %s",
		cfg.BaseFrequency, cfg.EDODivisions, cfg.ActiveRatioSet(), cfg.Waveform, ref)
}

func drawStatus(dst *ebiten.Image, v session.View) {
	text.Draw(dst, statusLine(v), basicfont.Face7x13, 8, 16, labelColor)
}
