package input

import (
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/session"
	"github.com/icco/xentune/internal/tuning"
)

// Region is one horizontal band of the canvas.
type Region int

const (
	NoRegion Region = iota
	CentBoard
	RatioModes
	RatioKeyboard
	EDOKeyboard
)

func (r Region) String() string {
	switch r {
	case CentBoard:
		return "centboard"
	case RatioModes:
		return "ratio-modes"
	case RatioKeyboard:
		return "ratio-keyboard"
	case EDOKeyboard:
		return "edo-keyboard"
	default:
		return "none"
	}
}

// Block is a region with its height in the vertical stack.
type Block struct {
	Region  Region
	Height  float64
	Visible bool
}

// Layout describes where the regions sit on the canvas. Units are whatever
// the host uses; the router only compares numbers.
type Layout struct {
	Width  float64
	Height float64
	// Margin is left empty on both sides of the keyboards.
	Margin float64
	Blocks []Block
}

// DefaultLayout is the 600 unit tall canvas: cents axis, optional ratio
// mode row, ratio keyboard, EDO keyboard.
func DefaultLayout(width float64) Layout {
	return Layout{
		Width:  width,
		Height: 600,
		Margin: 20,
		Blocks: []Block{
			{Region: CentBoard, Height: 200, Visible: true},
			{Region: RatioModes, Height: 40, Visible: false},
			{Region: RatioKeyboard, Height: 200, Visible: true},
			{Region: EDOKeyboard, Height: 200, Visible: true},
		},
	}
}

// Inside reports whether a point lies on the canvas, edges included.
func (l Layout) Inside(x, y float64) bool {
	return x >= 0 && x <= l.Width && y >= 0 && y <= l.Height
}

// RegionAt returns the first visible block whose extent contains y. The
// last visible block runs to the bottom of the canvas.
func (l Layout) RegionAt(y float64) Region {
	if y < 0 {
		return NoRegion
	}
	top := 0.0
	last := NoRegion
	for _, b := range l.Blocks {
		if !b.Visible {
			continue
		}
		top += b.Height
		last = b.Region
		if y <= top {
			return b.Region
		}
	}
	if y <= l.Height {
		return last
	}
	return NoRegion
}

// Bounds returns the vertical extent of a visible region.
func (l Layout) Bounds(region Region) (top, bottom float64, ok bool) {
	for _, b := range l.Blocks {
		if !b.Visible {
			continue
		}
		if b.Region == region {
			return top, top + b.Height, true
		}
		top += b.Height
	}
	return 0, 0, false
}

// SetVisible shows or hides a region.
func (l *Layout) SetVisible(region Region, visible bool) {
	for i := range l.Blocks {
		if l.Blocks[i].Region == region {
			l.Blocks[i].Visible = visible
		}
	}
}

// Visible reports whether a region is shown.
func (l Layout) Visible(region Region) bool {
	_, _, ok := l.Bounds(region)
	return ok
}

// CentSpan is the horizontal extent of the cents axis.
func (l Layout) CentSpan() tuning.Span {
	return tuning.Span{Min: 0, Max: l.Width}
}

// KeySpan is the horizontal extent of the keyboards.
func (l Layout) KeySpan() tuning.Span {
	return tuning.Span{Min: l.Margin, Max: l.Width - l.Margin}
}

// PitchAt resolves a canvas point to a pitch. It reports false on a region
// miss: the ratio-mode row, a ratio keyboard with fewer than two ratios, an
// EDO keyboard without a valid division, or a point in a keyboard margin.
func PitchAt(l Layout, cfg session.Config, x, y float64) (channel.Pitch, Region, bool) {
	region := l.RegionAt(y)
	switch region {
	case CentBoard:
		return channel.Free(tuning.CentsAt(x, l.CentSpan(), cfg.CentsDown, cfg.CentsUp)), region, true

	case RatioKeyboard:
		set := cfg.ActiveRatioSet()
		if !set.Playable() {
			return channel.Pitch{}, region, false
		}
		i, ok := tuning.RatioIndexAt(x, l.KeySpan(), len(set))
		if !ok {
			return channel.Pitch{}, region, false
		}
		return channel.RatioStep(i, set.Cents(cfg.RatioRoot(), i)), region, true

	case EDOKeyboard:
		if cfg.EDODivisions < 2 {
			return channel.Pitch{}, region, false
		}
		step, ok := tuning.EDOStepAt(x, l.KeySpan(), cfg.EDODivisions)
		if !ok {
			return channel.Pitch{}, region, false
		}
		return channel.EDOStep(step, tuning.EDOStepToCents(step, cfg.EDODivisions)), region, true
	}
	return channel.Pitch{}, region, false
}

// ModeAt returns the ratio-mode button under x.
func ModeAt(l Layout, cfg session.Config, x float64) (int, bool) {
	set := cfg.ActiveRatioSet()
	if !set.Playable() {
		return 0, false
	}
	return tuning.RatioIndexAt(x, l.KeySpan(), len(set))
}
