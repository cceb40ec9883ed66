package tuning

import "math"

// Span is a horizontal extent on screen, in whatever units the host uses
// (pixels for the canvas, cells for the terminal).
type Span struct {
	Min float64
	Max float64
}

// Width of the span.
func (s Span) Width() float64 {
	return s.Max - s.Min
}

// Contains reports whether x lies inside the span, edges included.
func (s Span) Contains(x float64) bool {
	return x >= s.Min && x <= s.Max
}

// remap linearly maps v from [inMin, inMax] onto [outMin, outMax].
func remap(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return outMin + (v-inMin)/(inMax-inMin)*(outMax-outMin)
}

// CentsAt maps x across span onto the range [-down, up] cents.
func CentsAt(x float64, span Span, down, up float64) float64 {
	return remap(x, span.Min, span.Max, -down, up)
}

// XForCents is the inverse of CentsAt, used to place markers.
func XForCents(cents float64, span Span, down, up float64) float64 {
	return remap(cents, -down, up, span.Min, span.Max)
}

// RatioIndexAt returns which of n equally wide ratio buttons laid across span
// contains x.
func RatioIndexAt(x float64, span Span, n int) (int, bool) {
	return buttonAt(x, span, n)
}

// EDOStepAt returns the EDO step under x. An EDO keyboard has divisions+1
// buttons so that the octave itself is playable.
func EDOStepAt(x float64, span Span, divisions int) (int, bool) {
	return buttonAt(x, span, divisions+1)
}

func buttonAt(x float64, span Span, n int) (int, bool) {
	if n <= 0 || span.Width() <= 0 {
		return 0, false
	}
	i := int(math.Floor(remap(x, span.Min, span.Max, 0, float64(n))))
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// ButtonSpan returns the extent of button i out of n laid across span.
func ButtonSpan(i, n int, span Span) Span {
	return Span{
		Min: remap(float64(i), 0, float64(n), span.Min, span.Max),
		Max: remap(float64(i+1), 0, float64(n), span.Min, span.Max),
	}
}
