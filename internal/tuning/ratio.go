package tuning

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// RatioSet is an ordered list of integers forming a just-intonation chord
// relative to its first element, e.g. 4:5:6:7.
type RatioSet []int

// String renders the set in its input form and doubles as the slot name.
func (r RatioSet) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ":")
}

// Playable reports whether the set can drive a ratio keyboard.
func (r RatioSet) Playable() bool {
	return len(r) > 1
}

// Cents returns the distance from r[root] to r[i]. Both indices must be
// valid.
func (r RatioSet) Cents(root, i int) float64 {
	return CentsBetween(float64(r[root]), float64(r[i]))
}

// ParseRatioSets reads ratio text in the form "4:5:6 8:9:10". Characters
// other than digits, colons and whitespace are stripped rather than
// rejected. It returns false when nothing usable remains.
func ParseRatioSets(text string) ([]RatioSet, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ':' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)

	var sets []RatioSet
	for _, field := range strings.Fields(cleaned) {
		var set RatioSet
		for _, piece := range strings.Split(field, ":") {
			if piece == "" {
				continue
			}
			v, err := strconv.Atoi(piece)
			if err != nil || v <= 0 {
				continue
			}
			set = append(set, v)
		}
		if len(set) > 0 {
			sets = append(sets, set)
		}
	}
	return sets, len(sets) > 0
}

// ReduceFraction reduces numerator/denominator by their greatest common
// divisor. When the fraction is already in lowest terms the inputs come back
// unchanged with ok set to false.
func ReduceFraction(numerator, denominator int) (int, int, bool) {
	if denominator == 0 {
		return numerator, denominator, false
	}
	a, b := abs(numerator), abs(denominator)
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 || numerator/a == numerator {
		return numerator, denominator, false
	}
	return numerator / a, denominator / a, true
}

// RatioLabel returns the label for ratio a over root b, and a simplified
// form when one exists ("" otherwise).
func RatioLabel(a, b int) (string, string) {
	label := fmt.Sprintf("%d/%d", a, b)
	if b == 0 || a < b {
		return label, ""
	}
	if a%b == 0 {
		return label, fmt.Sprintf("(%d)", a/b)
	}
	if sa, sb, ok := ReduceFraction(a, b); ok {
		return label, fmt.Sprintf("(%d/%d)", sa, sb)
	}
	return label, ""
}

// NearestRatioOffsets assigns every ratio inside the octave to its nearest
// EDO step and returns the signed offset in cents (ratio minus step), keyed
// by step. When two ratios land on one step the closer one is kept.
func NearestRatioOffsets(ratioCents []float64, divisions int) map[int]float64 {
	offsets := make(map[int]float64)
	if divisions < 1 {
		return offsets
	}
	step := StepCents(divisions)
	for _, c := range ratioCents {
		if c < 0 || c > centsPerOctave {
			continue
		}
		below := int(math.Floor(c / step))
		best, dist := below, c-float64(below)*step
		if up := c - float64(below+1)*step; math.Abs(up) < math.Abs(dist) {
			best, dist = below+1, up
		}
		if prev, ok := offsets[best]; ok && math.Abs(prev) <= math.Abs(dist) {
			continue
		}
		offsets[best] = dist
	}
	return offsets
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
