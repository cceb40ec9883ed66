// Package tuning converts between frequency ratios, cents, EDO steps and
// screen positions. Everything here is stateless.
package tuning

import "math"

const centsPerOctave = 1200

// CentsBetween returns the distance from a to b in cents.
// It is not clamped to the octave and may be negative.
func CentsBetween(a, b float64) float64 {
	if a == b {
		return 0
	}
	return centsPerOctave * math.Log2(b/a)
}

// FrequencyAt returns the frequency reached by moving cents away from base.
func FrequencyAt(base, cents float64) float64 {
	return base * math.Pow(2, cents/centsPerOctave)
}

// EDOStepToCents returns the cents of step in an equal division of the
// octave into divisions parts.
func EDOStepToCents(step, divisions int) float64 {
	return float64(step) / float64(divisions) * centsPerOctave
}

// StepCents is the size of one step of an EDO in cents.
func StepCents(divisions int) float64 {
	return centsPerOctave / float64(divisions)
}
