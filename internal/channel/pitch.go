package channel

import "fmt"

// Source identifies which input currently owns a channel.
type Source int

const (
	Off Source = iota
	Keyboard
	Touch
	Pointer
	Reference
)

func (s Source) String() string {
	switch s {
	case Off:
		return "off"
	case Keyboard:
		return "keyboard"
	case Touch:
		return "touch"
	case Pointer:
		return "pointer"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// PitchKind tags how a Pitch was selected.
type PitchKind int

const (
	NoPitch PitchKind = iota
	FreePitch
	RatioPitch
	EDOPitch
)

// Pitch is the pitch selection held by a channel. The zero value means no
// pitch. Ratio and EDO steps are exclusive: a Pitch carries at most one.
type Pitch struct {
	Kind  PitchKind
	Cents float64
	Step  int
}

// Free is a pitch picked directly on the cents axis.
func Free(cents float64) Pitch {
	return Pitch{Kind: FreePitch, Cents: cents}
}

// RatioStep is a pitch picked from the ratio keyboard.
func RatioStep(index int, cents float64) Pitch {
	return Pitch{Kind: RatioPitch, Cents: cents, Step: index}
}

// EDOStep is a pitch picked from the EDO keyboard or the number keys.
func EDOStep(index int, cents float64) Pitch {
	return Pitch{Kind: EDOPitch, Cents: cents, Step: index}
}

// IsSet reports whether the pitch holds a value.
func (p Pitch) IsSet() bool {
	return p.Kind != NoPitch
}

// RatioStep returns the ratio keyboard index, if the pitch came from there.
func (p Pitch) RatioStep() (int, bool) {
	return p.Step, p.Kind == RatioPitch
}

// EDOStep returns the EDO step, if the pitch came from the EDO keyboard.
func (p Pitch) EDOStep() (int, bool) {
	return p.Step, p.Kind == EDOPitch
}
