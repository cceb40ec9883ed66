package input

import (
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/session"
	"github.com/icco/xentune/internal/tuning"
)

// KeyStep maps the number row to EDO steps: keys 1..9 and 0 are positions
// 1..10, which play steps 0..9.
func KeyStep(r rune) (int, bool) {
	switch {
	case r >= '1' && r <= '9':
		return int(r - '1'), true
	case r == '0':
		return 9, true
	}
	return 0, false
}

// KeyPitch is the pitch a keyboard step plays. Steps outside the current
// EDO are a miss.
func KeyPitch(cfg session.Config, step int) (channel.Pitch, bool) {
	if cfg.EDODivisions < 2 || step < 0 || step > cfg.EDODivisions {
		return channel.Pitch{}, false
	}
	return channel.EDOStep(step, tuning.EDOStepToCents(step, cfg.EDODivisions)), true
}
