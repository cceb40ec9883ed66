// Package input binds pointer, touch and key events to channels of a
// session and turns their coordinates into pitches.
package input

import (
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/session"
)

// Event is a normalized input event. Correlator is the touch identifier or
// the keyboard step; it is ignored for the pointer. X and Y are canvas
// coordinates and are ignored for keys.
type Event struct {
	Kind       channel.Source
	Correlator int
	X, Y       float64
}

// Router runs one Idle/Engaged state machine per touch id, per key and for
// the single pointer, all sharing the session's pool. It must be driven
// from one goroutine.
type Router struct {
	session *session.Session
	layout  Layout
	redraw  func()

	pointer bool
	touches map[int]bool
	keys    map[int]bool
}

// NewRouter creates a router. redraw is called after every event that
// changed something and may be nil.
func NewRouter(s *session.Session, layout Layout, redraw func()) *Router {
	if redraw == nil {
		redraw = func() {}
	}
	return &Router{
		session: s,
		layout:  layout,
		redraw:  redraw,
		touches: make(map[int]bool),
		keys:    make(map[int]bool),
	}
}

// Session returns the session the router drives.
func (r *Router) Session() *session.Session {
	return r.session
}

// Layout returns the current layout.
func (r *Router) Layout() Layout {
	return r.layout
}

// SetLayout replaces the layout, e.g. after the canvas was resized.
func (r *Router) SetLayout(l Layout) {
	r.layout = l
	r.redraw()
}

// Held counts physically engaged inputs, with or without a channel.
func (r *Router) Held() int {
	n := len(r.touches) + len(r.keys)
	if r.pointer {
		n++
	}
	return n
}

// KeyHeld reports whether a keyboard step is held down.
func (r *Router) KeyHeld(step int) bool {
	return r.keys[step]
}

// Press handles pointer down, touch start and key down.
func (r *Router) Press(ev Event) {
	cfg := r.session.Config()

	var (
		pitch channel.Pitch
		ok    bool
	)
	switch ev.Kind {
	case channel.Pointer, channel.Touch:
		if !r.layout.Inside(ev.X, ev.Y) {
			return
		}
		if !r.hold(ev) {
			return
		}
		if r.layout.RegionAt(ev.Y) == RatioModes {
			if mode, hit := ModeAt(r.layout, cfg, ev.X); hit && r.session.SelectRatioMode(mode) {
				r.redraw()
			}
			return
		}
		pitch, _, ok = PitchAt(r.layout, cfg, ev.X, ev.Y)
	case channel.Keyboard:
		if !r.hold(ev) {
			return
		}
		pitch, ok = KeyPitch(cfg, ev.Correlator)
	default:
		return
	}

	if !ok {
		return
	}
	ch := r.session.Allocate()
	if ch == nil {
		return
	}
	if r.session.Engage(ch, ev.Kind, ev.Correlator, pitch) {
		r.redraw()
	}
}

// Move handles pointer drags and touch moves. The channel is never
// reallocated; it follows the new coordinate, possibly into another region.
// Points that map to no pitch leave the previous pitch in place.
func (r *Router) Move(ev Event) {
	switch ev.Kind {
	case channel.Pointer:
		if !r.pointer {
			return
		}
	case channel.Touch:
		if !r.touches[ev.Correlator] {
			return
		}
	default:
		return
	}
	if !r.layout.Inside(ev.X, ev.Y) {
		return
	}

	ch := r.session.Find(ev.Kind, ev.Correlator)
	if ch == nil {
		return
	}
	pitch, _, ok := PitchAt(r.layout, r.session.Config(), ev.X, ev.Y)
	if !ok || pitch == ch.Pitch {
		return
	}
	r.session.Retune(ch, pitch)
	r.redraw()
}

// Release handles pointer up, touch end and key up, wherever they happen.
// Releasing something that was never pressed does nothing.
func (r *Router) Release(ev Event) {
	if !r.unhold(ev) {
		return
	}
	r.session.Release(r.session.Find(ev.Kind, ev.Correlator))
	r.redraw()
}

// AllOff drops every input and silences the session.
func (r *Router) AllOff() {
	r.pointer = false
	clear(r.touches)
	clear(r.keys)
	r.session.AllOff()
	r.redraw()
}

// hold marks an input as engaged. It returns false if it already was, so
// key repeat and duplicate touch starts do not allocate twice.
func (r *Router) hold(ev Event) bool {
	switch ev.Kind {
	case channel.Pointer:
		if r.pointer {
			return false
		}
		r.pointer = true
		r.session.SetPointerHeld(true)
	case channel.Touch:
		if r.touches[ev.Correlator] {
			return false
		}
		r.touches[ev.Correlator] = true
	case channel.Keyboard:
		if r.keys[ev.Correlator] {
			return false
		}
		r.keys[ev.Correlator] = true
	default:
		return false
	}
	return true
}

func (r *Router) unhold(ev Event) bool {
	switch ev.Kind {
	case channel.Pointer:
		if !r.pointer {
			return false
		}
		r.pointer = false
		r.session.SetPointerHeld(false)
	case channel.Touch:
		if !r.touches[ev.Correlator] {
			return false
		}
		delete(r.touches, ev.Correlator)
	case channel.Keyboard:
		if !r.keys[ev.Correlator] {
			return false
		}
		delete(r.keys, ev.Correlator)
	default:
		return false
	}
	return true
}
