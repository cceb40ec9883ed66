// Package tui hosts the explorer in a terminal. Mouse presses and drags
// play the canvas; number keys toggle EDO steps because terminals do not
// report key releases.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/xentune/internal/channel"
	"github.com/icco/xentune/internal/input"
)

const (
	headerRows = 3 // title, status, blank
	footerRows = 3 // blank, message, help
	minRows    = 9
	minCols    = 20
)

// StepMsg presses or releases a keyboard step from outside the terminal,
// e.g. a MIDI controller.
type StepMsg struct {
	Step int
	Down bool
}

// StatusMsg replaces the message line.
type StatusMsg string

// Model is the bubbletea model over an input router.
type Model struct {
	router *input.Router
	keys   keyMap
	help   help.Model
	title  string
	status string
	width  int
	height int
}

// New creates a terminal host for r.
func New(r *input.Router, title string) Model {
	return Model{
		router: r,
		keys:   defaultKeys(),
		help:   help.New(),
		title:  title,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.router.SetLayout(terminalLayout(msg.Width, msg.Height, m.router.Layout()))
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case StepMsg:
		ev := input.Event{Kind: channel.Keyboard, Correlator: msg.Step}
		if msg.Down {
			m.router.Press(ev)
		} else {
			m.router.Release(ev)
		}
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.router.Session()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.router.AllOff()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Play):
		m.toggleStep(msg.String())
	case key.Matches(msg, m.keys.AllOff):
		m.router.AllOff()
	case key.Matches(msg, m.keys.EDOUp):
		s.StepEDO(1)
	case key.Matches(msg, m.keys.EDODown):
		s.StepEDO(-1)
	case key.Matches(msg, m.keys.Waveform):
		s.SetWaveform(s.Config().Waveform.Next())
	case key.Matches(msg, m.keys.Reference):
		s.SetReferenceEnabled(!s.Config().ReferenceEnabled)
	case key.Matches(msg, m.keys.NextSlot):
		s.NextRatioSlot()
	case key.Matches(msg, m.keys.Modes):
		l := terminalLayout(m.width, m.height, m.router.Layout())
		l.SetVisible(input.RatioModes, !l.Visible(input.RatioModes))
		m.router.SetLayout(l)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) toggleStep(k string) {
	r := []rune(k)
	if len(r) != 1 {
		return
	}
	step, ok := input.KeyStep(r[0])
	if !ok {
		return
	}
	ev := input.Event{Kind: channel.Keyboard, Correlator: step}
	if m.router.KeyHeld(step) {
		m.router.Release(ev)
	} else {
		m.router.Press(ev)
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) {
	ev := pointerAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.router.Press(ev)
		}
	case tea.MouseActionMotion:
		m.router.Move(ev)
	case tea.MouseActionRelease:
		// X10 releases do not say which button went up.
		if msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone {
			m.router.Release(ev)
		}
	}
}

// pointerAt converts a terminal cell to canvas coordinates, aiming at the
// middle of the cell.
func pointerAt(col, row int) input.Event {
	return input.Event{
		Kind: channel.Pointer,
		X:    float64(col) + 0.5,
		Y:    float64(row-headerRows) + 0.5,
	}
}

// canvasRows is how many terminal rows the canvas gets.
func canvasRows(height int) int {
	return max(height-headerRows-footerRows, minRows)
}

// terminalLayout scales the default layout to the terminal, one unit per
// cell, keeping which regions prev shows.
func terminalLayout(width, height int, prev input.Layout) input.Layout {
	rows := canvasRows(height)
	l := input.DefaultLayout(float64(max(width, minCols)))
	scale := float64(rows) / l.Height
	l.Height = float64(rows)
	l.Margin = 1
	for i := range l.Blocks {
		l.Blocks[i].Height = max(float64(int(l.Blocks[i].Height*scale+0.5)), 1)
		l.Blocks[i].Visible = prev.Visible(l.Blocks[i].Region)
	}
	return l
}
