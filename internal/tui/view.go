package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/icco/xentune/internal/input"
	"github.com/icco/xentune/internal/session"
	"github.com/icco/xentune/internal/tuning"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3A3A4A"))

	heldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)
)

// cell styles used on the centboard, indexed by cellKind.
type cellKind int

const (
	cellBlank cellKind = iota
	cellGrid
	cellRatio
	cellPlayed
	cellReference
)

var cellStyles = [...]lipgloss.Style{
	cellBlank:     lipgloss.NewStyle(),
	cellGrid:      lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
	cellRatio:     lipgloss.NewStyle().Foreground(lipgloss.Color("#5A8CC8")),
	cellPlayed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
	cellReference: lipgloss.NewStyle().Foreground(lipgloss.Color("#C85AC8")),
}

type cell struct {
	r    rune
	kind cellKind
}

// View implements tea.Model. It only reads session state.
func (m Model) View() string {
	v := m.router.Session().Snapshot()
	l := m.router.Layout()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(statusStyle.Render(statusLine(v)) + "\n\n")
	for _, row := range renderCanvas(l, v) {
		b.WriteString(row + "\n")
	}
	b.WriteString("\n" + messageStyle.Render(m.status) + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func statusLine(v session.View) string {
	cfg := v.Config
	ref := "off"
	if cfg.ReferenceEnabled {
		ref = fmt.Sprintf("-%.0fc (%s)", cfg.ReferenceOffsetCents, cfg.ReferencePolicy)
	}
	return fmt.Sprintf("%.2f Hz • %d-EDO • %s • %s • drone %s • %d playing",
		cfg.BaseFrequency, cfg.EDODivisions, cfg.ActiveRatioSet(), cfg.Waveform, ref, v.Active())
}

// renderCanvas draws one string per canvas row.
func renderCanvas(l input.Layout, v session.View) []string {
	rows := make([]string, int(l.Height))
	width := int(l.Width)

	for _, blk := range l.Blocks {
		top, bottom, ok := l.Bounds(blk.Region)
		if !ok {
			continue
		}
		first, last := int(top), min(int(bottom), len(rows))
		if isLastVisible(l, blk.Region) {
			last = len(rows)
		}
		for r := first; r < last; r++ {
			rows[r] = renderRow(l, v, blk.Region, r-first, last-first, width)
		}
	}
	for i := range rows {
		if rows[i] == "" {
			rows[i] = strings.Repeat(" ", width)
		}
	}
	return rows
}

func isLastVisible(l input.Layout, region input.Region) bool {
	last := input.NoRegion
	for _, b := range l.Blocks {
		if b.Visible {
			last = b.Region
		}
	}
	return last == region
}

func renderRow(l input.Layout, v session.View, region input.Region, row, height, width int) string {
	cfg := v.Config
	switch region {
	case input.CentBoard:
		return centRow(l, v, row, height, width)

	case input.RatioModes:
		set := cfg.ActiveRatioSet()
		if !set.Playable() {
			return ""
		}
		return buttonRow(l, width, len(set),
			func(i int) bool { return i == cfg.RatioRoot() },
			func(i int) string {
				if row == height/2 {
					return fmt.Sprint(set[i])
				}
				return ""
			})

	case input.RatioKeyboard:
		set := cfg.ActiveRatioSet()
		if !set.Playable() {
			if row == 0 {
				return statusStyle.Render(" enter at least two ratios")
			}
			return ""
		}
		root := set[cfg.RatioRoot()]
		return buttonRow(l, width, len(set), v.RatioHeld, func(i int) string {
			label, simple := tuning.RatioLabel(set[i], root)
			switch row {
			case height / 2:
				return label
			case height/2 + 1:
				return simple
			}
			return ""
		})

	case input.EDOKeyboard:
		if cfg.EDODivisions < 2 {
			return ""
		}
		offsets := cfg.EDORatioOffsets()
		return buttonRow(l, width, cfg.EDODivisions+1, v.EDOHeld, func(i int) string {
			switch row {
			case height / 2:
				return fmt.Sprint(i)
			case height/2 + 1:
				if off, ok := offsets[i]; ok {
					return fmt.Sprintf("%+.0f", off)
				}
			}
			return ""
		})
	}
	return ""
}

func centRow(l input.Layout, v session.View, row, height, width int) string {
	cfg := v.Config
	span := l.CentSpan()
	line := make([]cell, width)
	for i := range line {
		line[i] = cell{' ', cellBlank}
	}
	put := func(cents float64, r rune, kind cellKind) {
		x := int(tuning.XForCents(cents, span, cfg.CentsDown, cfg.CentsUp))
		if x >= 0 && x < width {
			line[x] = cell{r, kind}
		}
	}

	if cfg.EDODivisions >= 2 {
		step := tuning.StepCents(cfg.EDODivisions)
		for k := int(-cfg.CentsDown / step); float64(k)*step <= cfg.CentsUp; k++ {
			put(float64(k)*step, '┊', cellGrid)
		}
	}
	if set := cfg.ActiveRatioSet(); set.Playable() && row >= height/2 {
		for i := range set {
			put(set.Cents(cfg.RatioRoot(), i), '│', cellRatio)
		}
	}
	for i, ch := range v.Channels {
		if !ch.Active() {
			continue
		}
		if i == 0 {
			put(ch.Pitch.Cents, '▒', cellReference)
		} else {
			put(ch.Pitch.Cents, '█', cellPlayed)
		}
	}

	var b strings.Builder
	for start := 0; start < len(line); {
		end := start
		var run []rune
		for end < len(line) && line[end].kind == line[start].kind {
			run = append(run, line[end].r)
			end++
		}
		b.WriteString(cellStyles[line[start].kind].Render(string(run)))
		start = end
	}
	return b.String()
}

// buttonRow lays n buttons across the keyboard span of one terminal row.
func buttonRow(l input.Layout, width, n int, held func(int) bool, label func(int) string) string {
	span := l.KeySpan()
	var b strings.Builder
	col := 0
	for i := 0; i < n; i++ {
		bs := tuning.ButtonSpan(i, n, span)
		start, end := int(bs.Min), min(int(bs.Max), width)
		if start > col {
			b.WriteString(strings.Repeat(" ", start-col))
			col = start
		}
		w := end - col
		if w <= 0 {
			continue
		}
		style := keyStyle
		if held(i) {
			style = heldStyle
		}
		// Leave a one column gap between buttons.
		face := fit(label(i), w-1)
		b.WriteString(style.Render(face) + " ")
		col = end
	}
	if col < width {
		b.WriteString(strings.Repeat(" ", width-col))
	}
	return b.String()
}

// fit pads or truncates s to exactly w columns.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > w {
		r = r[:w]
	}
	return string(r) + strings.Repeat(" ", w-len(r))
}
