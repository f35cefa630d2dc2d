package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Option is one entry of a selector.
type Option struct {
	Label string // Display text.
	Value string // Passed to the navigator when chosen.
}

// Selector is a vertical list for one navigation level. It is disabled until
// options are loaded and remembers which option, if any, was chosen.
type Selector struct {
	Title   string
	Options []Option
	Cursor  int
	Chosen  int // Index into Options, or -1.
	Enabled bool
}

func newSelector(title string) Selector {
	return Selector{Title: title, Chosen: -1}
}

// Load replaces the options, enables the selector and drops any choice.
func (s *Selector) Load(options []Option) {
	s.Options = options
	s.Cursor = 0
	s.Chosen = -1
	s.Enabled = true
}

// Reset empties and disables the selector.
func (s *Selector) Reset() {
	s.Options = nil
	s.Cursor = 0
	s.Chosen = -1
	s.Enabled = false
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (s *Selector) MoveUp() {
	if len(s.Options) == 0 {
		return
	}
	s.Cursor--
	if s.Cursor < 0 {
		s.Cursor = len(s.Options) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (s *Selector) MoveDown() {
	if len(s.Options) == 0 {
		return
	}
	s.Cursor++
	if s.Cursor >= len(s.Options) {
		s.Cursor = 0
	}
}

// Highlighted returns the option under the cursor.
func (s *Selector) Highlighted() (Option, bool) {
	if !s.Enabled || s.Cursor < 0 || s.Cursor >= len(s.Options) {
		return Option{}, false
	}
	return s.Options[s.Cursor], true
}

// Choice returns the chosen option.
func (s *Selector) Choice() (Option, bool) {
	if s.Chosen < 0 || s.Chosen >= len(s.Options) {
		return Option{}, false
	}
	return s.Options[s.Chosen], true
}

// Render draws the selector as a bordered box at most height options tall,
// scrolled so the cursor stays visible.
func (s *Selector) Render(theme Theme, width, height int, focused bool) string {
	border := theme.BorderColor
	if focused {
		border = theme.FocusBorderColor
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 4 {
		box = box.Width(width - 2)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	if !s.Enabled {
		titleStyle = titleStyle.Foreground(theme.FaintText)
	}

	lines := []string{titleStyle.Render(s.Title)}
	switch {
	case !s.Enabled:
		lines = append(lines, faint.Render("-"))
	case len(s.Options) == 0:
		lines = append(lines, faint.Render("(none)"))
	default:
		lines = append(lines, s.renderOptions(theme, height, focused)...)
	}
	return box.Render(strings.Join(lines, "\n"))
}

func (s *Selector) renderOptions(theme Theme, height int, focused bool) []string {
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)
	chosen := lipgloss.NewStyle().Foreground(theme.ChosenForeground).Bold(true)
	cursor := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	first, last := 0, len(s.Options)
	if height > 0 && last > height {
		first = s.Cursor - height/2
		if first < 0 {
			first = 0
		}
		if first+height > last {
			first = last - height
		}
		last = first + height
	}

	var lines []string
	for index := first; index < last; index++ {
		marker := "  "
		if index == s.Chosen {
			marker = "* "
		}
		line := marker + s.Options[index].Label
		switch {
		case focused && index == s.Cursor:
			lines = append(lines, cursor.Render(line))
		case index == s.Chosen:
			lines = append(lines, chosen.Render(line))
		default:
			lines = append(lines, normal.Render(line))
		}
	}
	return lines
}
