package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unclebandit/smsleopard-console/internal/model"
)

// Styles collects the lipgloss styles shared by the console pages.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Status map[model.Status]lipgloss.Style
}

func DefaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:    base.Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1),
		Header:   base.Bold(true).Foreground(lipgloss.Color("252")),
		Muted:    base.Foreground(lipgloss.Color("241")),
		Error:    base.Foreground(lipgloss.Color("196")),
		Success:  base.Foreground(lipgloss.Color("42")),
		Selected: base.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57")),
		Help:     base.Foreground(lipgloss.Color("241")),
		Status: map[model.Status]lipgloss.Style{
			model.StatusDraft:     base.Foreground(lipgloss.Color("245")),
			model.StatusScheduled: base.Foreground(lipgloss.Color("135")),
			model.StatusSending:   base.Foreground(lipgloss.Color("214")),
			model.StatusSent:      base.Foreground(lipgloss.Color("42")),
			model.StatusFailed:    base.Foreground(lipgloss.Color("196")),
		},
	}
}

func (s Styles) statusBadge(status model.Status) string {
	style, ok := s.Status[status]
	if !ok {
		style = s.Muted
	}
	return style.Render(string(status))
}

// bar renders a simple fixed-width progress bar for an integer percentage.
func bar(percent, width int) string {
	if width < 2 {
		width = 2
	}
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	out := make([]rune, width)
	for i := range out {
		if i < filled {
			out[i] = '█'
		} else {
			out[i] = '░'
		}
	}
	return string(out)
}
