package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// Choice is a vertical single-select list.
type Choice struct {
	Options  []string
	Selected int
}

// NewChoice creates a list with the cursor on selected.
func NewChoice(options []string, selected int) Choice {
	if selected < 0 || selected >= len(options) {
		selected = 0
	}
	return Choice{Options: options, Selected: selected}
}

// Update handles keyboard navigation.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	}
	return c, nil
}

// Value returns the option under the cursor, or "" for an empty list.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// View renders the list.
func (c Choice) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		if i == c.Selected {
			b.WriteString(theme.Selected.Render("  ▸ " + opt))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render("    " + opt))
		}
		b.WriteString("\n")
	}
	return b.String()
}
