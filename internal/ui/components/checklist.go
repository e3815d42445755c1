package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// Checklist is a vertical multi-select list. Space toggles the option under
// the cursor.
type Checklist struct {
	Options []string
	Cursor  int
	checked map[int]bool
}

// NewChecklist creates a checklist with the given options pre-checked.
func NewChecklist(options []string, checked []string) Checklist {
	c := Checklist{Options: options, checked: make(map[int]bool)}
	for i, opt := range options {
		for _, want := range checked {
			if opt == want {
				c.checked[i] = true
			}
		}
	}
	return c
}

// Update handles navigation and toggling.
func (c Checklist) Update(msg tea.Msg) (Checklist, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ", "x":
		c.Toggle(c.Cursor)
	}
	return c, nil
}

// Toggle flips option i.
func (c *Checklist) Toggle(i int) {
	if i < 0 || i >= len(c.Options) {
		return
	}
	if c.checked == nil {
		c.checked = make(map[int]bool)
	}
	c.checked[i] = !c.checked[i]
}

// Checked returns the checked options in list order.
func (c Checklist) Checked() []string {
	var out []string
	for i, opt := range c.Options {
		if c.checked[i] {
			out = append(out, opt)
		}
	}
	return out
}

// View renders the checklist.
func (c Checklist) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		box := "[ ]"
		if c.checked[i] {
			box = "[x]"
		}
		prefix := "    "
		if i == c.Cursor {
			prefix = "  ▸ "
		}
		line := prefix + box + " " + opt

		switch {
		case i == c.Cursor:
			b.WriteString(theme.Selected.Render(line))
		case c.checked[i]:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(line))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
