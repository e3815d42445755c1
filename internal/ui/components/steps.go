package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// Steps renders a wizard position such as "● ● ○  Step 2 of 3 · Class".
type Steps struct {
	Labels  []string
	Current int
}

// View renders the step indicator.
func (s Steps) View() string {
	if len(s.Labels) == 0 {
		return ""
	}

	dots := make([]string, len(s.Labels))
	for i := range s.Labels {
		switch {
		case i < s.Current:
			dots[i] = lipgloss.NewStyle().Foreground(theme.Secondary).Render("●")
		case i == s.Current:
			dots[i] = lipgloss.NewStyle().Foreground(theme.Primary).Render("●")
		default:
			dots[i] = lipgloss.NewStyle().Foreground(theme.Border).Render("○")
		}
	}

	cur := s.Current
	if cur >= len(s.Labels) {
		cur = len(s.Labels) - 1
	}
	label := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Step %d of %d · %s", cur+1, len(s.Labels), s.Labels[cur]))

	return strings.Join(dots, " ") + "  " + label
}
