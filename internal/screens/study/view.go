package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/markup"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/syllabus"
	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// maxSources caps the citations listed under an answer.
const maxSources = 3

func (s *StudyScreen) View(width, height int) string {
	top := []string{
		s.renderTabs(width),
		s.renderMarks(),
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-2, 0))),
	}

	var bottom []string
	if s.ctrl.Loading() {
		bottom = append(bottom, s.spinner.View()+" "+theme.Hint.Render("Finding the answer in your textbooks..."))
	}
	if e := s.ctrl.Err(); e != "" {
		bottom = append(bottom, theme.Bad.Render("✗ "+e))
	}
	if s.notice != "" {
		bottom = append(bottom, theme.Hint.Render(s.notice))
	}
	s.input.SetWidth(width - 16)
	bottom = append(bottom, s.input.View())

	avail := height - len(top) - len(bottom) - 1
	body := s.renderTranscript(width-2, avail)

	parts := append(top, body)
	parts = append(parts, bottom...)
	return strings.Join(parts, "\n")
}

func (s *StudyScreen) renderTabs(width int) string {
	tabs := make([]string, 0, len(s.subjects))
	for _, subj := range s.subjects {
		if subj == s.ctrl.Subject() {
			tabs = append(tabs, theme.TabActive.Render(subj))
		} else {
			tabs = append(tabs, theme.Tab.Render(subj))
		}
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(tabs, " "))
}

func (s *StudyScreen) renderMarks() string {
	parts := []string{theme.Hint.Render("Marks:")}
	for _, m := range syllabus.Marks {
		label := fmt.Sprintf(" %d ", m)
		if m == s.ctrl.Marks() {
			parts = append(parts, theme.Selected.Render("["+strings.TrimSpace(label)+"]"))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// renderTranscript renders the open conversation and returns the window of
// height lines that ends scroll lines above the newest line.
func (s *StudyScreen) renderTranscript(width, height int) string {
	if height <= 0 {
		return ""
	}

	msgs := s.ctrl.Transcript()
	if len(msgs) == 0 {
		return s.renderEmpty(width, height)
	}

	var blocks []string
	for _, m := range msgs {
		blocks = append(blocks, renderMessage(m, width))
	}
	lines := strings.Split(strings.Join(blocks, "\n\n"), "\n")

	maxScroll := max(len(lines)-height, 0)
	if s.scroll > maxScroll {
		s.scroll = maxScroll
	}
	end := len(lines) - s.scroll
	start := max(end-height, 0)

	window := lines[start:end]
	for len(window) < height {
		window = append(window, "")
	}
	return strings.Join(window, "\n")
}

func (s *StudyScreen) renderEmpty(width, height int) string {
	lines := []string{
		theme.Title.Render(fmt.Sprintf("Ask anything from your %s syllabus", s.ctrl.Subject())),
		"",
		theme.Subtitle.Render("Pick how many marks the answer should be worth and press Enter."),
	}
	if n := len(s.ctrl.Sessions()); n > 0 {
		lines = append(lines, "", theme.Hint.Render(fmt.Sprintf("%d past conversation(s) · Ctrl+O to open", n)))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

func renderMessage(m chat.Message, width int) string {
	if m.Role == query.RoleUser {
		head := theme.UserBubble.Render("You")
		if m.Marks > 0 {
			head += theme.Hint.Render(fmt.Sprintf(" · %d marks", m.Marks))
		}
		text := lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(m.Content)
		return head + "\n" + text
	}

	inner := width - 4
	body := markup.Terminal(markup.Parse(m.Content), inner)

	var meta []string
	if m.Chapter != "" {
		meta = append(meta, theme.Hint.Render("Chapter: "+m.Chapter))
	}
	for i, src := range m.Sources {
		if i == maxSources {
			meta = append(meta, theme.Hint.Render(fmt.Sprintf("  +%d more sources", len(m.Sources)-maxSources)))
			break
		}
		meta = append(meta, theme.Hint.Render(formatSource(src)))
	}
	if len(m.Keywords) > 0 {
		chips := make([]string, len(m.Keywords))
		for i, k := range m.Keywords {
			chips[i] = theme.Chip.Render("#" + k)
		}
		meta = append(meta, strings.Join(chips, " "))
	}
	if len(meta) > 0 {
		body += "\n\n" + strings.Join(meta, "\n")
	}

	return theme.ModelBubble.Width(width).Render(body)
}

func formatSource(src chat.SourceRef) string {
	return fmt.Sprintf("  ◦ %s (%d%%)", src.Label(), src.Percent())
}
