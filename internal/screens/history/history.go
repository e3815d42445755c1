package history

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/markup"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/router"
	"github.com/abhisek/cbseprep/internal/screen"
	"github.com/abhisek/cbseprep/internal/ui/layout"
	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// previewLength caps the answer excerpt shown for an expanded session.
const previewLength = 160

// OpenMsg asks the chat screen to load a stored conversation.
type OpenMsg struct {
	Subject   string
	SessionID string
}

type historyLoadedMsg struct {
	Sessions []chat.Session
}

// SessionLister is the read side of the conversation store.
type SessionLister interface {
	ListSessions(subject string) []chat.Session
}

// HistoryScreen lists a subject's past conversations, most recent first.
type HistoryScreen struct {
	store    SessionLister
	subject  string
	sessions []chat.Session
	selected int
	expanded map[int]bool
	loaded   bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(store SessionLister, subject string) *HistoryScreen {
	return &HistoryScreen{
		store:    store,
		subject:  subject,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{Sessions: s.store.ListSessions(s.subject)}
	}
}

func (s *HistoryScreen) Title() string {
	return s.subject + " History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "Space", Description: "Preview"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.sessions = msg.Sessions
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "space", " ":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "enter":
			if len(s.sessions) == 0 {
				return s, nil
			}
			open := OpenMsg{Subject: s.subject, SessionID: s.sessions[s.selected].ID}
			return s, tea.Sequence(
				func() tea.Msg { return router.PopScreenMsg{} },
				func() tea.Msg { return open },
			)
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading conversations...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render(fmt.Sprintf("\n\n  No %s conversations yet. Ask your first question!", s.subject))
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		when := time.UnixMilli(sess.Timestamp).Format("Jan 02, 2006 15:04")
		line := fmt.Sprintf("  %-44s %s  %d msgs", sess.Title, when, len(sess.Messages))

		if i == s.selected {
			b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("▸" + line[1:]))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		}
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderPreview(sess, width))
		}
	}

	return b.String()
}

func renderPreview(sess chat.Session, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Width(max(width-8, 20)).PaddingLeft(6)

	var lines []string
	for _, m := range sess.Messages {
		if m.Role != query.RoleModel {
			continue
		}
		text := markup.Parse(m.Content).PlainText()
		if r := []rune(text); len(r) > previewLength {
			text = string(r[:previewLength]) + "..."
		}
		lines = append(lines, dim.Render(text))
		if m.Chapter != "" {
			lines = append(lines, dim.Render("Chapter: "+m.Chapter))
		}
		break
	}
	if len(lines) == 0 {
		lines = append(lines, dim.Italic(true).Render("No answer yet."))
	}
	return strings.Join(lines, "\n") + "\n"
}
