package study

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/router"
	"github.com/abhisek/cbseprep/internal/screen"
	"github.com/abhisek/cbseprep/internal/screens/history"
	"github.com/abhisek/cbseprep/internal/syllabus"
	"github.com/abhisek/cbseprep/internal/ui/components"
	"github.com/abhisek/cbseprep/internal/ui/layout"
	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// DefaultTimeout bounds one request to the answer service.
const DefaultTimeout = 60 * time.Second

// AnswerMsg carries the outcome of a request back to the event loop. It
// must reach the chat controller even while another screen is on top.
type AnswerMsg struct {
	Result chat.Result
}

// StudyScreen is the main chat view: subject tabs, marks, transcript and
// the question box.
type StudyScreen struct {
	ctrl     *chat.Controller
	store    *chat.Store
	asker    query.Asker
	timeout  time.Duration
	subjects []string

	input   components.TextInput
	spinner spinner.Model
	scroll  int // lines scrolled up from the newest
	notice  string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)
var _ screen.EscHandler = (*StudyScreen)(nil)

// New creates the chat screen for the given subjects. The controller's
// subject must be one of them.
func New(ctrl *chat.Controller, store *chat.Store, asker query.Asker, subjects []string, timeout time.Duration) *StudyScreen {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if len(subjects) == 0 {
		subjects = syllabus.Subjects
	}
	return &StudyScreen{
		ctrl:     ctrl,
		store:    store,
		asker:    asker,
		timeout:  timeout,
		subjects: subjects,
		input:    components.NewTextInput("Ask a question from your syllabus...", query.MaxQuestionLength, true),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *StudyScreen) Title() string {
	return s.ctrl.Subject()
}

// HandlesEsc is true while an inline error or notice can be dismissed.
func (s *StudyScreen) HandlesEsc() bool {
	return s.ctrl.Err() != "" || s.notice != ""
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Ask"},
	}
	if s.ctrl.ActiveID() != "" {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+F", Description: "Follow up"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "Tab", Description: "Subject"},
		layout.KeyHint{Key: "Ctrl+K", Description: "Marks"},
		layout.KeyHint{Key: "Ctrl+N", Description: "New"},
		layout.KeyHint{Key: "Ctrl+O", Description: "History"},
	)
	if s.HandlesEsc() {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Dismiss"})
	}
	return hints
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case AnswerMsg:
		s.ctrl.Complete(msg.Result.Pending, msg.Result.Response, msg.Result.Err)
		s.scroll = 0
		return s, nil

	case history.OpenMsg:
		if msg.Subject != s.ctrl.Subject() {
			return s, nil
		}
		if err := s.ctrl.OpenSession(msg.SessionID); err != nil {
			s.notice = "That conversation could not be opened."
		}
		s.scroll = 0
		return s, nil

	case spinner.TickMsg:
		if !s.ctrl.Loading() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *StudyScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return s.submit(false)
	case "ctrl+f":
		return s.submit(true)
	case "tab":
		return s.cycleSubject(1)
	case "shift+tab":
		return s.cycleSubject(-1)
	case "ctrl+k":
		s.cycleMarks()
		return s, nil
	case "ctrl+n":
		s.ctrl.NewChat()
		s.notice = ""
		s.scroll = 0
		return s, nil
	case "ctrl+o":
		subject := s.ctrl.Subject()
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: history.New(s.store, subject)}
		}
	case "pgup":
		s.scroll += 5
		return s, nil
	case "pgdown":
		s.scroll -= 5
		if s.scroll < 0 {
			s.scroll = 0
		}
		return s, nil
	case "esc":
		s.ctrl.ClearError()
		s.notice = ""
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *StudyScreen) submit(followUp bool) (screen.Screen, tea.Cmd) {
	var (
		p   *chat.Pending
		err error
	)
	if followUp {
		p, err = s.ctrl.BeginFollowUp(s.input.Value(), s.ctrl.Marks())
	} else {
		p, err = s.ctrl.Begin(s.input.Value(), s.ctrl.Marks())
	}

	switch {
	case errors.Is(err, chat.ErrBusy):
		s.notice = "Still working on your last question."
		return s, nil
	case errors.Is(err, chat.ErrNoActiveSession):
		s.notice = "Ask a question first, then follow up on the answer."
		return s, nil
	case err != nil, p == nil:
		return s, nil
	}

	s.input.Reset()
	s.notice = ""
	s.scroll = 0
	return s, tea.Batch(s.spinner.Tick, s.ask(p))
}

// ask runs the request off the event loop. Exchange turns a panic into an
// error so the answer message always arrives and clears the loading flag.
func (s *StudyScreen) ask(p *chat.Pending) tea.Cmd {
	asker, timeout := s.asker, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return AnswerMsg{Result: chat.Exchange(ctx, asker, p)}
	}
}

func (s *StudyScreen) cycleSubject(dir int) (screen.Screen, tea.Cmd) {
	if len(s.subjects) < 2 {
		return s, nil
	}
	idx := 0
	for i, subj := range s.subjects {
		if subj == s.ctrl.Subject() {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(s.subjects)) % len(s.subjects)
	if err := s.ctrl.SwitchSubject(s.subjects[idx]); err != nil {
		s.notice = err.Error()
	}
	s.scroll = 0
	return s, nil
}

func (s *StudyScreen) cycleMarks() {
	marks := syllabus.Marks
	idx := 0
	for i, m := range marks {
		if m == s.ctrl.Marks() {
			idx = i
			break
		}
	}
	_ = s.ctrl.SetMarks(marks[(idx+1)%len(marks)])
}
