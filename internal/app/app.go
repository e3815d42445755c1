package app

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/profile"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/router"
	"github.com/abhisek/cbseprep/internal/screen"
	"github.com/abhisek/cbseprep/internal/screens/onboarding"
	"github.com/abhisek/cbseprep/internal/screens/splash"
	"github.com/abhisek/cbseprep/internal/screens/study"
	"github.com/abhisek/cbseprep/internal/ui/layout"
	"github.com/abhisek/cbseprep/internal/ui/theme"
)

// DefaultHealthInterval is how often the header polls the backend.
const DefaultHealthInterval = 30 * time.Second

// HealthChecker reports whether the answer service is up.
type HealthChecker interface {
	Health(ctx context.Context) (query.HealthStatus, error)
}

// Deps wires the app to its collaborators.
type Deps struct {
	Profile *profile.Controller
	Chats   *chat.Store
	Asker   query.Asker
	Health  HealthChecker // optional
	Logger  *zap.Logger

	SplashDuration time.Duration
	RequestTimeout time.Duration
	HealthInterval time.Duration
}

type healthMsg struct {
	Backend layout.Backend
}

type healthTickMsg struct{}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps    Deps
	router  *router.Router
	chat    *chat.Controller
	backend layout.Backend
	width   int
	height  int
}

// newAppModel creates the root model on the screen that matches the
// persisted profile.
func newAppModel(deps Deps) AppModel {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.HealthInterval <= 0 {
		deps.HealthInterval = DefaultHealthInterval
	}

	m := AppModel{deps: deps}

	var first screen.Screen
	switch deps.Profile.Phase() {
	case profile.PhaseSplash:
		first = splash.New(deps.SplashDuration)
	case profile.PhaseOnboarding:
		first = onboarding.New(deps.Profile, profile.UserProfile{}, false)
	default:
		first = m.studyScreen()
	}
	m.router = router.New(first)
	return m
}

// studyScreen builds the chat screen for the profile's subjects. The
// current controller, with its open conversation and any request in
// flight, is kept when its subject is still selected.
func (m *AppModel) studyScreen() screen.Screen {
	subjects := m.deps.Profile.Profile().Subjects
	if m.chat == nil || !slices.Contains(subjects, m.chat.Subject()) {
		m.chat = chat.NewController(m.deps.Chats, subjects[0], m.deps.Logger.Named("chat"))
	}
	return study.New(m.chat, m.deps.Chats, m.deps.Asker, subjects, m.deps.RequestTimeout)
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.checkHealth())
}

func (m AppModel) checkHealth() tea.Cmd {
	hc := m.deps.Health
	if hc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		status, err := hc.Health(ctx)
		if err != nil || !status.Healthy() {
			return healthMsg{Backend: layout.BackendDown}
		}
		return healthMsg{Backend: layout.BackendUp}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case healthMsg:
		m.backend = msg.Backend
		return m, tea.Tick(m.deps.HealthInterval, func(time.Time) tea.Msg { return healthTickMsg{} })

	case healthTickMsg:
		return m, m.checkHealth()

	case splash.DoneMsg:
		m.deps.Profile.SplashDone()
		return m, m.router.Reset(onboarding.New(m.deps.Profile, profile.UserProfile{}, false))

	case onboarding.DoneMsg:
		return m, m.router.Reset(m.studyScreen())

	case study.AnswerMsg:
		if _, onTop := m.router.Active().(*study.StudyScreen); !onTop {
			if m.chat != nil {
				m.chat.Complete(msg.Result.Pending, msg.Result.Response, msg.Result.Err)
			}
			return m, nil
		}

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+t":
			t, err := m.deps.Profile.ToggleTheme()
			if err != nil {
				m.deps.Logger.Warn("toggle theme", zap.Error(err))
			}
			theme.Apply(string(t))
			return m, nil
		case "ctrl+p":
			if m.deps.Profile.Phase() != profile.PhaseMain {
				return m, nil
			}
			m.deps.Profile.EditPreferences()
			return m, m.router.Push(onboarding.New(m.deps.Profile, m.deps.Profile.Profile(), true))
		case "esc":
			if h, ok := m.router.Active().(screen.EscHandler); ok && h.HandlesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				m.deps.Profile.CancelEdit()
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) status() layout.Status {
	s := layout.Status{Backend: m.backend}
	if m.deps.Profile.Phase() == profile.PhaseMain || m.deps.Profile.Editing() {
		p := m.deps.Profile.Profile()
		s.User = p.Name
		s.Class = p.ClassLevel
	}
	return s
}

func (m AppModel) footerHints() []layout.KeyHint {
	var hints []layout.KeyHint
	if hp, ok := m.router.Active().(screen.KeyHintProvider); ok {
		hints = append(hints, hp.KeyHints()...)
	} else if m.router.Depth() > 1 {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	if m.deps.Profile.Phase() == profile.PhaseMain {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+P", Description: "Profile"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+T", Description: "Theme"},
		layout.KeyHint{Key: "Ctrl+C", Description: "Quit"},
	)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the whole terminal: header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	if _, isSplash := active.(*splash.SplashScreen); isSplash {
		return m.router.View(m.width, m.height)
	}

	header := layout.RenderHeader(active.Title(), m.status(), m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run applies the saved theme and starts the Bubble Tea program.
func Run(deps Deps) error {
	theme.Apply(string(deps.Profile.Theme()))

	p := tea.NewProgram(newAppModel(deps))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
