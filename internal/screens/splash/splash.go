package splash

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/screen"
	"github.com/abhisek/cbseprep/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond

	// DefaultDuration is how long the splash stays up.
	DefaultDuration = 2500 * time.Millisecond
)

const bookArt = `   ______ ______
 _/      Y      \_
// ~~ ~~ | ~~ ~  \\
// ~ ~ ~~| ~~~ ~~ \\
//________.|.________\\
 ` + "`" + `----------` + "`" + `-'----------'`

// sparkle frames cycle around the book
var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

// DoneMsg is emitted once when the splash has been shown long enough.
type DoneMsg struct{}

// SplashScreen shows the banner for a fixed time, then emits DoneMsg. It
// does not react to keys.
type SplashScreen struct {
	duration  time.Duration
	elapsed   time.Duration
	tickCount int
	done      bool
}

var _ screen.Screen = (*SplashScreen)(nil)

// New creates a SplashScreen that advances after d. A non-positive d uses
// DefaultDuration.
func New(d time.Duration) *SplashScreen {
	if d <= 0 {
		d = DefaultDuration
	}
	return &SplashScreen{duration: d}
}

func (s *SplashScreen) Title() string {
	return ""
}

func (s *SplashScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *SplashScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tickMsg); !ok || s.done {
		return s, nil
	}

	s.elapsed += tickInterval
	s.tickCount++
	if s.elapsed >= s.duration {
		s.done = true
		return s, func() tea.Msg { return DoneMsg{} }
	}
	return s, tick()
}

func (s *SplashScreen) View(width, height int) string {
	bookStyle := lipgloss.NewStyle().Foreground(theme.Secondary)
	rendered := bookStyle.Render(bookArt)

	// Sparkles after the first half second.
	if s.elapsed >= 500*time.Millisecond {
		sparkle := sparkleFrames[s.tickCount%len(sparkleFrames)]
		s1 := lipgloss.NewStyle().Foreground(theme.Accent).Render(sparkle)
		s2 := lipgloss.NewStyle().Foreground(theme.Primary).Render(sparkle)

		lines := strings.Split(rendered, "\n")
		if len(lines) > 1 {
			lines[0] = s1 + "  " + lines[0] + "  " + s2
		}
		if len(lines) > 4 {
			lines[4] = s2 + "  " + lines[4] + "  " + s1
		}
		rendered = strings.Join(lines, "\n")
	}

	tagline := lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("Exam-ready answers from your NCERT books")

	sections := []string{
		rendered,
		"",
		RenderBanner(width),
		"",
		tagline,
	}
	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
