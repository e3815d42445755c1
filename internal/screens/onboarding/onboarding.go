package onboarding

import (
	"errors"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cbseprep/internal/profile"
	"github.com/abhisek/cbseprep/internal/screen"
	"github.com/abhisek/cbseprep/internal/syllabus"
	"github.com/abhisek/cbseprep/internal/ui/components"
	"github.com/abhisek/cbseprep/internal/ui/layout"
	"github.com/abhisek/cbseprep/internal/ui/theme"
)

type step int

const (
	stepName step = iota
	stepClass
	stepSubjects
)

var stepLabels = []string{"Name", "Class", "Subjects"}

// DoneMsg is emitted after the profile was saved.
type DoneMsg struct {
	Profile profile.UserProfile
}

// Completer persists a finished profile.
type Completer interface {
	CompleteOnboarding(p profile.UserProfile) error
}

// OnboardingScreen collects name, class and subjects, one step at a time.
type OnboardingScreen struct {
	completer Completer
	editing   bool

	step     step
	name     components.TextInput
	class    components.Choice
	subjects components.Checklist
	errMsg   string
}

var _ screen.Screen = (*OnboardingScreen)(nil)
var _ screen.KeyHintProvider = (*OnboardingScreen)(nil)
var _ screen.EscHandler = (*OnboardingScreen)(nil)

// New creates the onboarding form. prefill seeds the fields when editing
// preferences; pass the zero value for first-time onboarding.
func New(completer Completer, prefill profile.UserProfile, editing bool) *OnboardingScreen {
	classes := make([]string, len(syllabus.ClassLevels))
	selected := len(classes) / 2
	for i, c := range syllabus.ClassLevels {
		classes[i] = "Class " + strconv.Itoa(c)
		if c == prefill.ClassLevel {
			selected = i
		}
	}

	name := components.NewTextInput("Your name", 40, false)
	name.SetValue(prefill.Name)

	return &OnboardingScreen{
		completer: completer,
		editing:   editing,
		name:      name,
		class:     components.NewChoice(classes, selected),
		subjects:  components.NewChecklist(syllabus.Subjects, prefill.Subjects),
	}
}

func (s *OnboardingScreen) Init() tea.Cmd {
	return s.name.Init()
}

func (s *OnboardingScreen) Title() string {
	if s.editing {
		return "Preferences"
	}
	return "Welcome"
}

// HandlesEsc reports whether Esc steps back inside the form.
func (s *OnboardingScreen) HandlesEsc() bool {
	return s.step > stepName
}

func (s *OnboardingScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Next"}}
	switch s.step {
	case stepClass:
		hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Pick"})
	case stepSubjects:
		hints = []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "Space", Description: "Toggle"},
			{Key: "Enter", Description: "Finish"},
		}
	}
	if s.step > stepName {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	} else if s.editing {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Cancel"})
	}
	return hints
}

// current builds the profile from the form.
func (s *OnboardingScreen) current() profile.UserProfile {
	return profile.UserProfile{
		Name:       s.name.Value(),
		ClassLevel: syllabus.ClassLevels[s.class.Selected],
		Subjects:   s.subjects.Checked(),
	}
}

// stepFor maps a validation error to the step that fixes it.
func stepFor(err error) step {
	switch {
	case errors.Is(err, profile.ErrNameRequired):
		return stepName
	case errors.Is(err, profile.ErrClassRequired):
		return stepClass
	}
	return stepSubjects
}

func (s *OnboardingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if s.step == stepName {
			var cmd tea.Cmd
			s.name, cmd = s.name.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	switch kmsg.String() {
	case "enter":
		return s.advance()
	case "esc":
		if s.step > stepName {
			s.step--
			s.errMsg = ""
		}
		return s, nil
	}

	var cmd tea.Cmd
	switch s.step {
	case stepName:
		s.name, cmd = s.name.Update(msg)
	case stepClass:
		s.class, cmd = s.class.Update(msg)
	case stepSubjects:
		s.subjects, cmd = s.subjects.Update(msg)
	}
	s.errMsg = ""
	return s, cmd
}

// advance validates everything up to the current step. The first failing
// requirement is reported and focused; otherwise the next step opens or the
// profile is submitted.
func (s *OnboardingScreen) advance() (screen.Screen, tea.Cmd) {
	p := s.current()
	err := p.Validate()
	if err != nil && stepFor(err) <= s.step {
		s.step = stepFor(err)
		s.errMsg = err.Error()
		return s, nil
	}

	if s.step < stepSubjects {
		s.step++
		s.errMsg = ""
		return s, nil
	}

	if err := s.completer.CompleteOnboarding(p); err != nil {
		s.step = stepFor(err)
		s.errMsg = err.Error()
		return s, nil
	}
	done := p.Normalize()
	return s, func() tea.Msg { return DoneMsg{Profile: done} }
}

func (s *OnboardingScreen) View(width, height int) string {
	var sections []string

	heading := "Let's set up your study space"
	if s.editing {
		heading = "Update your preferences"
	}
	sections = append(sections,
		theme.Title.Render(heading),
		"",
		components.Steps{Labels: stepLabels, Current: int(s.step)}.View(),
		"",
	)

	switch s.step {
	case stepName:
		sections = append(sections,
			theme.Body.Render("What should we call you?"),
			"",
			s.name.View(),
		)
	case stepClass:
		sections = append(sections,
			theme.Body.Render("Which class are you in?"),
			"",
			strings.TrimRight(s.class.View(), "\n"),
		)
	case stepSubjects:
		sections = append(sections,
			theme.Body.Render("Which subjects are you preparing?"),
			"",
			strings.TrimRight(s.subjects.View(), "\n"),
		)
	}

	if s.errMsg != "" {
		sections = append(sections, "", theme.Bad.Render(s.errMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	card := theme.Card.Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
