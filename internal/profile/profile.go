// Package profile owns the student's onboarding profile, the theme choice
// and the splash → onboarding → main phase machine.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/cbseprep/internal/syllabus"
	"github.com/abhisek/cbseprep/internal/validate"
)

// Durable storage keys.
const (
	KeyTheme     = "theme"
	KeyOnboarded = "onboarded"
	KeyName      = "userName"
	KeyClass     = "userClass"
	KeySubjects  = "userSubjects"
)

// KeySplashShown lives in the session-scoped store.
const KeySplashShown = "splashShown"

// Onboarding errors, reported one at a time in this order.
var (
	ErrNameRequired     = errors.New("please enter your name")
	ErrClassRequired    = errors.New("please pick your class")
	ErrSubjectsRequired = errors.New("please pick at least one subject")
)

// UserProfile is what onboarding collects.
type UserProfile struct {
	Name       string
	ClassLevel int
	Subjects   []string
}

// Validate checks the profile in strict order: name, class, subjects. Only
// the first failure is returned.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !syllabus.IsClassLevel(p.ClassLevel) {
		return ErrClassRequired
	}
	if len(syllabus.SortSubjects(p.Subjects)) == 0 {
		return ErrSubjectsRequired
	}
	return nil
}

// Normalize trims the name and puts subjects in canonical order, dropping
// unknown ones.
func (p UserProfile) Normalize() UserProfile {
	return UserProfile{
		Name:       strings.TrimSpace(p.Name),
		ClassLevel: p.ClassLevel,
		Subjects:   syllabus.SortSubjects(p.Subjects),
	}
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeDark
)

// ParseTheme returns the theme named s.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Phase is the top-level screen state.
type Phase int

const (
	PhaseSplash Phase = iota
	PhaseOnboarding
	PhaseMain
)

func (p Phase) String() string {
	switch p {
	case PhaseSplash:
		return "splash"
	case PhaseOnboarding:
		return "onboarding"
	case PhaseMain:
		return "main"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

var subjectsSchema = validate.Schema{
	Name:       "user-subjects",
	Definition: subjectsSchemaDefinition(),
}

func subjectsSchemaDefinition() string {
	enum, _ := json.Marshal(syllabus.Subjects)
	return fmt.Sprintf(`{
		"type": "array",
		"minItems": 1,
		"uniqueItems": true,
		"items": {"enum": %s}
	}`, enum)
}
