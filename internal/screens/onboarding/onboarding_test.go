package onboarding

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cbseprep/internal/kv"
	"github.com/abhisek/cbseprep/internal/profile"
	"github.com/abhisek/cbseprep/internal/screen"
)

func press(s screen.Screen, keys ...tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		s, cmd = s.Update(k)
	}
	return s, cmd
}

func typeText(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return s
}

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	esc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	down  = tea.KeyPressMsg{Code: tea.KeyDown}
	space = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
)

func newController() *profile.Controller {
	c := profile.NewController(kv.NewMemory(), kv.NewMemory(), nil)
	c.SplashDone()
	return c
}

func TestNameRequiredFirst(t *testing.T) {
	s := New(newController(), profile.UserProfile{}, false)

	_, cmd := press(s, enter)
	assert.Nil(t, cmd)
	assert.Equal(t, stepName, s.step)
	assert.Equal(t, profile.ErrNameRequired.Error(), s.errMsg)
	assert.Contains(t, s.View(100, 30), "please enter your name")
}

func TestFullFlow(t *testing.T) {
	pc := newController()
	var sc screen.Screen = New(pc, profile.UserProfile{}, false)
	s := sc.(*OnboardingScreen)

	sc = typeText(sc, "Asha")
	sc, _ = press(sc, enter)
	require.Equal(t, stepClass, s.step)

	// Default class is in the middle of the list; move down once.
	sc, _ = press(sc, down, enter)
	require.Equal(t, stepSubjects, s.step)

	// Finishing with no subject reports the subjects error.
	_, cmd := press(sc, enter)
	assert.Nil(t, cmd)
	assert.Equal(t, profile.ErrSubjectsRequired.Error(), s.errMsg)

	// Check Science and Social Science.
	sc, _ = press(sc, space, down, down, space)
	_, cmd = press(sc, enter)
	require.NotNil(t, cmd)

	done, ok := cmd().(DoneMsg)
	require.True(t, ok)
	assert.Equal(t, "Asha", done.Profile.Name)
	assert.Equal(t, 11, done.Profile.ClassLevel)
	assert.Equal(t, []string{"Science", "Social Science"}, done.Profile.Subjects)

	assert.Equal(t, profile.PhaseMain, pc.Phase())
	assert.Equal(t, "Asha", pc.Profile().Name)
}

func TestEscStepsBack(t *testing.T) {
	var sc screen.Screen = New(newController(), profile.UserProfile{}, false)
	s := sc.(*OnboardingScreen)
	assert.False(t, s.HandlesEsc())

	sc = typeText(sc, "Ravi")
	sc, _ = press(sc, enter)
	require.Equal(t, stepClass, s.step)
	assert.True(t, s.HandlesEsc())

	press(sc, esc)
	assert.Equal(t, stepName, s.step)
	assert.Equal(t, "Ravi", s.name.Value())
}

func TestPrefillWhenEditing(t *testing.T) {
	prefill := profile.UserProfile{Name: "Ravi", ClassLevel: 8, Subjects: []string{"English"}}
	s := New(newController(), prefill, true)

	assert.Equal(t, "Preferences", s.Title())
	assert.Equal(t, "Ravi", s.name.Value())
	assert.Equal(t, "Class 8", s.class.Value())
	assert.Equal(t, []string{"English"}, s.subjects.Checked())

	_, cmd := press(s, enter, enter, enter)
	require.NotNil(t, cmd)
	done := cmd().(DoneMsg)
	assert.Equal(t, prefill, done.Profile)
}

func TestBlankNameCaughtOnLaterStep(t *testing.T) {
	prefill := profile.UserProfile{Name: "Ravi", ClassLevel: 8, Subjects: []string{"English"}}
	var sc screen.Screen = New(newController(), prefill, true)
	s := sc.(*OnboardingScreen)

	s.name.SetValue("   ")
	s.step = stepSubjects

	_, cmd := press(sc, enter)
	assert.Nil(t, cmd)
	assert.Equal(t, stepName, s.step, "focus jumps to the first failing field")
	assert.Equal(t, profile.ErrNameRequired.Error(), s.errMsg)
}
