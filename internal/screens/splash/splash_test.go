package splash

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cbseprep/internal/screen"
)

func sendTicks(s *SplashScreen, n int) (screen.Screen, tea.Cmd) {
	var sc screen.Screen = s
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		sc, cmd = sc.Update(tickMsg(time.Now()))
	}
	return sc, cmd
}

func TestAutoAdvanceAfterDuration(t *testing.T) {
	s := New(time.Second)

	_, cmd := sendTicks(s, 9)
	if cmd == nil {
		t.Fatal("expected another tick before the duration elapses")
	}
	if s.done {
		t.Fatal("splash finished too early")
	}

	_, cmd = sendTicks(s, 1)
	if cmd == nil {
		t.Fatal("expected DoneMsg command at the duration")
	}
	if _, ok := cmd().(DoneMsg); !ok {
		t.Fatalf("expected DoneMsg, got %T", cmd())
	}
}

func TestDoneEmittedOnce(t *testing.T) {
	s := New(200 * time.Millisecond)
	sendTicks(s, 2)

	_, cmd := sendTicks(s, 5)
	if cmd != nil {
		t.Error("no commands expected after DoneMsg")
	}
}

func TestKeypressDoesNotAdvance(t *testing.T) {
	s := New(time.Second)
	sendTicks(s, 3)

	_, cmd := s.Update(tea.KeyPressMsg{Code: ' '})
	if cmd != nil {
		t.Error("keypress should not produce a command")
	}
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter should not produce a command")
	}
	if s.done {
		t.Error("keypress must not finish the splash")
	}
}

func TestDefaultDuration(t *testing.T) {
	if New(0).duration != DefaultDuration {
		t.Errorf("expected default duration %v", DefaultDuration)
	}
}

func TestInitStartsTicking(t *testing.T) {
	if New(time.Second).Init() == nil {
		t.Error("expected Init to schedule a tick")
	}
}

func TestViewShowsTagline(t *testing.T) {
	s := New(time.Second)
	view := s.View(100, 30)
	if !strings.Contains(view, "NCERT") {
		t.Error("expected tagline in view")
	}

	sendTicks(s, 6)
	if !strings.Contains(s.View(100, 30), "★") && !strings.Contains(s.View(100, 30), "✦") {
		t.Error("expected sparkles after half a second")
	}
}

func TestTitleEmpty(t *testing.T) {
	if New(time.Second).Title() != "" {
		t.Error("expected empty title")
	}
}
