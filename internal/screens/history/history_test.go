package history

import (
	"reflect"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cbseprep/internal/chat"
	"github.com/abhisek/cbseprep/internal/kv"
	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/router"
)

func seed(t *testing.T) (*chat.Store, []chat.Session) {
	t.Helper()
	store := chat.NewStore(kv.NewMemory())
	for _, q := range []string{"What is osmosis?", "Define respiration"} {
		sess, err := store.StartSession("Science", q)
		require.NoError(t, err)
		_, err = store.AppendMessage("Science", sess.ID, chat.UserMessage(q, 3))
		require.NoError(t, err)
		_, err = store.AppendMessage("Science", sess.ID, chat.Message{
			Role:    query.RoleModel,
			Content: "**Osmosis** moves water across a membrane.",
			Chapter: "Cell",
		})
		require.NoError(t, err)
	}
	return store, store.ListSessions("Science")
}

func load(s *HistoryScreen) {
	s.Update(s.Init()())
}

func TestListsMostRecentFirst(t *testing.T) {
	store, sessions := seed(t)
	s := New(store, "Science")
	assert.Contains(t, s.View(100, 30), "Loading")

	load(s)
	require.Len(t, s.sessions, 2)
	assert.Equal(t, sessions[0].ID, s.sessions[0].ID)
	assert.Equal(t, "Define respiration", s.sessions[0].Title)

	view := s.View(100, 30)
	assert.Contains(t, view, "Define respiration")
	assert.Contains(t, view, "What is osmosis?")
	assert.Equal(t, "Science History", s.Title())
}

func TestEmptySubject(t *testing.T) {
	store, _ := seed(t)
	s := New(store, "English")
	load(s)
	assert.Contains(t, s.View(100, 30), "No English conversations yet")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestEnterPopsThenOpens(t *testing.T) {
	store, sessions := seed(t)
	s := New(store, "Science")
	load(s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)

	seq := reflect.ValueOf(cmd())
	require.Equal(t, reflect.Slice, seq.Kind())
	require.Equal(t, 2, seq.Len())

	first := seq.Index(0).Interface().(tea.Cmd)()
	second := seq.Index(1).Interface().(tea.Cmd)()
	assert.IsType(t, router.PopScreenMsg{}, first)
	assert.Equal(t, OpenMsg{Subject: "Science", SessionID: sessions[1].ID}, second)
}

func TestPreviewToggle(t *testing.T) {
	store, _ := seed(t)
	s := New(store, "Science")
	load(s)

	assert.NotContains(t, s.View(100, 30), "Chapter: Cell")
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	view := s.View(100, 30)
	assert.Contains(t, view, "Chapter: Cell")
	assert.Contains(t, view, "Osmosis moves water")
	assert.NotContains(t, view, "**")
}

func TestNavigationBounds(t *testing.T) {
	store, _ := seed(t)
	s := New(store, "Science")
	load(s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, s.selected)
	for i := 0; i < 5; i++ {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	assert.Equal(t, 1, s.selected)
}
