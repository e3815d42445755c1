package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cbseprep/internal/kv"
	"github.com/abhisek/cbseprep/internal/query"
)

// recordingAsker captures requests and replies with a canned answer.
type recordingAsker struct {
	requests []query.Request
	resp     *query.Response
	err      error
	panicMsg string
}

func (a *recordingAsker) Ask(_ context.Context, req query.Request) (*query.Response, error) {
	a.requests = append(a.requests, req)
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	return a.resp, a.err
}

func answer(text string) *query.Response {
	chapter := "Life Processes"
	return &query.Response{
		Answer:   text,
		Marks:    3,
		Subject:  "Science",
		Chapter:  &chapter,
		Sources:  []query.Source{{Text: "Plants prepare food", Chapter: chapter, Topic: "Nutrition", SourceType: "ncert_textbook", RelevanceScore: 0.82}},
		Keywords: []string{"Photosynthesis"},
	}
}

func newTestController(t *testing.T, subject string) (*Controller, *Store) {
	t.Helper()
	store := NewStore(kv.NewMemory())
	return NewController(store, subject, nil), store
}

func TestPhotosynthesisScenario(t *testing.T) {
	c, store := newTestController(t, "Science")
	asker := &recordingAsker{resp: answer("**Photosynthesis** is how plants make food.")}

	p, err := c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, c.Loading())

	sessions := store.ListSessions("Science")
	require.Len(t, sessions, 1)
	assert.Equal(t, "What is photosynthesis?", sessions[0].Title)
	require.Len(t, sessions[0].Messages, 1)
	assert.Equal(t, query.RoleUser, sessions[0].Messages[0].Role)

	assert.Equal(t, "Science", p.Request.Subject)
	assert.Equal(t, 3, p.Request.Marks)
	assert.Empty(t, p.Request.History)

	require.NoError(t, c.Run(context.Background(), asker, p))
	assert.False(t, c.Loading())
	assert.Empty(t, c.Err())

	sess, err := store.GetSession("Science", p.SessionID)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, query.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, query.RoleModel, sess.Messages[1].Role)
	assert.Equal(t, "Life Processes", sess.Messages[1].Chapter)
	assert.Equal(t, []string{"Photosynthesis"}, sess.Messages[1].Keywords)
	require.Len(t, sess.Messages[1].Sources, 1)
	assert.Equal(t, "Nutrition", sess.Messages[1].Sources[0].Topic)

	assert.Len(t, c.Transcript(), 2)
	assert.Equal(t, sess.ID, c.ActiveID())
}

func TestBlankQuestionIgnored(t *testing.T) {
	c, store := newTestController(t, "Science")

	p, err := c.Begin("   \n", 3)
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, c.Loading())
	assert.Empty(t, c.Err())
	assert.Empty(t, store.ListSessions("Science"))
}

func TestInvalidMarksRejectedBeforeSession(t *testing.T) {
	c, store := newTestController(t, "Science")

	_, err := c.Begin("Why is the sky blue?", 4)
	assert.ErrorIs(t, err, query.ErrInvalidMarks)
	assert.NotEmpty(t, c.Err())
	assert.Empty(t, store.ListSessions("Science"))
}

func TestBeginWhileLoading(t *testing.T) {
	c, _ := newTestController(t, "Science")

	_, err := c.Begin("first", 3)
	require.NoError(t, err)
	_, err = c.Begin("second", 3)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestSecondQuestionContinuesSession(t *testing.T) {
	c, store := newTestController(t, "Mathematics")
	asker := &recordingAsker{resp: answer("A prime has two factors.")}

	p1, err := c.Begin("What is a prime?", 2)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), asker, p1))

	p2, err := c.Begin("Is 1 prime?", 1)
	require.NoError(t, err)
	assert.Equal(t, p1.SessionID, p2.SessionID)
	assert.Equal(t, []query.HistoryEntry{
		{Role: query.RoleUser, Content: "What is a prime?"},
		{Role: query.RoleModel, Content: "A prime has two factors."},
	}, p2.Request.History)

	assert.Len(t, store.ListSessions("Mathematics"), 1)
}

func TestFollowUpHistory(t *testing.T) {
	c, _ := newTestController(t, "Science")
	asker := &recordingAsker{resp: answer("Chlorophyll absorbs light.")}

	p, err := c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), asker, p))

	p, err = c.Begin("Where does it happen?", 3)
	require.NoError(t, err)
	c.Complete(p, nil, &query.HTTPError{StatusCode: 500})

	// Transcript now holds 3 entries: user, model, user.
	require.Len(t, c.Transcript(), 3)
	before := History(c.Transcript())

	fu, err := c.BeginFollowUp("Explain the role of chlorophyll", 5)
	require.NoError(t, err)
	require.Len(t, fu.Request.History, 4)
	assert.Equal(t, before, fu.Request.History[:3])
	assert.Equal(t, query.HistoryEntry{Role: query.RoleUser, Content: "Explain the role of chlorophyll"}, fu.Request.History[3])
	assert.Equal(t, "Explain the role of chlorophyll", fu.Request.Question)
	assert.Equal(t, 5, fu.Request.Marks)
}

func TestFollowUpNeverStartsSession(t *testing.T) {
	c, store := newTestController(t, "English")

	p, err := c.BeginFollowUp("Tell me more", 3)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Nil(t, p)
	assert.Empty(t, store.ListSessions("English"))
}

func TestSwitchSubjectClears(t *testing.T) {
	c, store := newTestController(t, "Science")
	asker := &recordingAsker{resp: answer("ok")}

	p, err := c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), asker, p))
	require.NotEmpty(t, c.Transcript())

	require.NoError(t, c.SwitchSubject("Mathematics"))
	assert.Equal(t, "Mathematics", c.Subject())
	assert.Empty(t, c.ActiveID())
	assert.Empty(t, c.Transcript())
	assert.Empty(t, c.Sessions())

	// Science history is untouched.
	assert.Len(t, store.ListSessions("Science"), 1)

	require.NoError(t, c.SwitchSubject("Science"))
	assert.Len(t, c.Sessions(), 1)
	assert.Empty(t, c.ActiveID(), "switching back does not reopen a session")

	assert.ErrorIs(t, c.SwitchSubject("Hindi"), query.ErrInvalidSubject)
}

func TestStaleAnswerDiscardedAfterSubjectSwitch(t *testing.T) {
	c, store := newTestController(t, "Science")

	p, err := c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)

	require.NoError(t, c.SwitchSubject("Mathematics"))

	applied := c.Complete(p, answer("late"), nil)
	assert.False(t, applied)
	assert.False(t, c.Loading())
	assert.Empty(t, c.Transcript())

	sess, err := store.GetSession("Science", p.SessionID)
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 1, "late answer must not be stored anywhere")
	assert.Empty(t, store.ListSessions("Mathematics"))
}

func TestStaleAnswerDiscardedAfterNewChat(t *testing.T) {
	c, store := newTestController(t, "Science")

	p, err := c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)
	c.NewChat()

	assert.False(t, c.Complete(p, answer("late"), nil))
	assert.Empty(t, c.Transcript())

	sess, err := store.GetSession("Science", p.SessionID)
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 1)
}

func TestCompleteFailure(t *testing.T) {
	c, store := newTestController(t, "Science")
	asker := &recordingAsker{err: &query.NetworkError{Err: errors.New("connection refused")}}

	p, err := c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)

	err = c.Run(context.Background(), asker, p)
	require.Error(t, err)
	assert.False(t, c.Loading())
	assert.Contains(t, c.Err(), "Could not reach")

	sess, err := store.GetSession("Science", p.SessionID)
	require.NoError(t, err)
	assert.Len(t, sess.Messages, 1, "the question stays; no answer is added")

	c.ClearError()
	assert.Empty(t, c.Err())
}

func TestRunRecoversFromPanic(t *testing.T) {
	c, _ := newTestController(t, "Science")
	asker := &recordingAsker{panicMsg: "boom"}

	p, err := c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)

	err = c.Run(context.Background(), asker, p)
	assert.ErrorContains(t, err, "panicked")
	assert.False(t, c.Loading())
	assert.NotEmpty(t, c.Err())
}

func TestOpenSession(t *testing.T) {
	c, _ := newTestController(t, "Science")
	asker := &recordingAsker{resp: answer("ok")}

	p, err := c.Begin("first question", 3)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), asker, p))
	first := p.SessionID

	c.NewChat()
	p, err = c.Begin("second question", 3)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background(), asker, p))
	assert.NotEqual(t, first, p.SessionID)

	require.NoError(t, c.OpenSession(first))
	assert.Equal(t, first, c.ActiveID())
	require.Len(t, c.Transcript(), 2)
	assert.Equal(t, "first question", c.Transcript()[0].Content)

	assert.ErrorIs(t, c.OpenSession("missing"), ErrSessionNotFound)
}

func TestSetMarks(t *testing.T) {
	c, _ := newTestController(t, "Science")
	assert.Equal(t, 3, c.Marks())

	require.NoError(t, c.SetMarks(5))
	assert.Equal(t, 5, c.Marks())
	assert.ErrorIs(t, c.SetMarks(4), query.ErrInvalidMarks)
	assert.Equal(t, 5, c.Marks())
}

// flakyKV fails the Set calls whose 1-based number is in failOn.
type flakyKV struct {
	*kv.Memory
	sets   int
	failOn map[int]bool
}

func (f *flakyKV) Set(key, value string) error {
	f.sets++
	if f.failOn[f.sets] {
		return errors.New("disk full")
	}
	return f.Memory.Set(key, value)
}

func TestFirstMessageSaveFailureLeavesNoSession(t *testing.T) {
	// Set #1 creates the session, #2 appends the question.
	store := NewStore(&flakyKV{Memory: kv.NewMemory(), failOn: map[int]bool{2: true}})
	c := NewController(store, "Science", nil)

	p, err := c.Begin("What is photosynthesis?", 3)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.False(t, c.Loading())
	assert.NotEmpty(t, c.Err())
	assert.Empty(t, c.ActiveID())
	assert.Empty(t, store.ListSessions("Science"))
	assert.Empty(t, c.Sessions())

	p, err = c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)
	require.NotNil(t, p)
	sessions := store.ListSessions("Science")
	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Messages, 1)
}

func TestFirstMessageSaveFailureKeepsSessionWhenCleanupFails(t *testing.T) {
	store := NewStore(&flakyKV{Memory: kv.NewMemory(), failOn: map[int]bool{2: true, 3: true}})
	c := NewController(store, "Science", nil)

	_, err := c.Begin("What is photosynthesis?", 3)
	require.Error(t, err)
	active := c.ActiveID()
	require.NotEmpty(t, active)

	_, err = c.Begin("What is photosynthesis?", 3)
	require.NoError(t, err)
	sessions := store.ListSessions("Science")
	require.Len(t, sessions, 1)
	assert.Equal(t, active, sessions[0].ID, "retry reuses the session")
	assert.Len(t, sessions[0].Messages, 1)
}
