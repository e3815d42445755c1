package query

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cbseprep/internal/store"
)

// mockEventRepo implements store.EventRepo for recording tests.
type mockEventRepo struct {
	mu        sync.Mutex
	events    []store.QueryEventData
	appendErr error
}

func (m *mockEventRepo) AppendQueryEvent(_ context.Context, data store.QueryEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
	return m.appendErr
}

func (m *mockEventRepo) QueryQueryEvents(_ context.Context, _ store.QueryOpts) ([]store.QueryEventRecord, error) {
	return nil, nil
}

func (m *mockEventRepo) GetQueryEvent(_ context.Context, _ int) (*store.QueryEventRecord, error) {
	return nil, nil
}

func (m *mockEventRepo) UsageBySubject(_ context.Context) ([]store.SubjectUsage, error) {
	return nil, nil
}

// stubAsker returns a fixed response or error.
type stubAsker struct {
	resp  *Response
	err   error
	calls int
}

func (s *stubAsker) Ask(_ context.Context, _ Request) (*Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestRecordingSuccess(t *testing.T) {
	repo := &mockEventRepo{}
	inner := &stubAsker{resp: &Response{Answer: "ok", Sources: []Source{{Text: "a"}, {Text: "b"}}}}
	a := WithRecording(inner, repo, nil)

	resp, err := a.Ask(context.Background(), Request{
		Question: "What is an atom?",
		Subject:  "Science",
		Marks:    2,
		History:  []HistoryEntry{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Answer)

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.Equal(t, "Science", ev.Subject)
	assert.Equal(t, 2, ev.Marks)
	assert.Equal(t, 1, ev.HistoryLen)
	assert.True(t, ev.Success)
	assert.Equal(t, 200, ev.StatusCode)
	assert.Equal(t, 2, ev.SourceCount)
	assert.Empty(t, ev.ErrorMessage)
}

func TestRecordingHTTPFailure(t *testing.T) {
	repo := &mockEventRepo{}
	inner := &stubAsker{err: &HTTPError{StatusCode: 500, Detail: "boom"}}
	a := WithRecording(inner, repo, nil)

	_, err := a.Ask(context.Background(), Request{Question: "Why?", Subject: "English", Marks: 1})
	require.Error(t, err)

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.False(t, ev.Success)
	assert.Equal(t, 500, ev.StatusCode)
	assert.Contains(t, ev.ErrorMessage, "boom")
}

func TestRecordingSkipsInvalidRequests(t *testing.T) {
	repo := &mockEventRepo{}
	inner := &stubAsker{resp: &Response{}}
	a := WithRecording(inner, repo, nil)

	_, err := a.Ask(context.Background(), Request{Question: "   ", Subject: "Science", Marks: 3})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, inner.calls)
	assert.Empty(t, repo.events)
}

func TestRecordingFailureDoesNotFailRequest(t *testing.T) {
	repo := &mockEventRepo{appendErr: errors.New("disk full")}
	inner := &stubAsker{resp: &Response{Answer: "fine"}}
	a := WithRecording(inner, repo, nil)

	resp, err := a.Ask(context.Background(), Request{Question: "Why?", Subject: "Mathematics", Marks: 5})
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Answer)
}
