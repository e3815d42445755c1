package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/kv"
	"github.com/abhisek/cbseprep/internal/validate"
)

// KeyPrefix prefixes the storage key of every subject's session list.
const KeyPrefix = "chat_sessions_"

// TitleLength is the number of characters of the first question kept as
// a session title.
const TitleLength = 40

// ErrSessionNotFound is returned when a session id is not in the subject's list.
var ErrSessionNotFound = errors.New("session not found")

var sessionListSchema = validate.Schema{
	Name: "chat-sessions",
	Definition: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "title", "timestamp", "messages"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"title": {"type": "string"},
				"timestamp": {"type": "integer"},
				"messages": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["role", "content"],
						"properties": {
							"role": {"enum": ["user", "model"]},
							"content": {"type": "string"},
							"marks": {"type": "integer"},
							"chapter": {"type": "string"},
							"sources": {"type": "array", "items": {"type": "object"}},
							"keywords": {"type": "array", "items": {"type": "string"}}
						}
					}
				}
			}
		}
	}`,
}

// Key returns the storage key holding subject's sessions.
func Key(subject string) string {
	return KeyPrefix + subject
}

// Title derives a session title from the first question.
func Title(firstMessage string) string {
	if utf8.RuneCountInString(firstMessage) <= TitleLength {
		return firstMessage
	}
	return string([]rune(firstMessage)[:TitleLength]) + "..."
}

// Store keeps each subject's sessions in a kv.Store, one key per subject,
// most recently active first. Every mutation is written through
// immediately.
type Store struct {
	kv     kv.Store
	now    func() time.Time
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store backed by kv.
func NewStore(kv kv.Store, opts ...StoreOption) *Store {
	s := &Store{kv: kv, now: time.Now, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListSessions returns subject's sessions, most recently active first.
// Missing, unreadable or malformed data yields an empty list.
func (s *Store) ListSessions(subject string) []Session {
	raw, ok, err := s.kv.Get(Key(subject))
	if err != nil {
		s.logger.Warn("read sessions", zap.String("subject", subject), zap.Error(err))
		return []Session{}
	}
	if !ok || raw == "" {
		return []Session{}
	}

	if err := validate.JSON(sessionListSchema, []byte(raw)); err != nil {
		s.logger.Warn("discarding malformed sessions", zap.String("subject", subject), zap.Error(err))
		return []Session{}
	}

	var sessions []Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		s.logger.Warn("discarding malformed sessions", zap.String("subject", subject), zap.Error(err))
		return []Session{}
	}
	if sessions == nil {
		return []Session{}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp > sessions[j].Timestamp
	})
	return sessions
}

// GetSession returns one session by id.
func (s *Store) GetSession(subject, id string) (Session, error) {
	for _, sess := range s.ListSessions(subject) {
		if sess.ID == id {
			return sess, nil
		}
	}
	return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// StartSession creates an empty session titled after firstMessage and puts
// it at the front of subject's list.
func (s *Store) StartSession(subject, firstMessage string) (Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Session{}, fmt.Errorf("new session id: %w", err)
	}

	sessions := s.ListSessions(subject)
	sess := Session{
		ID:        id.String(),
		Title:     Title(firstMessage),
		Timestamp: s.stamp(sessions),
		Messages:  []Message{},
	}

	sessions = append([]Session{sess}, sessions...)
	if err := s.save(subject, sessions); err != nil {
		return Session{}, err
	}

	s.logger.Debug("session started", zap.String("subject", subject), zap.String("id", sess.ID))
	return sess, nil
}

// AppendMessage adds msg to the session, bumps its timestamp and moves it
// to the front of the list.
func (s *Store) AppendMessage(subject, sessionID string, msg Message) (Session, error) {
	sessions := s.ListSessions(subject)

	idx := -1
	for i := range sessions {
		if sessions[i].ID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	sess := sessions[idx]
	sess.Messages = append(sess.Messages, msg)
	sess.Timestamp = s.stamp(sessions)

	reordered := make([]Session, 0, len(sessions))
	reordered = append(reordered, sess)
	reordered = append(reordered, sessions[:idx]...)
	reordered = append(reordered, sessions[idx+1:]...)

	if err := s.save(subject, reordered); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// RemoveSession deletes a session from subject's list. Removing an unknown
// id is not an error.
func (s *Store) RemoveSession(subject, id string) error {
	sessions := s.ListSessions(subject)
	kept := sessions[:0]
	for _, sess := range sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	if len(kept) == len(sessions) {
		return nil
	}
	return s.save(subject, kept)
}

// stamp returns the current time in unix ms, forced past the newest
// existing timestamp so the list order stays strict.
func (s *Store) stamp(sessions []Session) int64 {
	ts := s.now().UnixMilli()
	if len(sessions) > 0 && ts <= sessions[0].Timestamp {
		ts = sessions[0].Timestamp + 1
	}
	return ts
}

func (s *Store) save(subject string, sessions []Session) error {
	for i := range sessions {
		if sessions[i].Messages == nil {
			sessions[i].Messages = []Message{}
		}
	}
	raw, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := s.kv.Set(Key(subject), string(raw)); err != nil {
		return fmt.Errorf("save sessions for %s: %w", subject, err)
	}
	return nil
}
