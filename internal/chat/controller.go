package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/syllabus"
)

var (
	// ErrBusy is returned when a question is asked while another is in flight.
	ErrBusy = errors.New("a question is already being answered")

	// ErrNoActiveSession is returned by BeginFollowUp when nothing is open.
	ErrNoActiveSession = errors.New("no active session")
)

// Pending is a request issued by the controller. It remembers where it came
// from so a late answer is never attached to the wrong conversation.
type Pending struct {
	Subject   string
	SessionID string
	Request   query.Request
}

// Result is the outcome of one exchange with the backend.
type Result struct {
	Pending  *Pending
	Response *query.Response
	Err      error
}

// Controller holds the chat state of one screen: the active subject, its
// sessions, the open session and its transcript, the marks selection and
// the in-flight flag. It is not safe for concurrent use; all calls belong on
// the UI event loop.
type Controller struct {
	store  *Store
	logger *zap.Logger

	subject    string
	sessions   []Session
	activeID   string
	transcript []Message
	marks      int
	loading    bool
	errMsg     string
}

// NewController creates a controller showing subject.
func NewController(store *Store, subject string, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:  store,
		logger: logger,
		marks:  syllabus.DefaultMarks,
	}
	c.load(subject)
	return c
}

func (c *Controller) Subject() string       { return c.subject }
func (c *Controller) Sessions() []Session   { return c.sessions }
func (c *Controller) ActiveID() string      { return c.activeID }
func (c *Controller) Transcript() []Message { return c.transcript }
func (c *Controller) Marks() int            { return c.marks }
func (c *Controller) Loading() bool         { return c.loading }

// Err returns the inline error string, or "".
func (c *Controller) Err() string { return c.errMsg }

// ClearError dismisses the inline error.
func (c *Controller) ClearError() { c.errMsg = "" }

// SetMarks changes the marks used for the next question.
func (c *Controller) SetMarks(m int) error {
	if !syllabus.IsMarks(m) {
		return fmt.Errorf("%w (got %d)", query.ErrInvalidMarks, m)
	}
	c.marks = m
	return nil
}

// SwitchSubject makes subject active. The open session and transcript are
// always cleared and the session list is reloaded from storage.
func (c *Controller) SwitchSubject(subject string) error {
	if !syllabus.IsSubject(subject) {
		return fmt.Errorf("%w: %q", query.ErrInvalidSubject, subject)
	}
	c.load(subject)
	return nil
}

func (c *Controller) load(subject string) {
	c.subject = subject
	c.activeID = ""
	c.transcript = nil
	c.errMsg = ""
	c.sessions = c.store.ListSessions(subject)
}

// OpenSession resumes a past session of the active subject.
func (c *Controller) OpenSession(id string) error {
	c.sessions = c.store.ListSessions(c.subject)
	for _, s := range c.sessions {
		if s.ID == id {
			c.activeID = s.ID
			c.transcript = append([]Message(nil), s.Messages...)
			c.errMsg = ""
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// NewChat closes the open session. The next question starts a new one.
func (c *Controller) NewChat() {
	c.activeID = ""
	c.transcript = nil
	c.errMsg = ""
}

// Begin records a question and returns the request to send. A blank
// question returns (nil, nil) and changes nothing. A session is started
// when none is open. The request history is the transcript before the
// question.
func (c *Controller) Begin(question string, marks int) (*Pending, error) {
	return c.begin(question, marks, false)
}

// BeginFollowUp continues the open session. It never starts a session. The
// request history is the whole transcript including the new question.
func (c *Controller) BeginFollowUp(question string, marks int) (*Pending, error) {
	return c.begin(question, marks, true)
}

func (c *Controller) begin(question string, marks int, followUp bool) (*Pending, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, nil
	}
	if c.loading {
		return nil, ErrBusy
	}
	if followUp && c.activeID == "" {
		return nil, ErrNoActiveSession
	}

	req := query.Request{Question: q, Subject: c.subject, Marks: marks}
	if err := query.Validate(req); err != nil {
		c.errMsg = query.UserMessage(err)
		return nil, err
	}

	started := false
	if c.activeID == "" {
		sess, err := c.store.StartSession(c.subject, q)
		if err != nil {
			return nil, c.storageFailed(err)
		}
		c.activeID = sess.ID
		c.transcript = nil
		started = true
	}

	prior := History(c.transcript)
	msg := UserMessage(q, marks)
	if _, err := c.store.AppendMessage(c.subject, c.activeID, msg); err != nil {
		if started {
			c.dropEmptySession()
		}
		return nil, c.storageFailed(err)
	}
	c.transcript = append(c.transcript, msg)
	c.sessions = c.store.ListSessions(c.subject)

	if followUp {
		req.History = History(c.transcript)
	} else {
		req.History = prior
	}

	c.loading = true
	c.errMsg = ""
	return &Pending{Subject: c.subject, SessionID: c.activeID, Request: req}, nil
}

// Complete applies the outcome of p. The loading flag is always cleared. A
// failure becomes the inline error. An answer is stored only when p's
// session is still the open one; otherwise it is dropped. Complete reports
// whether an answer was stored.
func (c *Controller) Complete(p *Pending, resp *query.Response, err error) bool {
	c.loading = false
	if p == nil {
		return false
	}

	if err != nil {
		if p.Subject == c.subject && p.SessionID == c.activeID {
			c.errMsg = query.UserMessage(err)
		}
		return false
	}
	if resp == nil {
		return false
	}

	if p.Subject != c.subject || p.SessionID != c.activeID {
		c.logger.Info("discarding stale answer",
			zap.String("subject", p.Subject),
			zap.String("session", p.SessionID))
		return false
	}

	msg := ModelMessage(resp)
	if _, err := c.store.AppendMessage(p.Subject, p.SessionID, msg); err != nil {
		_ = c.storageFailed(err)
		return false
	}
	c.transcript = append(c.transcript, msg)
	c.sessions = c.store.ListSessions(c.subject)
	return true
}

// Run sends p with asker and applies the result. Complete runs even if the
// asker panics.
func (c *Controller) Run(ctx context.Context, asker query.Asker, p *Pending) error {
	res := Exchange(ctx, asker, p)
	c.Complete(res.Pending, res.Response, res.Err)
	return res.Err
}

// Exchange performs the network part of p. A panic in asker is returned as
// an error. It touches no controller state and may run off the event loop.
func Exchange(ctx context.Context, asker query.Asker, p *Pending) (res Result) {
	res.Pending = p
	defer func() {
		if r := recover(); r != nil {
			res.Response = nil
			res.Err = fmt.Errorf("query panicked: %v", r)
		}
	}()
	res.Response, res.Err = asker.Ask(ctx, p.Request)
	return res
}

// dropEmptySession removes the session begin just created when its first
// message could not be saved. If the removal fails too, the session stays
// active so the next question reuses it.
func (c *Controller) dropEmptySession() {
	if err := c.store.RemoveSession(c.subject, c.activeID); err != nil {
		c.logger.Warn("remove empty session", zap.String("session", c.activeID), zap.Error(err))
		return
	}
	c.activeID = ""
	c.sessions = c.store.ListSessions(c.subject)
}

func (c *Controller) storageFailed(err error) error {
	c.logger.Error("chat storage", zap.String("subject", c.subject), zap.Error(err))
	c.errMsg = "Could not save your conversation. Please try again."
	return err
}
