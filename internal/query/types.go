package query

import "context"

// Asker sends a student's question to the answer backend.
type Asker interface {
	// Ask validates req, performs exactly one request and returns the
	// decoded answer. It never retries.
	Ask(ctx context.Context, req Request) (*Response, error)
}

// Role is the sender of a history entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// HistoryEntry is one prior turn sent as conversational context.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the body of POST /api/v1/query.
type Request struct {
	Question string         `json:"question"`
	Subject  string         `json:"subject"`
	Marks    int            `json:"marks"`
	History  []HistoryEntry `json:"history"`
}

// Source is a citation snippet the backend used to ground an answer.
// The payload is opaque to the client.
type Source struct {
	Text           string  `json:"text"`
	Chapter        string  `json:"chapter"`
	Topic          string  `json:"topic"`
	SourceType     string  `json:"source_type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Response is the decoded body of a successful query. Every field is
// optional on the wire; absent fields decode to their zero value.
type Response struct {
	Answer   string   `json:"answer"`
	Marks    int      `json:"marks"`
	Subject  string   `json:"subject"`
	Chapter  *string  `json:"chapter"`
	Sources  []Source `json:"sources"`
	Keywords []string `json:"keywords"`
}

// ChapterName returns the chapter or "" when the backend sent none.
func (r *Response) ChapterName() string {
	if r == nil || r.Chapter == nil {
		return ""
	}
	return *r.Chapter
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// Readiness is the body of GET /health/ready.
type Readiness struct {
	Ready     bool            `json:"ready"`
	Checks    map[string]bool `json:"checks"`
	Timestamp string          `json:"timestamp"`
}

// SubjectInfo is one entry of GET /api/v1/subjects.
type SubjectInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

// SubjectList is the body of GET /api/v1/subjects.
type SubjectList struct {
	Class    int           `json:"class"`
	Subjects []SubjectInfo `json:"subjects"`
}
