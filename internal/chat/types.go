package chat

import (
	"math"

	"github.com/abhisek/cbseprep/internal/query"
)

// Message is one turn of a conversation. Messages are never edited once
// created.
type Message struct {
	Role     query.Role  `json:"role"`
	Content  string      `json:"content"`
	Marks    int         `json:"marks,omitempty"`
	Chapter  string      `json:"chapter,omitempty"`
	Sources  []SourceRef `json:"sources,omitempty"`
	Keywords []string    `json:"keywords,omitempty"`
}

// SourceRef is a citation the backend returned with an answer. It is kept
// as received.
type SourceRef struct {
	Text           string  `json:"text"`
	Chapter        string  `json:"chapter"`
	Topic          string  `json:"topic"`
	SourceType     string  `json:"source_type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Label names the citation as "chapter · topic", falling back to the
// source type when both are empty.
func (s SourceRef) Label() string {
	label := s.Chapter
	if s.Topic != "" {
		if label != "" {
			label += " · "
		}
		label += s.Topic
	}
	if label == "" {
		label = s.SourceType
	}
	return label
}

// Percent is the relevance score as a whole percentage.
func (s SourceRef) Percent() int {
	return int(math.Round(s.RelevanceScore * 100))
}

// Session is one conversation thread within a subject.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp int64     `json:"timestamp"` // unix ms of last activity
	Messages  []Message `json:"messages"`
}

// UserMessage builds the student's side of a turn.
func UserMessage(question string, marks int) Message {
	return Message{Role: query.RoleUser, Content: question, Marks: marks}
}

// ModelMessage builds the answer side of a turn from a backend response.
func ModelMessage(resp *query.Response) Message {
	m := Message{
		Role:     query.RoleModel,
		Content:  resp.Answer,
		Marks:    resp.Marks,
		Chapter:  resp.ChapterName(),
		Keywords: resp.Keywords,
	}
	for _, s := range resp.Sources {
		m.Sources = append(m.Sources, SourceRef(s))
	}
	return m
}

// History converts messages into request history, preserving order.
func History(msgs []Message) []query.HistoryEntry {
	h := make([]query.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		h = append(h, query.HistoryEntry{Role: m.Role, Content: m.Content})
	}
	return h
}
