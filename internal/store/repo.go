package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Subject string    // exact subject match ("" = all)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// QueryEventData captures a single request to the answer backend.
type QueryEventData struct {
	Subject      string
	Marks        int
	HistoryLen   int
	Question     string
	LatencyMs    int64
	Success      bool
	StatusCode   int
	SourceCount  int
	ErrorMessage string
}

// QueryEventRecord is a stored QueryEventData with its identity.
type QueryEventRecord struct {
	ID        int
	Timestamp time.Time
	QueryEventData
}

// SubjectUsage aggregates query events for one subject.
type SubjectUsage struct {
	Subject      string
	Calls        int
	Failures     int
	AvgLatencyMs int64
}

// EventRepo provides append and read access to query events.
type EventRepo interface {
	// AppendQueryEvent records a backend query attempt.
	AppendQueryEvent(ctx context.Context, data QueryEventData) error

	// QueryQueryEvents returns events newest first.
	QueryQueryEvents(ctx context.Context, opts QueryOpts) ([]QueryEventRecord, error)

	// GetQueryEvent returns a single event by ID, or nil if not found.
	GetQueryEvent(ctx context.Context, id int) (*QueryEventRecord, error)

	// UsageBySubject aggregates call counts and latency per subject.
	UsageBySubject(ctx context.Context) ([]SubjectUsage, error)
}
