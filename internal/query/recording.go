package query

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/store"
)

// RecordingAsker is a decorator that records every query attempt as an event.
type RecordingAsker struct {
	inner     Asker
	eventRepo store.EventRepo
	logger    *zap.Logger
}

// WithRecording wraps an Asker with event recording. Validation failures are
// not recorded because no request was sent.
func WithRecording(a Asker, repo store.EventRepo, logger *zap.Logger) Asker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingAsker{inner: a, eventRepo: repo, logger: logger}
}

func (r *RecordingAsker) Ask(ctx context.Context, req Request) (*Response, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := r.inner.Ask(ctx, req)

	data := store.QueryEventData{
		Subject:    req.Subject,
		Marks:      req.Marks,
		HistoryLen: len(req.History),
		Question:   req.Question,
		LatencyMs:  time.Since(start).Milliseconds(),
		Success:    err == nil,
	}
	if resp != nil {
		data.StatusCode = 200
		data.SourceCount = len(resp.Sources)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			data.StatusCode = httpErr.StatusCode
		}
	}

	// Record the event but don't fail the request if recording fails.
	// The caller's context may already be cancelled, so use a fresh one.
	if logErr := r.eventRepo.AppendQueryEvent(context.WithoutCancel(ctx), data); logErr != nil {
		r.logger.Warn("failed to record query event", zap.Error(logErr))
	}

	return resp, err
}
