package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Validation errors. They are returned before any network I/O.
var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrQuestionTooLong = fmt.Errorf("question is longer than %d characters", MaxQuestionLength)
	ErrInvalidSubject  = errors.New("unknown subject")
	ErrInvalidMarks    = errors.New("marks must be one of 1, 2, 3 or 5")
	ErrInvalidResponse = errors.New("invalid response from answer service")
)

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("answer service returned HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("answer service returned HTTP %d", e.StatusCode)
}

// NetworkError wraps a transport failure (connection refused, DNS, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("answer service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage converts any Ask error into the single inline string shown
// to the student. It returns "" for ErrEmptyQuestion, which is ignored
// silently.
func UserMessage(err error) string {
	if err == nil || errors.Is(err, ErrEmptyQuestion) {
		return ""
	}

	if errors.Is(err, ErrQuestionTooLong) || errors.Is(err, ErrInvalidSubject) || errors.Is(err, ErrInvalidMarks) {
		msg := err.Error()
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The answer service took too long to respond. Please try again."
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusUnprocessableEntity:
			return "The answer service could not understand the question. Try rephrasing it."
		case httpErr.StatusCode >= 500:
			return fmt.Sprintf("The answer service ran into a problem (HTTP %d). Please try again.", httpErr.StatusCode)
		default:
			return fmt.Sprintf("The answer service rejected the request (HTTP %d).", httpErr.StatusCode)
		}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the answer service. Make sure the backend is running and try again."
	}

	if errors.Is(err, ErrInvalidResponse) {
		return "The answer service sent a response that could not be read."
	}

	return "Something went wrong while getting your answer. Please try again."
}

// parseDetail extracts FastAPI's "detail" field, which is either a string
// or a list of validation errors with a "msg" field.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
