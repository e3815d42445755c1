package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/syllabus"
)

// MaxQuestionLength is the longest question the backend accepts.
const MaxQuestionLength = 500

const (
	queryPath    = "/api/v1/query"
	subjectsPath = "/api/v1/subjects"
	healthPath   = "/health"
	readyPath    = "/health/ready"

	healthCacheKey = "health"

	// maxErrorBody caps how much of a failed response is read for details.
	maxErrorBody = 64 << 10
)

// Client talks to the answer backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	health  *cache.Cache
	logger  *zap.Logger
}

var _ Asker = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHealthTTL sets how long a health result is reused.
func WithHealthTTL(d time.Duration) Option {
	return func(c *Client) { c.health = cache.New(d, 2*d) }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		health:  cache.New(30*time.Second, time.Minute),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Validate checks a request against the backend's input constraints.
func Validate(req Request) error {
	q := strings.TrimSpace(req.Question)
	if q == "" {
		return ErrEmptyQuestion
	}
	if utf8.RuneCountInString(q) > MaxQuestionLength {
		return ErrQuestionTooLong
	}
	if !syllabus.IsSubject(req.Subject) {
		return fmt.Errorf("%w: %q", ErrInvalidSubject, req.Subject)
	}
	if !syllabus.IsMarks(req.Marks) {
		return fmt.Errorf("%w (got %d)", ErrInvalidMarks, req.Marks)
	}
	return nil
}

// Ask sends the question to POST /api/v1/query. It makes a single attempt.
func (c *Client) Ask(ctx context.Context, req Request) (*Response, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.History == nil {
		req.History = []HistoryEntry{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp Response
	if err := c.do(ctx, http.MethodPost, queryPath, body, &resp); err != nil {
		c.logger.Warn("query failed",
			zap.String("subject", req.Subject),
			zap.Int("marks", req.Marks),
			zap.Int("history", len(req.History)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("query answered",
		zap.String("subject", req.Subject),
		zap.Int("marks", resp.Marks),
		zap.Int("sources", len(resp.Sources)))
	return &resp, nil
}

// Health reports backend liveness from GET /health. Results, including
// failures, are cached for the configured TTL.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	if v, ok := c.health.Get(healthCacheKey); ok {
		res := v.(healthResult)
		return res.status, res.err
	}

	var status HealthStatus
	err := c.do(ctx, http.MethodGet, healthPath, nil, &status)
	c.health.SetDefault(healthCacheKey, healthResult{status: status, err: err})
	return status, err
}

// Ready reports backend readiness from GET /health/ready. It is never cached.
func (c *Client) Ready(ctx context.Context) (Readiness, error) {
	var r Readiness
	err := c.do(ctx, http.MethodGet, readyPath, nil, &r)
	return r, err
}

// Subjects lists the subjects the backend serves.
func (c *Client) Subjects(ctx context.Context) (*SubjectList, error) {
	var list SubjectList
	if err := c.do(ctx, http.MethodGet, subjectsPath, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

type healthResult struct {
	status HealthStatus
	err    error
}

// do performs one request and decodes a JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &NetworkError{Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return &HTTPError{StatusCode: httpResp.StatusCode, Detail: parseDetail(raw)}
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
