// Package devserver serves canned answers with the same wire contract as
// the real answer service, so the UI can be exercised without a backend.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abhisek/cbseprep/internal/query"
	"github.com/abhisek/cbseprep/internal/syllabus"
)

// ServiceName is reported by GET /health.
const ServiceName = "cbseprep-devserver"

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

// Options tunes the canned backend.
type Options struct {
	// Latency delays every answer, to make loading states visible.
	Latency time.Duration
	// ClassLevel is reported by GET /api/v1/subjects.
	ClassLevel int
	Logger     *zap.Logger
	Now        func() time.Time
}

type Server struct {
	opts   Options
	router chi.Router
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClassLevel == 0 {
		opts.ClassLevel = 10
	}

	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/subjects", s.handleSubjects)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.opts.Logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, query.HealthStatus{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: s.opts.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, query.Readiness{
		Ready:     true,
		Checks:    map[string]bool{"vector_store": true, "llm": true},
		Timestamp: s.opts.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSubjects(w http.ResponseWriter, _ *http.Request) {
	list := query.SubjectList{Class: s.opts.ClassLevel}
	for _, name := range syllabus.Subjects {
		list.Subjects = append(list.Subjects, query.SubjectInfo{
			ID:       strings.ReplaceAll(strings.ToLower(name), " ", "_"),
			Name:     name,
			Chapters: len(chapters[name]),
		})
	}
	writeJSON(w, http.StatusOK, list)
}

type validationItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON body"})
		return
	}

	if err := query.Validate(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string][]validationItem{
			"detail": {{Loc: []string{"body", fieldOf(err)}, Msg: err.Error(), Type: "value_error"}},
		})
		return
	}

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
	}

	writeJSON(w, http.StatusOK, Answer(req))
}

func fieldOf(err error) string {
	switch {
	case errors.Is(err, query.ErrInvalidSubject):
		return "subject"
	case errors.Is(err, query.ErrInvalidMarks):
		return "marks"
	}
	return "question"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
