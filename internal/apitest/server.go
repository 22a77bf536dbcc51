// Package apitest provides an in-process fake of the SAPPHIRE API gateway
// for tests. It serves both services, stores posted records per dataset and
// can be scripted to fail upcoming requests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Prefixes of the services behind the gateway.
var services = []string{"preprocessing", "postprocessing"}

// Request is a request as seen by the fake server.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a fake API gateway backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	failures map[string][]failure
	stored   map[string][]json.RawMessage
	health   map[string]string
	ready    map[string]string
	token    string
	pageCap  int
}

type failure struct {
	status     int
	retryAfter string
}

// New starts a fake server. Close it when done.
func New() *Server {
	s := &Server{
		failures: make(map[string][]failure),
		stored:   make(map[string][]json.RawMessage),
		health:   make(map[string]string),
		ready:    make(map[string]string),
	}
	for _, svc := range services {
		s.health[svc] = "healthy"
		s.ready[svc] = "ready"
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordRequest)
	r.Use(s.scriptedFailures)
	r.Use(s.requireToken)

	for _, svc := range services {
		svc := svc
		r.Route("/api/"+svc, func(r chi.Router) {
			r.Get("/health", s.handleHealth(svc, s.health))
			r.Get("/health/ready", s.handleHealth(svc, s.ready))
			r.Get("/{dataset}/", s.handleList)
			r.Post("/{dataset}/", s.handleCreate)
		})
	}

	s.Server = httptest.NewServer(r)
	return s
}

// RequireToken makes every request without "Bearer token" fail with 401.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// FailNext makes the next len(statuses) requests to method+path answer
// with the given statuses, in order.
func (s *Server) FailNext(method, path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	for _, st := range statuses {
		s.failures[key] = append(s.failures[key], failure{status: st})
	}
}

// RateLimitNext answers the next request to method+path with 429 and the
// given Retry-After value.
func (s *Server) RateLimitNext(method, path, retryAfter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: http.StatusTooManyRequests, retryAfter: retryAfter})
}

// SetHealth sets the status reported by a service's health endpoint.
func (s *Server) SetHealth(service, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health[service] = status
}

// SetReady sets the status reported by a service's readiness endpoint.
func (s *Server) SetReady(service, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready[service] = status
}

// CapPage limits every list response to n rows whatever limit is asked.
func (s *Server) CapPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCap = n
}

// Seed stores rows under path as if they had been posted.
func (s *Server) Seed(path string, rows ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.stored[path] = append(s.stored[path], json.RawMessage(row))
	}
}

// Stored returns the records stored under path.
func (s *Server) Stored(path string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.stored[path]...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit method+path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) scriptedFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		if f.retryAfter != "" {
			w.Header().Set("Retry-After", f.retryAfter)
		}
		writeJSON(w, f.status, map[string]string{"detail": http.StatusText(f.status)})
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(svc string, statuses map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := statuses[svc]
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"status": status, "service": svc})
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	code := q.Get("code")

	s.mu.Lock()
	rows := append([]json.RawMessage(nil), s.stored[r.URL.Path]...)
	if s.pageCap > 0 && limit > s.pageCap {
		limit = s.pageCap
	}
	s.mu.Unlock()

	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		if code != "" {
			if rowCode(row) != code {
				continue
			}
		}
		out = append(out, row)
	}
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	var rows []json.RawMessage
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	switch {
	case json.Unmarshal(body, &envelope) == nil && envelope.Data != nil:
		rows = envelope.Data
	case json.Unmarshal(body, &rows) == nil:
	default:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "expected a list of records"})
		return
	}

	s.mu.Lock()
	s.stored[r.URL.Path] = append(s.stored[r.URL.Path], rows...)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"dataset": chi.URLParam(r, "dataset"),
		"count":   len(rows),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// rowCode returns the code field of row whether it was posted as a string
// or a number.
func rowCode(row json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return ""
	}
	return strings.Trim(string(fields["code"]), `"`)
}
