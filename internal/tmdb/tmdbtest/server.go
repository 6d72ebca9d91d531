// Package tmdbtest provides an in-process fake of the movie API for tests.
package tmdbtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Request is a request observed by the fake.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type reply struct {
	status int
	body   string
}

// Server answers registered routes with canned JSON and records every request.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]reply
	requests []Request
}

// NewServer starts a fake closed automatically at the end of the test.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]reply)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to tmdb.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + "/3/"
}

// Handle registers the reply for method and path (relative to BaseURL).
func (s *Server) Handle(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" /3/"+strings.TrimPrefix(path, "/")] = reply{status: status, body: body}
}

// Requests returns the requests seen so far, oldest first.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Paths returns the request paths seen so far, relative to BaseURL.
func (s *Server) Paths() []string {
	var out []string
	for _, r := range s.Requests() {
		out = append(out, strings.TrimPrefix(r.Path, "/3/"))
	}
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	rep, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"status_code":34,"status_message":"The resource you requested could not be found."}`)
		return
	}
	w.WriteHeader(rep.status)
	io.WriteString(w, rep.body)
}
