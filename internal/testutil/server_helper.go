package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest captures one request the fake alert service received.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// APIServer is a scriptable fake of the alert service backend. Tests
// register handlers per method+path and inspect the requests the client
// actually sent, including the Authorization header.
type APIServer struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewAPIServer starts a fake alert service. It is shut down automatically
// when the test ends. Unscripted routes answer 404 with a JSON error body,
// like the real server.
func NewAPIServer(t *testing.T) *APIServer {
	t.Helper()

	s := &APIServer{
		t:        t,
		handlers: make(map[string]http.HandlerFunc),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.dispatch))
	t.Cleanup(s.server.Close)

	return s
}

// URL returns the base URL of the fake service.
func (s *APIServer) URL() string {
	return s.server.URL
}

// Handle registers a handler for an exact method and path.
func (s *APIServer) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method+" "+path] = h
}

// RespondJSON scripts a fixed JSON response for an exact method and path.
func (s *APIServer) RespondJSON(method, path string, status int, body any) {
	s.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			if err := json.NewEncoder(w).Encode(body); err != nil {
				s.t.Errorf("Failed to encode response for %s %s: %v", method, path, err)
			}
		}
	})
}

// RespondError scripts a JSON error body, the failure shape the real
// server uses.
func (s *APIServer) RespondError(method, path string, status int, message string) {
	s.RespondJSON(method, path, status, map[string]string{"error": message})
}

// Requests returns a copy of every recorded request, in arrival order.
func (s *APIServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns how many requests hit an exact method and path.
func (s *APIServer) RequestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			count++
		}
	}
	return count
}

func (s *APIServer) dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.t.Errorf("Failed to read request body: %v", err)
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
		Body:          body,
	})
	handler := s.handlers[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if handler == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":"not found"}`)
		return
	}
	handler(w, r)
}

// DecodeJSONBody unmarshals a recorded request body into v.
func DecodeJSONBody(t *testing.T, r RecordedRequest, v any) {
	t.Helper()

	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("Failed to parse request body: %v\nBody: %s", err, r.Body)
	}
}
