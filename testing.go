package islet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// TestSite serves an in-memory static site over HTTP for page-session
// tests. Pages and their partials are plain path -> body entries; paths
// can also be forced to fail with a fixed status.
//
//	site := islet.NewTestSite()
//	defer site.Close()
//	site.Add("/about/", aboutPage)
//	site.Add("/html/about/index.html", aboutPartial)
type TestSite struct {
	srv *httptest.Server

	mu       sync.Mutex
	pages    map[string]string
	failures map[string]int
	requests []string
}

// NewTestSite starts an empty test site.
func NewTestSite() *TestSite {
	s := &TestSite{
		pages:    make(map[string]string),
		failures: make(map[string]int),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *TestSite) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	status, failing := s.failures[r.URL.Path]
	body, ok := s.pages[r.URL.Path]
	s.mu.Unlock()

	if failing {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

// Add serves body at path.
func (s *TestSite) Add(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = body
}

// Fail makes path answer with the given status.
func (s *TestSite) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Requests returns the request paths seen so far, in order.
func (s *TestSite) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// URL resolves a path against the site's origin.
func (s *TestSite) URL(path string) *url.URL {
	u, err := url.Parse(s.srv.URL + path)
	if err != nil {
		panic("islet: bad test site path: " + path)
	}
	return u
}

// Close shuts the site down.
func (s *TestSite) Close() {
	s.srv.Close()
}

// TestPage bundles a parsed page with the session machinery wired around
// it, ready for navigation and hydration assertions.
type TestPage struct {
	Doc        *Document
	Controller *Controller
	Bus        *Bus
}

// OpenTestPage fetches path from the site and boots a session on it, the
// way a browser load bootstraps the runtime.
func OpenTestPage(ctx context.Context, site *TestSite, path string) (*TestPage, error) {
	dest := site.URL(path)
	fetcher := &Fetcher{}
	body, err := fetcher.FetchDocument(ctx, dest)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(strings.NewReader(body), dest)
	if err != nil {
		return nil, err
	}
	bus := NewBus()
	return &TestPage{
		Doc:        doc,
		Controller: NewController(doc, fetcher, bus),
		Bus:        bus,
	}, nil
}
