package islet

import (
	"context"
	"net/http"
	"testing"
)

func TestTestSiteServesAndRecords(t *testing.T) {
	site := NewTestSite()
	defer site.Close()
	site.Add("/a/", "page a")
	site.Fail("/b/", http.StatusInternalServerError)

	f := &Fetcher{}
	body, err := f.FetchDocument(context.Background(), site.URL("/a/"))
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if body != "page a" {
		t.Errorf("body = %q", body)
	}

	if _, err := f.FetchDocument(context.Background(), site.URL("/b/")); err == nil {
		t.Error("expected failure for failing path")
	}
	if _, err := f.FetchDocument(context.Background(), site.URL("/missing/")); err == nil {
		t.Error("expected failure for unknown path")
	}

	reqs := site.Requests()
	if len(reqs) != 3 || reqs[0] != "/a/" || reqs[1] != "/b/" || reqs[2] != "/missing/" {
		t.Errorf("requests = %v", reqs)
	}
}

func TestOpenTestPage(t *testing.T) {
	site := NewTestSite()
	defer site.Close()
	site.Add("/", homePage)

	page, err := OpenTestPage(context.Background(), site, "/")
	if err != nil {
		t.Fatalf("OpenTestPage: %v", err)
	}
	if page.Doc.Title() != "Home" {
		t.Errorf("title = %q", page.Doc.Title())
	}
	if page.Controller.History().Len() != 1 {
		t.Errorf("history = %d entries, want the initial load", page.Controller.History().Len())
	}
}
