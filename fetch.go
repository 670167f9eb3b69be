package islet

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultPartialRoot is where the site generator writes partial
	// fragments, mirroring the generator's partial_dir default.
	DefaultPartialRoot = "/html"

	indexDocument = "index.html"
	pageExtension = ".html"
)

// Fetcher retrieves page content over HTTP. The zero value is usable: it
// fetches with http.DefaultClient and derives partial URLs under
// DefaultPartialRoot.
//
// There is deliberately no cache - every navigation re-fetches, matching
// the site's always-fresh partial contract.
type Fetcher struct {
	// Client used for requests. Nil means http.DefaultClient.
	Client *http.Client

	// Root is the partial-content root path. Empty means
	// DefaultPartialRoot.
	Root string
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) root() string {
	if f.Root != "" {
		return f.Root
	}
	return DefaultPartialRoot
}

// PartialURL derives the partial-content URL for a destination page.
//
// A path already under the partial root is used as-is. A trailing-slash
// path resolves to the index document of that directory, a path already
// ending in the page extension is kept, and any other path is treated as
// a directory with an index document appended:
//
//	/            -> /html/index.html
//	/a/b         -> /html/a/b/index.html
//	/a/b.html    -> /html/a/b.html
//	/html/a.html -> /html/a.html (unchanged)
func (f *Fetcher) PartialURL(dest *url.URL) *url.URL {
	root := f.root()
	partial := *dest
	p := dest.Path
	if p == "" {
		p = "/"
	}
	if p == root || strings.HasPrefix(p, root+"/") {
		partial.Path = p
		return &partial
	}
	switch {
	case strings.HasSuffix(p, "/"):
		partial.Path = root + p + indexDocument
	case strings.HasSuffix(p, pageExtension):
		partial.Path = root + p
	default:
		partial.Path = root + p + "/" + indexDocument
	}
	return &partial
}

// FetchPartial retrieves the partial fragment for a destination page and
// returns its body. A non-success status yields a *FetchError.
func (f *Fetcher) FetchPartial(ctx context.Context, dest *url.URL) (string, error) {
	return f.get(ctx, f.PartialURL(dest))
}

// FetchDocument retrieves a full page document, used for fallback
// full-document loads.
func (f *Fetcher) FetchDocument(ctx context.Context, dest *url.URL) (string, error) {
	return f.get(ctx, dest)
}

func (f *Fetcher) get(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{Status: resp.StatusCode, URL: u.String()}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
