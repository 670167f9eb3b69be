// A complete round trip through the engine: serve a tiny generated site,
// boot a headless page session on it, navigate through a link click, and
// hydrate the markdown island the destination page carries.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/pthm/islet"
	"github.com/pthm/islet/example/components"
)

const homePage = `<!DOCTYPE html>
<html><head><title>Home</title></head>
<body>
<main>
  <div class="container">
    <div class="content" data-page-title="Home"><p>Welcome.</p></div>
    <a href="/notes/">Notes</a>
  </div>
</main>
</body></html>`

const notesPartial = `<div class="content" data-page-title="Notes">
  <div class="react-island" data-component="markdown" data-loading="eager"
       data-props='{"source": "# Notes\n\nHydrated *from markdown*."}'>
    <div class="react-island__fallback">Loading notes...</div>
  </div>
</div>`

func main() {
	site := map[string]string{
		"/":                      homePage,
		"/html/notes/index.html": notesPartial,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := site[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	ctx := context.Background()
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		log.Fatal(err)
	}

	doc, err := islet.ParseDocument(strings.NewReader(homePage), base)
	if err != nil {
		log.Fatal(err)
	}

	bus := islet.NewBus()
	ctrl := islet.NewController(doc, &islet.Fetcher{}, bus)

	reg := islet.NewRegistry()
	components.Register(reg)
	islet.NewHydrator(reg, islet.NewViewport(), bus)

	anchor := doc.QuerySelector("a")
	if !ctrl.HandleClick(ctx, anchor, islet.ClickOptions{}) {
		log.Fatal("link click was not intercepted")
	}

	fmt.Println("title:   ", doc.Title())
	fmt.Println("location:", doc.URL().Path)
	fmt.Println("history: ", ctrl.History().Len(), "entries")

	island := doc.QuerySelector(islet.IslandSelector)
	markup, err := island.InnerHTML()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("island:")
	fmt.Println(markup)
}
