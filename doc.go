// Package islet is a headless page-session engine for statically generated
// sites that ship partial-page navigation and island hydration.
//
// A site built this way serves fully rendered pages, plus a reduced
// "partial" representation of each page under a fixed root (/html by
// default). The in-browser runtime intercepts link clicks, fetches the
// partial, splices it into the content container, and re-hydrates the
// interactive islands embedded in the new markup. islet implements the
// same runtime over an explicit document model, so Go programs - site
// integration tests, prerenderers, smoke checkers - can drive a page
// session without a browser.
//
// # Core Types
//
// Document wraps a parsed HTML tree together with its location. Controller
// owns one Document and drives navigation against it:
//
//	doc, _ := islet.ParseDocument(body, pageURL)
//	bus := islet.NewBus()
//	ctrl := islet.NewController(doc, &islet.Fetcher{}, bus)
//
//	handled := ctrl.HandleClick(ctx, anchor, islet.ClickOptions{})
//
// Navigation is single-flight: a trigger that arrives while another
// navigation is in flight is dropped, not queued. On a fetch failure the
// controller falls back to a full-document load of the destination, so a
// session is never left stuck on a broken partial.
//
// # Islands
//
// An island is a server-rendered placeholder that becomes interactive only
// after hydration:
//
//	<div class="react-island" data-component="chart"
//	     data-props='{"points": 12}' data-loading="eager">
//	  <div class="react-island__fallback">Loading chart...</div>
//	</div>
//
// The Hydrator discovers islands, resolves their component from a Registry
// of asynchronous loaders, and mounts the rendered output into the
// element. Lazy islands (the default) wait for viewport intersection;
// data-loading="eager" mounts immediately. One broken island never blocks
// its siblings.
//
//	reg := islet.NewRegistry()
//	reg.Register("chart", loadChart)
//	hy := islet.NewHydrator(reg, islet.NewViewport(), bus)
//	hy.Scan(ctx, doc.Root())
//
// # Event Contract
//
// The controller and hydrator are coupled only through the Bus. After every
// successful swap the controller publishes a NavigateEvent carrying the
// swapped container; the hydrator unmounts the islands the container held
// and re-scans it. A nil container means "scan the whole document" and is
// what full-document loads publish.
//
// # Sessions
//
// A session (history, current URL, scroll position) can be captured as a
// signed snapshot and restored later, letting an embedder persist browsing
// state across engine restarts. See Controller.SaveSession.
package islet
