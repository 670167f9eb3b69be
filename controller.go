package islet

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	landmarkSelector  = "main"
	containerSelector = ".container"
	loadingClass      = "loading"
)

// NavigationState is the controller's single-flight guard. Only the
// controller mutates it; a trigger that finds it loading is dropped.
type NavigationState struct {
	mu      sync.Mutex
	loading bool
}

func (s *NavigationState) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

func (s *NavigationState) end() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Loading reports whether a navigation is in flight.
func (s *NavigationState) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ClickOptions carries the browser modifiers of a click. Any modifier, or
// a non-primary button, declines interception so native behavior (new
// tab, window, context menu) is preserved.
type ClickOptions struct {
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool

	// Button is the mouse button, 0 for primary.
	Button int
}

func (o ClickOptions) modified() bool {
	return o.Ctrl || o.Meta || o.Shift || o.Alt || o.Button != 0
}

// Controller drives partial-page navigation for one Document.
//
// It owns the session's navigation state and history; multiple controllers
// over separate documents coexist without shared globals. Within one
// navigation the steps run strictly in order: fetch, swap, meta sync,
// reinit, history update, completion event, scroll reset.
type Controller struct {
	doc     *Document
	fetcher *Fetcher
	history *History
	bus     *Bus
	state   NavigationState

	// Runtime is the optional declarative-UI runtime re-run over swapped
	// markup. Nil skips binding re-initialization.
	Runtime BindingRuntime

	// Clipboard backs the copy-code affordance. Nil makes copies fail
	// soft (the button shows its failure feedback).
	Clipboard Clipboard

	// Logger records recovered failures. Defaults to a nop logger.
	Logger *zap.Logger

	scroll int

	// after schedules deferred work (copy-button feedback reverts).
	// Swapped out in tests for synchronous firing.
	after func(time.Duration, func())
}

// NewController creates a controller for the document. The initial page
// load is recorded in the session history so the first Back lands on it.
func NewController(doc *Document, fetcher *Fetcher, bus *Bus) *Controller {
	if fetcher == nil {
		fetcher = &Fetcher{}
	}
	if bus == nil {
		bus = NewBus()
	}
	return &Controller{
		doc:     doc,
		fetcher: fetcher,
		history: NewHistory(HistoryEntry{URL: doc.URL().String()}),
		bus:     bus,
		Logger:  zap.NewNop(),
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// Document returns the document the controller drives.
func (c *Controller) Document() *Document {
	return c.doc
}

// History returns the session history.
func (c *Controller) History() *History {
	return c.history
}

// Bus returns the event bus navigation completions are published on.
func (c *Controller) Bus() *Bus {
	return c.bus
}

// Loading reports whether a navigation is in flight.
func (c *Controller) Loading() bool {
	return c.state.Loading()
}

// Scroll returns the viewport scroll offset. Navigation resets it to 0.
func (c *Controller) Scroll() int {
	return c.scroll
}

// SetScroll records the viewport scroll offset.
func (c *Controller) SetScroll(y int) {
	c.scroll = y
}

// HandleClick processes a click on an anchor and reports whether it was
// intercepted. Modifier clicks and anchors the classifier rejects are
// declined, leaving native behavior to the embedder.
func (c *Controller) HandleClick(ctx context.Context, a *Element, opts ClickOptions) bool {
	if opts.modified() {
		return false
	}
	if !Interceptable(a, c.doc.URL()) {
		return false
	}
	href, _ := a.Attr("href")
	dest, err := c.doc.URL().Parse(href)
	if err != nil {
		return false
	}
	if err := c.navigate(ctx, dest, true); err != nil {
		c.Logger.Warn("navigation failed", zap.String("url", dest.String()), zap.Error(err))
	}
	return true
}

// Navigate performs a programmatic navigation to rawurl, resolving it
// against the current location, and pushes a history entry on success.
func (c *Controller) Navigate(ctx context.Context, rawurl string) error {
	dest, err := c.doc.URL().Parse(rawurl)
	if err != nil {
		return err
	}
	return c.navigate(ctx, dest, true)
}

// Back moves one history entry back and replays it, like a browser
// popstate. Reports whether there was an entry to return to.
func (c *Controller) Back(ctx context.Context) bool {
	entry, ok := c.history.Back()
	if !ok {
		return false
	}
	c.handlePop(ctx, entry)
	return true
}

// Forward moves one history entry forward and replays it.
func (c *Controller) Forward(ctx context.Context) bool {
	entry, ok := c.history.Forward()
	if !ok {
		return false
	}
	c.handlePop(ctx, entry)
	return true
}

// handlePop replays a history entry. The entry is already current, so no
// new history entry is pushed.
func (c *Controller) handlePop(ctx context.Context, entry HistoryEntry) {
	dest, err := c.doc.URL().Parse(entry.URL)
	if err != nil {
		c.Logger.Warn("history entry unparsable", zap.String("url", entry.URL), zap.Error(err))
		return
	}
	if err := c.navigate(ctx, dest, false); err != nil {
		c.Logger.Warn("history replay failed", zap.String("url", entry.URL), zap.Error(err))
	}
}

// navigate runs one partial navigation. push controls the history entry:
// pushed for link clicks and programmatic navigations, not for history
// replays. Any fetch or structural failure degrades to a full-document
// load of the destination.
func (c *Controller) navigate(ctx context.Context, dest *url.URL, push bool) error {
	if !c.state.begin() {
		// Single-flight: concurrent triggers are dropped, not queued.
		return nil
	}
	defer c.state.end()

	landmark := c.doc.QuerySelector(landmarkSelector)
	if landmark == nil {
		c.Logger.Warn("main landmark missing, falling back", zap.String("url", dest.String()))
		return c.loadDocument(ctx, dest, push)
	}
	landmark.AddClass(loadingClass)
	defer landmark.RemoveClass(loadingClass)

	body, err := c.fetcher.FetchPartial(ctx, dest)
	if err != nil {
		c.Logger.Warn("partial fetch failed, falling back",
			zap.String("url", dest.String()), zap.Error(err))
		return c.loadDocument(ctx, dest, push)
	}

	container := landmark.QuerySelector(containerSelector)
	if container == nil {
		c.Logger.Warn("content container missing, falling back", zap.String("url", dest.String()))
		return c.loadDocument(ctx, dest, push)
	}

	if err := container.SetHTML(body); err != nil {
		c.Logger.Warn("fragment unparsable, falling back",
			zap.String("url", dest.String()), zap.Error(err))
		return c.loadDocument(ctx, dest, push)
	}

	syncPageMeta(c.doc, container)
	c.reinitialize(ctx, container)

	if push {
		c.history.Push(HistoryEntry{URL: dest.String()})
	}
	c.doc.SetURL(dest)

	c.bus.Publish(NavigateEvent{
		URL:       dest.String(),
		Document:  c.doc,
		Container: container,
	})
	c.scroll = 0
	return nil
}

// loadDocument is the graceful-degradation path: the headless analog of
// assigning window.location. The full destination page is fetched and
// installed as the new document. A nil-container event is published so
// consumers rescan from scratch, as they would after a real reload.
func (c *Controller) loadDocument(ctx context.Context, dest *url.URL, push bool) error {
	body, err := c.fetcher.FetchDocument(ctx, dest)
	if err != nil {
		return err
	}
	fresh, err := ParseDocument(strings.NewReader(body), dest)
	if err != nil {
		return err
	}
	c.doc.adopt(fresh)

	if push {
		c.history.Push(HistoryEntry{URL: dest.String()})
	}

	c.bus.Publish(NavigateEvent{
		URL:      dest.String(),
		Document: c.doc,
	})
	c.scroll = 0
	return nil
}
