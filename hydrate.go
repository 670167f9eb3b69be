package islet

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	// IslandSelector matches hydration-candidate elements in
	// server-rendered markup.
	IslandSelector = ".react-island"

	fallbackSelector = ".react-island__fallback"

	attrComponent = "data-component"
	attrProps     = "data-props"
	attrLoading   = "data-loading"

	// LoadingEager is the data-loading value that mounts an island
	// immediately. Any other value (usually absent or "lazy") defers
	// hydration to first viewport intersection.
	LoadingEager = "eager"

	// hydratedClass marks an island as mounted. The marker doubles as
	// the idempotency guard: a marked island is never hydrated again
	// until the marker is cleared by unmounting.
	hydratedClass = "hydrated"
)

// mountedRoot tracks one live component instance bound to a host element.
type mountedRoot struct {
	component Component
	host      *Element
}

// Hydrator discovers islands in server-rendered markup and mounts
// registered components into them.
//
// Mounted instances are tracked in a side table keyed by the host node.
// The table never extends an element's life: entries are removed when a
// subtree is unmounted and pruned whenever a scan finds their host no
// longer attached to the document. Unrelated islands hydrate
// independently - one broken island never blocks its siblings.
type Hydrator struct {
	registry *Registry
	viewport *Viewport

	// Logger records per-island failures. Defaults to a nop logger.
	Logger *zap.Logger

	mu    sync.Mutex
	roots map[*html.Node]*mountedRoot
}

// NewHydrator creates a hydrator and, when bus is non-nil, subscribes it
// to navigation completions: each event unmounts the swapped subtree's
// islands and re-scans it (a nil container re-scans the whole document).
func NewHydrator(registry *Registry, viewport *Viewport, bus *Bus) *Hydrator {
	if viewport == nil {
		viewport = NewViewport()
	}
	h := &Hydrator{
		registry: registry,
		viewport: viewport,
		Logger:   zap.NewNop(),
		roots:    make(map[*html.Node]*mountedRoot),
	}
	if bus != nil {
		bus.Subscribe(h.handleNavigate)
	}
	return h
}

// Viewport returns the visibility observer lazy islands wait on.
func (h *Hydrator) Viewport() *Viewport {
	return h.viewport
}

// handleNavigate reacts to a completed navigation. Unmounting runs before
// the fresh scan so a stale instance is never live at the same time as
// its replacement.
func (h *Hydrator) handleNavigate(ev NavigateEvent) {
	ctx := context.Background()
	scope := ev.Container
	if scope == nil {
		if ev.Document == nil {
			return
		}
		scope = ev.Document.Root()
	}
	h.Unmount(scope)
	h.Scan(ctx, scope)
}

// Scan discovers islands under root and hydrates them according to their
// loading strategy: eager islands mount immediately, lazy islands wait
// for first viewport intersection. Already-hydrated islands are skipped.
func (h *Hydrator) Scan(ctx context.Context, root *Element) {
	h.prune()
	for _, el := range root.QuerySelectorAll(IslandSelector) {
		h.observe(ctx, el)
	}
}

func (h *Hydrator) observe(ctx context.Context, el *Element) {
	if el.HasClass(hydratedClass) {
		return
	}
	if strategy, _ := el.Attr(attrLoading); strategy == LoadingEager {
		h.hydrate(ctx, el)
		return
	}
	h.viewport.Observe(el, func() {
		h.hydrate(context.Background(), el)
		h.viewport.Unobserve(el)
	})
}

// hydrate mounts one island. Every failure here is isolated: logged,
// island left in its pre-hydration visual state, siblings unaffected.
func (h *Hydrator) hydrate(ctx context.Context, el *Element) {
	if el.HasClass(hydratedClass) {
		return
	}

	name, _ := el.Attr(attrComponent)
	if name == "" {
		h.Logger.Warn("island without component identifier")
		return
	}
	log := h.Logger.With(zap.String("component", name))

	props := Props{}
	if raw, ok := el.Attr(attrProps); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &props); err != nil {
			log.Warn("island props invalid", zap.Error(err))
			return
		}
	}

	loader, ok := h.registry.Lookup(name)
	if !ok {
		log.Warn("island skipped", zap.Error(ErrNotRegistered))
		return
	}
	component, err := loader(ctx)
	if err != nil {
		log.Warn("component load failed", zap.Error(err))
		return
	}

	var buf bytes.Buffer
	if err := component.Render(ctx, props).Render(ctx, &buf); err != nil {
		log.Warn("component render failed", zap.Error(err))
		return
	}

	// Replacing the children also drops the static fallback placeholder.
	if err := el.SetHTML(buf.String()); err != nil {
		log.Warn("component markup unparsable", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.roots[el.node] = &mountedRoot{component: component, host: el}
	h.mu.Unlock()
	el.AddClass(hydratedClass)
}

// Unmount detaches every hydrated island within root (root included),
// removing side-table entries and clearing hydration markers. Must run
// before the same subtree is re-scanned, or stale instances would stay
// live alongside fresh ones.
func (h *Hydrator) Unmount(root *Element) {
	islands := root.QuerySelectorAll(IslandSelector + "." + hydratedClass)
	if root.Matches(IslandSelector + "." + hydratedClass) {
		islands = append([]*Element{root}, islands...)
	}
	for _, el := range islands {
		h.unmountIsland(el)
	}
}

func (h *Hydrator) unmountIsland(el *Element) {
	h.viewport.Unobserve(el)

	h.mu.Lock()
	root, ok := h.roots[el.node]
	delete(h.roots, el.node)
	h.mu.Unlock()

	if ok {
		if u, canUnmount := root.component.(Unmounter); canUnmount {
			u.Unmount(el)
		}
		// The mounted markup belongs to the instance; drop it with it.
		if err := el.SetHTML(""); err != nil {
			h.Logger.Warn("island teardown failed", zap.Error(err))
		}
	}
	el.RemoveClass(hydratedClass)
}

// Mounted reports whether a live instance is currently bound to el.
func (h *Hydrator) Mounted(el *Element) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.roots[el.node]
	return ok
}

// prune drops side-table entries whose host has been detached from its
// document, the fallback for environments without weak references. A
// detached host's instance gets its Unmount hook before being dropped.
func (h *Hydrator) prune() {
	h.mu.Lock()
	var stale []*mountedRoot
	for node, root := range h.roots {
		if !root.host.Connected() {
			stale = append(stale, root)
			delete(h.roots, node)
		}
	}
	h.mu.Unlock()

	for _, root := range stale {
		if u, ok := root.component.(Unmounter); ok {
			u.Unmount(root.host)
		}
	}
}
