package islet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/a-h/templ"
)

// trackedComponent records mount/unmount activity for assertions.
type trackedComponent struct {
	mu     sync.Mutex
	events *[]string
	label  string
	mounts int
}

func newTracked(label string, events *[]string) *trackedComponent {
	return &trackedComponent{label: label, events: events}
}

func (c *trackedComponent) Render(ctx context.Context, props Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		c.mu.Lock()
		c.mounts++
		if c.events != nil {
			*c.events = append(*c.events, "mount:"+c.label)
		}
		c.mu.Unlock()
		_, err := fmt.Fprintf(w, `<span class="widget">%s</span>`, c.label)
		return err
	})
}

func (c *trackedComponent) Unmount(host *Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.events != nil {
		*c.events = append(*c.events, "unmount:"+c.label)
	}
}

func (c *trackedComponent) Mounts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounts
}

const islandPage = `<html><head></head><body><main><div class="container">
<div id="eager" class="react-island" data-component="counter" data-loading="eager">
  <div class="react-island__fallback">static counter</div>
</div>
<div id="lazy" class="react-island" data-component="counter" data-props='{"start": 3}'>
  <div class="react-island__fallback">static lazy</div>
</div>
</div></main></body></html>`

func TestEagerIslandHydratesOnScan(t *testing.T) {
	doc := mustParse(t, islandPage, "https://example.com/")
	reg := NewRegistry()
	comp := newTracked("counter", nil)
	reg.Register("counter", Static(comp))
	h := NewHydrator(reg, NewViewport(), nil)

	h.Scan(context.Background(), doc.Root())

	eager := doc.QuerySelector("#eager")
	if !eager.HasClass(hydratedClass) {
		t.Fatal("eager island not hydrated")
	}
	if eager.QuerySelector(fallbackSelector) != nil {
		t.Error("fallback placeholder survived hydration")
	}
	if eager.QuerySelector(".widget") == nil {
		t.Error("component markup not mounted")
	}
	if !h.Mounted(eager) {
		t.Error("side table missing mount")
	}
	if comp.Mounts() != 1 {
		t.Errorf("mounts = %d, want 1", comp.Mounts())
	}
}

func TestLazyIslandWaitsForIntersection(t *testing.T) {
	doc := mustParse(t, islandPage, "https://example.com/")
	reg := NewRegistry()
	comp := newTracked("counter", nil)
	reg.Register("counter", Static(comp))
	vp := NewViewport()
	h := NewHydrator(reg, vp, nil)

	h.Scan(context.Background(), doc.Root())

	lazy := doc.QuerySelector("#lazy")
	if lazy.HasClass(hydratedClass) {
		t.Fatal("lazy island hydrated before intersection")
	}

	vp.Intersect(lazy)
	if !lazy.HasClass(hydratedClass) {
		t.Fatal("lazy island not hydrated on intersection")
	}

	// Repeat intersections must not double-hydrate.
	vp.Intersect(lazy)
	vp.Intersect(lazy)
	if got := comp.Mounts(); got != 2 { // eager + lazy, once each
		t.Errorf("mounts = %d, want 2", got)
	}
}

func TestRescanSkipsHydrated(t *testing.T) {
	doc := mustParse(t, islandPage, "https://example.com/")
	reg := NewRegistry()
	comp := newTracked("counter", nil)
	reg.Register("counter", Static(comp))
	h := NewHydrator(reg, NewViewport(), nil)

	h.Scan(context.Background(), doc.Root())
	h.Scan(context.Background(), doc.Root())

	if got := comp.Mounts(); got != 1 {
		t.Errorf("mounts after rescan = %d, want 1 (idempotency marker)", got)
	}
}

func TestBrokenIslandIsIsolated(t *testing.T) {
	page := `<html><body><main><div class="container">
<div id="bad" class="react-island" data-component="counter" data-loading="eager" data-props='{not json'></div>
<div id="unknown" class="react-island" data-component="mystery" data-loading="eager"></div>
<div id="failing" class="react-island" data-component="broken" data-loading="eager"></div>
<div id="good" class="react-island" data-component="counter" data-loading="eager"></div>
</div></main></body></html>`
	doc := mustParse(t, page, "https://example.com/")

	reg := NewRegistry()
	reg.Register("counter", Static(newTracked("counter", nil)))
	reg.Register("broken", func(context.Context) (Component, error) {
		return nil, errors.New("load exploded")
	})
	h := NewHydrator(reg, NewViewport(), nil)

	h.Scan(context.Background(), doc.Root())

	for _, id := range []string{"#bad", "#unknown", "#failing"} {
		if doc.QuerySelector(id).HasClass(hydratedClass) {
			t.Errorf("%s should not be hydrated", id)
		}
	}
	if !doc.QuerySelector("#good").HasClass(hydratedClass) {
		t.Error("healthy sibling was blocked by broken islands")
	}
}

func TestPropsReachComponent(t *testing.T) {
	page := `<html><body>
<div class="react-island" data-component="greet" data-loading="eager" data-props='{"name": "Ada"}'></div>
</body></html>`
	doc := mustParse(t, page, "https://example.com/")

	reg := NewRegistry()
	reg.Register("greet", Static(ComponentFunc(func(ctx context.Context, props Props) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, "<p>hi %v</p>", props["name"])
			return err
		})
	})))
	h := NewHydrator(reg, NewViewport(), nil)
	h.Scan(context.Background(), doc.Root())

	island := doc.QuerySelector(IslandSelector)
	if got := island.Text(); got != "hi Ada" {
		t.Errorf("island text = %q", got)
	}
}

func TestNavigateEventUnmountsBeforeRescan(t *testing.T) {
	doc := mustParse(t, islandPage, "https://example.com/")
	container := doc.QuerySelector(".container")

	var events []string
	reg := NewRegistry()
	comp := newTracked("counter", &events)
	reg.Register("counter", Static(comp))

	bus := NewBus()
	h := NewHydrator(reg, NewViewport(), bus)

	ev := NavigateEvent{URL: "https://example.com/", Document: doc, Container: container}
	bus.Publish(ev)
	if !doc.QuerySelector("#eager").HasClass(hydratedClass) {
		t.Fatal("first event did not hydrate")
	}

	// Same subtree again: old instances must be detached before any
	// fresh hydration happens.
	bus.Publish(ev)

	want := []string{"mount:counter", "unmount:counter", "mount:counter"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
	eager := doc.QuerySelector("#eager")
	if !eager.HasClass(hydratedClass) {
		t.Error("island not re-hydrated after remount")
	}
	if !h.Mounted(eager) {
		t.Error("remounted island missing from the side table")
	}
}

func TestNilContainerScansDocument(t *testing.T) {
	doc := mustParse(t, islandPage, "https://example.com/")

	reg := NewRegistry()
	reg.Register("counter", Static(newTracked("counter", nil)))
	bus := NewBus()
	NewHydrator(reg, NewViewport(), bus)

	bus.Publish(NavigateEvent{URL: "https://example.com/", Document: doc})

	if !doc.QuerySelector("#eager").HasClass(hydratedClass) {
		t.Error("full-document scan missed the eager island")
	}
}

func TestPruneDropsDetachedRoots(t *testing.T) {
	doc := mustParse(t, islandPage, "https://example.com/")
	container := doc.QuerySelector(".container")

	var events []string
	reg := NewRegistry()
	reg.Register("counter", Static(newTracked("counter", &events)))
	h := NewHydrator(reg, NewViewport(), nil)

	h.Scan(context.Background(), doc.Root())
	eager := doc.QuerySelector("#eager")
	if !h.Mounted(eager) {
		t.Fatal("island not mounted")
	}

	// Swapping the container away detaches the island without an
	// explicit unmount; the next scan prunes the stale entry.
	if err := container.SetHTML("<p>fresh</p>"); err != nil {
		t.Fatalf("SetHTML: %v", err)
	}
	h.Scan(context.Background(), doc.Root())

	if h.Mounted(eager) {
		t.Error("side table kept a detached island alive")
	}
	found := false
	for _, e := range events {
		if e == "unmount:counter" {
			found = true
		}
	}
	if !found {
		t.Error("detached instance missed its unmount hook")
	}
}
