package islet

import (
	"sync"

	"golang.org/x/net/html"
)

// Viewport is the explicit stand-in for the browser's intersection
// observer. The hydrator registers interest in lazy islands; the embedder
// reports visibility by calling Intersect when an element scrolls into
// view (a prerenderer might simply Intersect everything).
type Viewport struct {
	mu      sync.Mutex
	watches map[*html.Node]func()
}

// NewViewport creates an empty viewport observer.
func NewViewport() *Viewport {
	return &Viewport{watches: make(map[*html.Node]func())}
}

// Observe registers a callback fired when the element intersects the
// viewport. Observing an element again replaces its callback.
func (v *Viewport) Observe(el *Element, fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.watches[el.node] = fn
}

// Unobserve drops the callback for the element.
func (v *Viewport) Unobserve(el *Element) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.watches, el.node)
}

// Observing reports whether the element is currently watched.
func (v *Viewport) Observing(el *Element) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.watches[el.node]
	return ok
}

// Intersect reports that the element is visible, firing its callback.
// The callback stays registered until Unobserve; repeat intersections
// re-fire it, and it is the consumer's idempotency marker that keeps
// repeated visibility from double-hydrating.
func (v *Viewport) Intersect(el *Element) {
	v.mu.Lock()
	fn := v.watches[el.node]
	v.mu.Unlock()

	if fn != nil {
		fn()
	}
}
