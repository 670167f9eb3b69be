package islet

import (
	"context"
	"sync"

	"github.com/a-h/templ"
)

// Props is the decoded data-props payload of an island.
type Props map[string]any

// Component is a rich component implementation mountable into an island.
// Render receives the island's props and produces the markup that replaces
// the island's static children.
type Component interface {
	Render(ctx context.Context, props Props) templ.Component
}

// Unmounter is implemented by components that need teardown beyond having
// their markup removed, such as stopping tickers or closing connections.
type Unmounter interface {
	Unmount(host *Element)
}

// Loader resolves a component implementation. Loaders run lazily, at
// hydration time, so expensive setup (code loading, data priming) is paid
// only for islands that actually mount.
type Loader func(ctx context.Context) (Component, error)

// ComponentFunc adapts a render function to the Component interface.
type ComponentFunc func(ctx context.Context, props Props) templ.Component

// Render implements Component.
func (f ComponentFunc) Render(ctx context.Context, props Props) templ.Component {
	return f(ctx, props)
}

// Static returns a Loader that resolves to an already-constructed
// component, for components with no load-time work.
func Static(c Component) Loader {
	return func(context.Context) (Component, error) {
		return c, nil
	}
}

// Registry maps component identifiers to loaders.
//
// The registry is mutable for its whole lifetime: collaborators may
// register components before or after the first scan, and a later
// registration for the same identifier replaces the earlier one. Lookup
// failure is non-fatal per island - the hydrator logs and skips.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register associates a component identifier with a loader.
func (r *Registry) Register(name string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[name] = loader
}

// Lookup returns the loader for an identifier.
func (r *Registry) Lookup(name string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[name]
	return l, ok
}

// Names returns the registered identifiers, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loaders))
	for n := range r.loaders {
		names = append(names, n)
	}
	return names
}
