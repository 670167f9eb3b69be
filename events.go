package islet

import "sync"

// NavigateEvent is published on the Bus after every successful navigation.
// It is the only link between the navigation controller and the hydration
// manager, keeping the two decoupled but strongly contracted.
type NavigateEvent struct {
	// URL is the destination that was navigated to.
	URL string

	// Document is the page the navigation happened in.
	Document *Document

	// Container is the element whose markup was swapped. Nil means the
	// whole document changed (full-document load) and consumers should
	// scan the document instead.
	Container *Element
}

type subscriber struct {
	id int
	fn func(NavigateEvent)
}

// Bus is a typed publish/subscribe channel for navigation events.
// Publishing is synchronous: subscribers run in subscription order on the
// publisher's goroutine, which is what gives hydration its
// ordered-after-reinit guarantee.
type Bus struct {
	mu   sync.Mutex
	subs []subscriber
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for future events and returns a cancel function.
func (b *Bus) Subscribe(fn func(NavigateEvent)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to every subscriber, in subscription order.
func (b *Bus) Publish(ev NavigateEvent) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
