package islet

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pthm/islet/lib/encoding"
)

// Snapshot captures a session's navigable state: where the page is, the
// full history list, and the scroll position.
type Snapshot struct {
	URL     string         `msgpack:"url"`
	Entries []HistoryEntry `msgpack:"entries"`
	Index   int            `msgpack:"index"`
	Scroll  int            `msgpack:"scroll"`
}

// Snapshot captures the controller's current session state.
func (c *Controller) Snapshot() Snapshot {
	entries, index := c.history.Entries()
	return Snapshot{
		URL:     c.doc.URL().String(),
		Entries: entries,
		Index:   index,
		Scroll:  c.scroll,
	}
}

// SaveSession serializes the session to a signed blob an embedder can
// persist across engine restarts.
func (c *Controller) SaveSession(codec *encoding.Codec) (string, error) {
	return codec.Encode(c.Snapshot())
}

// RestoreSession verifies a saved blob and restores the session from it:
// history and scroll are reinstalled, and the snapshot's page is loaded
// as a full document (publishing a nil-container event so consumers
// rescan, as after any full load).
func (c *Controller) RestoreSession(ctx context.Context, codec *encoding.Codec, blob string) error {
	var snap Snapshot
	if err := codec.Decode(blob, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return c.RestoreSnapshot(ctx, snap)
}

// RestoreSnapshot restores a session from an already-decoded snapshot.
func (c *Controller) RestoreSnapshot(ctx context.Context, snap Snapshot) error {
	if len(snap.Entries) == 0 || snap.Index < 0 || snap.Index >= len(snap.Entries) {
		return ErrInvalidSnapshot
	}
	dest, err := url.Parse(snap.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	body, err := c.fetcher.FetchDocument(ctx, dest)
	if err != nil {
		return err
	}
	fresh, err := ParseDocument(strings.NewReader(body), dest)
	if err != nil {
		return err
	}
	c.doc.adopt(fresh)

	c.history.restore(snap.Entries, snap.Index)
	c.scroll = snap.Scroll

	c.bus.Publish(NavigateEvent{URL: snap.URL, Document: c.doc})
	return nil
}
