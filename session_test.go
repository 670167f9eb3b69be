package islet

import (
	"context"
	"strings"
	"testing"

	"github.com/pthm/islet/lib/encoding"
)

func TestSessionSaveRestore(t *testing.T) {
	site, page := newTestSession(t)
	ctx := context.Background()
	codec := encoding.NewCodec([]byte("session-test-key"))

	if err := page.Controller.Navigate(ctx, "/about/"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	page.Controller.SetScroll(77)

	blob, err := page.Controller.SaveSession(codec)
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	// A fresh session, as after an engine restart.
	fresh, err := OpenTestPage(ctx, site, "/")
	if err != nil {
		t.Fatalf("OpenTestPage: %v", err)
	}

	var events []NavigateEvent
	fresh.Bus.Subscribe(func(ev NavigateEvent) { events = append(events, ev) })

	if err := fresh.Controller.RestoreSession(ctx, codec, blob); err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}

	if got := fresh.Doc.URL().Path; got != "/about/" {
		t.Errorf("restored location = %q, want /about/", got)
	}
	if got := fresh.Controller.Scroll(); got != 77 {
		t.Errorf("restored scroll = %d, want 77", got)
	}
	if got := fresh.Controller.History().Len(); got != 2 {
		t.Errorf("restored history length = %d, want 2", got)
	}
	if len(events) != 1 || events[0].Container != nil {
		t.Errorf("expected one nil-container event after restore, got %+v", events)
	}

	// Restored history is navigable.
	if !fresh.Controller.Back(ctx) {
		t.Error("Back failed on restored history")
	}
}

func TestRestoreRejectsTamperedBlob(t *testing.T) {
	_, page := newTestSession(t)
	codec := encoding.NewCodec([]byte("session-test-key"))

	blob, err := page.Controller.SaveSession(codec)
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	tampered := strings.Replace(blob, blob[:2], "zz", 1)

	err = page.Controller.RestoreSession(context.Background(), codec, tampered)
	if err == nil {
		t.Fatal("tampered snapshot accepted")
	}
}

func TestRestoreRejectsBadIndex(t *testing.T) {
	_, page := newTestSession(t)

	err := page.Controller.RestoreSnapshot(context.Background(), Snapshot{
		URL:     "https://example.com/",
		Entries: []HistoryEntry{{URL: "/"}},
		Index:   3,
	})
	if err == nil {
		t.Fatal("out-of-range snapshot index accepted")
	}
}
