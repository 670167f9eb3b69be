package islet

import "sync"

// HistoryEntry is the state payload recorded for each navigation.
type HistoryEntry struct {
	URL string
}

// History is an explicit session history: a linear stack of entries plus a
// cursor, the headless analog of the browser's history list. The initial
// page load is recorded once at construction so going back always has
// somewhere to land.
//
// Every navigation corresponds to exactly one entry: the controller pushes
// for link clicks and leaves the stack alone when replaying a pop.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
	index   int
}

// NewHistory creates a history seeded with the initial page load.
func NewHistory(initial HistoryEntry) *History {
	return &History{entries: []HistoryEntry{initial}}
}

// Push appends a new entry after the cursor, discarding any forward
// entries, and moves the cursor to it.
func (h *History) Push(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], e)
	h.index = len(h.entries) - 1
}

// Replace overwrites the entry at the cursor.
func (h *History) Replace(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = e
}

// Current returns the entry at the cursor.
func (h *History) Current() HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Back moves the cursor one entry back and returns it. Returns false at
// the start of the session.
func (h *History) Back() (HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return HistoryEntry{}, false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves the cursor one entry forward and returns it. Returns false
// at the end of the session.
func (h *History) Forward() (HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return HistoryEntry{}, false
	}
	h.index++
	return h.entries[h.index], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the history list and the cursor position,
// used for session snapshots.
func (h *History) Entries() ([]HistoryEntry, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out, h.index
}

// restore replaces the history list and cursor from a snapshot.
func (h *History) restore(entries []HistoryEntry, index int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]HistoryEntry(nil), entries...)
	h.index = index
}
