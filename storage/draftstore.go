package storage

import (
	"sync"
	"time"

	"placemail/compose"
)

type draftEntry struct {
	draft    *compose.Draft
	lastUsed time.Time
}

// DraftStore keeps one compose draft per console session, in memory for the
// session's lifetime. Drafts untouched for longer than ttl are dropped by a
// background sweep; the next access starts a fresh empty draft.
type DraftStore struct {
	mu      sync.Mutex
	entries map[string]*draftEntry
	ttl     time.Duration
}

// NewDraftStore creates a draft store and starts its cleanup loop.
func NewDraftStore(ttl time.Duration) *DraftStore {
	store := &DraftStore{
		entries: make(map[string]*draftEntry),
		ttl:     ttl,
	}
	go store.cleanupLoop()
	return store
}

// Update runs fn against the session's draft under the store lock, creating
// an empty draft on first access. Serializing mutations here means two
// overlapping requests from the same session cannot interleave field writes.
func (s *DraftStore) Update(sessionID string, fn func(*compose.Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		entry = &draftEntry{draft: compose.NewDraft()}
		s.entries[sessionID] = entry
	}
	entry.lastUsed = time.Now()
	return fn(entry.draft)
}

// Get returns a copy-safe reference to the session's draft, creating one if
// needed. Callers that mutate must use Update instead.
func (s *DraftStore) Get(sessionID string) *compose.Draft {
	var draft *compose.Draft
	_ = s.Update(sessionID, func(d *compose.Draft) error {
		draft = d
		return nil
	})
	return draft
}

// Drop discards the session's draft entirely.
func (s *DraftStore) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
}

// Size returns the number of live drafts.
func (s *DraftStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *DraftStore) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, entry := range s.entries {
			if now.Sub(entry.lastUsed) > s.ttl {
				delete(s.entries, id)
			}
		}
		s.mu.Unlock()
	}
}
