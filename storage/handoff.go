package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CompanyHandoff carries the student selection a company screen hands to the
// compose view: "email these registered students about this company".
type CompanyHandoff struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	StudentIDs  []int  `json:"student_ids"`
	EventTitle  string `json:"event_title,omitempty"`
}

type handoffEntry struct {
	handoff   CompanyHandoff
	createdAt time.Time
}

// HandoffStore holds company-to-compose handoffs for single consumption: a
// handoff is deleted the moment the compose view takes it, so a page reload
// does not re-seed the draft.
type HandoffStore struct {
	mu      sync.Mutex
	entries map[string]*handoffEntry
	ttl     time.Duration
}

// NewHandoffStore creates a handoff store; entries unclaimed after ttl are
// swept.
func NewHandoffStore(ttl time.Duration) *HandoffStore {
	store := &HandoffStore{
		entries: make(map[string]*handoffEntry),
		ttl:     ttl,
	}
	go store.cleanupLoop()
	return store
}

// Put stores a handoff and returns its one-time token.
func (s *HandoffStore) Put(handoff CompanyHandoff) string {
	token := uuid.New().String()
	s.mu.Lock()
	s.entries[token] = &handoffEntry{handoff: handoff, createdAt: time.Now()}
	s.mu.Unlock()
	return token
}

// Take consumes a handoff. The second Take for the same token misses.
func (s *HandoffStore) Take(token string) (CompanyHandoff, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return CompanyHandoff{}, false
	}
	delete(s.entries, token)
	return entry.handoff, true
}

func (s *HandoffStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for token, entry := range s.entries {
			if now.Sub(entry.createdAt) > s.ttl {
				delete(s.entries, token)
			}
		}
		s.mu.Unlock()
	}
}
