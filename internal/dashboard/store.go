package dashboard

import (
	"sync"
	"time"
)

// DraftStore keeps the list view state of each browser between requests:
// row drafts and the alert to show after the next redirect. Entries not
// touched for ttl are dropped.
type DraftStore struct {
	mu      sync.Mutex
	entries map[string]*draftEntry
	ttl     time.Duration
	now     func() time.Time
}

type draftEntry struct {
	drafts  Drafts
	alerts  []string
	touched time.Time
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	return NewDraftStoreWithNow(ttl, time.Now)
}

func NewDraftStoreWithNow(ttl time.Duration, now func() time.Time) *DraftStore {
	return &DraftStore{entries: make(map[string]*draftEntry), ttl: ttl, now: now}
}

// entry returns the live entry for key, creating it when create is set.
// Caller holds mu.
func (s *DraftStore) entry(key string, create bool) *draftEntry {
	now := s.now()
	for k, e := range s.entries {
		if s.ttl > 0 && now.Sub(e.touched) > s.ttl {
			delete(s.entries, k)
		}
	}
	e, ok := s.entries[key]
	if !ok {
		if !create {
			return nil
		}
		e = &draftEntry{drafts: Drafts{}}
		s.entries[key] = e
	}
	e.touched = now
	return e
}

// Drafts returns a copy of the drafts stored under key.
func (s *DraftStore) Drafts(key string) Drafts {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Drafts{}
	if e := s.entry(key, false); e != nil {
		for id, dr := range e.drafts {
			out[id] = dr
		}
	}
	return out
}

func (s *DraftStore) SetDrafts(key string, drafts Drafts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(key, true)
	e.drafts = Drafts{}
	for id, dr := range drafts {
		e.drafts[id] = dr
	}
}

func (s *DraftStore) AddAlert(key, msg string) {
	if msg == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(key, true)
	e.alerts = append(e.alerts, msg)
}

// PopAlerts returns the pending alerts and forgets them.
func (s *DraftStore) PopAlerts(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(key, false)
	if e == nil {
		return nil
	}
	out := e.alerts
	e.alerts = nil
	return out
}

func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
