// Package store memoizes pipeline outcomes by upload content identity.
package store

import (
	"sync"

	"github.com/couchcryptid/buoy-data-ingest/internal/domain"
)

// Outcome is one cached pipeline result. Definitive failures are cached too:
// a malformed file will not parse differently on the next upload, so there is
// nothing to gain from rerunning the pipeline on it.
type Outcome struct {
	Dataset *domain.Dataset
	Err     error
}

// ResultStore is a thread-safe LRU store of pipeline outcomes keyed by
// content ID. Entries are valid for the lifetime of the process; eviction
// only bounds memory.
type ResultStore struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	outcome Outcome
	prev    *entry
	next    *entry
}

// New creates a ResultStore holding at most maxEntries outcomes.
func New(maxEntries int) *ResultStore {
	return &ResultStore{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

// Get returns the cached outcome for a content ID, promoting it on hit.
func (s *ResultStore) Get(key string) (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Outcome{}, false
	}
	s.moveToFront(e)
	return e.outcome, true
}

// Put stores an outcome under a content ID, evicting the least recently used
// entry when the store is full.
func (s *ResultStore) Put(key string, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.outcome = outcome
		s.moveToFront(e)
		return
	}

	e := &entry{key: key, outcome: outcome}
	s.entries[key] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
}

// Len returns the number of cached outcomes.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *ResultStore) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *ResultStore) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *ResultStore) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *ResultStore) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.remove(s.tail)
}
