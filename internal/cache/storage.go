package cache

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

// Storage defines the interface for cache operations.
// Implementations never expire entries on their own: freshness is decided by the caller at read time.
type Storage interface {
	Get(key string) (Entry, bool)
	Set(key string, entry Entry)
	Len() int
}

// Entry represents a cached upstream response with the time it was stored.
type Entry struct {
	Payload  json.RawMessage
	StoredAt time.Time
}

// Age returns how old the entry is at the given instant.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// IsFresh reports whether the entry can be served without contacting the upstream.
func (e Entry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// MemoryStorage implements Storage with a process-lifetime map keyed by request URL.
//
// With maxEntries <= 0 the store is unbounded and never evicts. With a positive bound the
// least recently used key is dropped when a new key would exceed it.
type MemoryStorage struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*list.Element
	recency    *list.List
}

type item struct {
	key   string
	entry Entry
}

// New creates an empty in-memory storage. maxEntries <= 0 disables eviction.
func New(maxEntries int) *MemoryStorage {
	return &MemoryStorage{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		recency:    list.New(),
	}
}

// Get returns the entry stored under key, fresh or not.
func (s *MemoryStorage) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	s.recency.MoveToFront(el)
	return el.Value.(*item).entry, true
}

// Set stores entry under key, replacing any previous entry for the same key.
func (s *MemoryStorage) Set(key string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*item).entry = entry
		s.recency.MoveToFront(el)
		return
	}

	s.entries[key] = s.recency.PushFront(&item{key: key, entry: entry})

	if s.maxEntries > 0 && s.recency.Len() > s.maxEntries {
		oldest := s.recency.Back()
		s.recency.Remove(oldest)
		delete(s.entries, oldest.Value.(*item).key)
	}
}

// Len returns the number of stored entries.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
