package tenantctx

import (
	"context"
	"sync"
	"time"
)

// Store persists resolved contexts keyed by tenant id. Implementations
// must be safe for concurrent use. A deleted or expired entry is simply
// absent; the cache treats absence as "needs a fresh resolution".
type Store interface {
	// Get retrieves a stored context by tenant id.
	Get(ctx context.Context, tenantID string) (Context, bool)

	// Set stores a context with the given TTL.
	Set(ctx context.Context, tenantID string, tc Context, ttl time.Duration)

	// Delete removes a stored context.
	Delete(ctx context.Context, tenantID string)

	// Close releases any resources held by the store.
	Close() error
}

// DefaultStoreSize is the default maximum number of entries held by the
// in-memory store.
const DefaultStoreSize = 1000

const cleanupInterval = time.Minute

// memoryStore is the default in-memory store with TTL expiry and LRU
// eviction under size pressure.
type memoryStore struct {
	mu      sync.Mutex
	items   map[string]storeItem
	lru     []string
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

type storeItem struct {
	value     Context
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store with the default size limit
// and a background janitor for expired entries.
func NewMemoryStore() Store {
	return NewMemoryStoreWithSize(DefaultStoreSize)
}

// NewMemoryStoreWithSize creates an in-memory store with the given size
// limit. Non-positive limits fall back to DefaultStoreSize.
func NewMemoryStoreWithSize(maxSize int) Store {
	if maxSize <= 0 {
		maxSize = DefaultStoreSize
	}

	s := &memoryStore{
		items:   make(map[string]storeItem),
		lru:     make([]string, 0, maxSize),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go s.cleanup()

	return s
}

func (s *memoryStore) Get(ctx context.Context, tenantID string) (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[tenantID]
	if !ok {
		return Context{}, false
	}

	if time.Now().After(item.expiresAt) {
		delete(s.items, tenantID)
		s.removeLRU(tenantID)
		return Context{}, false
	}

	s.touchLRU(tenantID)
	return item.value, true
}

func (s *memoryStore) Set(ctx context.Context, tenantID string, tc Context, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[tenantID]; !ok && len(s.items) >= s.maxSize {
		if len(s.lru) > 0 {
			evict := s.lru[0]
			delete(s.items, evict)
			s.lru = s.lru[1:]
		}
	}

	s.items[tenantID] = storeItem{value: tc, expiresAt: time.Now().Add(ttl)}
	s.touchLRU(tenantID)
}

func (s *memoryStore) Delete(ctx context.Context, tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, tenantID)
	s.removeLRU(tenantID)
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}

func (s *memoryStore) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *memoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, id)
			s.removeLRU(id)
		}
	}
}

// touchLRU moves the id to the most-recently-used end of the queue.
func (s *memoryStore) touchLRU(tenantID string) {
	s.removeLRU(tenantID)
	s.lru = append(s.lru, tenantID)
}

func (s *memoryStore) removeLRU(tenantID string) {
	for i, id := range s.lru {
		if id == tenantID {
			s.lru = append(s.lru[:i], s.lru[i+1:]...)
			return
		}
	}
}
