package cache

import (
	"context"
	"sync"
	"time"
)

var _ IdempotencyStore = (*MemoryIdempotencyStore)(nil)

type memEntry struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryIdempotencyStore implementación en memoria para una sola instancia.
// Limpia las entradas vencidas en segundo plano.
type MemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]memEntry
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryIdempotencyStore crea el almacén e inicia la limpieza periódica.
func NewMemoryIdempotencyStore(cleanupEvery time.Duration) *MemoryIdempotencyStore {
	if cleanupEvery <= 0 {
		cleanupEvery = 5 * time.Minute
	}
	s := &MemoryIdempotencyStore{
		entries: make(map[string]memEntry),
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(cleanupEvery)
	return s
}

func (s *MemoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[key] = memEntry{entry: Entry{Pending: true}, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (s *MemoryIdempotencyStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	out := e.entry
	return &out, nil
}

func (s *MemoryIdempotencyStore) Complete(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Pending = false
	s.entries[key] = memEntry{entry: entry, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close detiene la limpieza; es seguro llamarlo varias veces.
func (s *MemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

func (s *MemoryIdempotencyStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
