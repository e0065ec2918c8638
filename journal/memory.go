package journal

import (
	"context"
	"sync"
)

// MemoryStore keeps journal entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams: make(map[string][]*Entry),
	}
}

// Append adds entries to a stream with optimistic version checking.
func (s *MemoryStore) Append(ctx context.Context, stream string, expectedVersion int, entries []*Entry) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	version := len(s.streams[stream]) - 1
	if expectedVersion != version {
		return 0, ErrConflict
	}

	for _, e := range entries {
		version++
		stored := *e
		stored.Stream = stream
		stored.Version = version
		s.streams[stream] = append(s.streams[stream], &stored)
	}
	return version, nil
}

// Read returns entries in a stream from the given version onward.
func (s *MemoryStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Entry
	for _, e := range s.streams[stream] {
		if e.Version >= fromVersion {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

// StreamVersion returns the current version of a stream, or -1.
func (s *MemoryStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[stream]) - 1, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
