package batch

import (
	"sync"
	"time"
)

// Store holds the batch operations for the process lifetime. It is built in
// main and handed to the Service; there is no package-level instance.
type Store struct {
	mu  sync.RWMutex
	ops map[string]*Operation
}

func NewStore() *Store {
	return &Store{ops: make(map[string]*Operation)}
}

// Create registers a new operation under the given batch ID.
func (s *Store) Create(batchID string) *Operation {
	op := newOperation(batchID)
	s.mu.Lock()
	s.ops[batchID] = op
	s.mu.Unlock()
	return op
}

// Get looks up an operation by batch ID.
func (s *Store) Get(batchID string) (*Operation, bool) {
	s.mu.RLock()
	op, ok := s.ops[batchID]
	s.mu.RUnlock()
	return op, ok
}

// Delete removes an operation.
func (s *Store) Delete(batchID string) {
	s.mu.Lock()
	delete(s.ops, batchID)
	s.mu.Unlock()
}

// Len returns the number of stored operations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ops)
}

// Purge drops terminal operations that ended more than maxAge ago and
// returns how many were removed. Running operations are never touched.
func (s *Store) Purge(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, op := range s.ops {
		if op.isExpired(cutoff) {
			delete(s.ops, id)
			removed++
		}
	}
	return removed
}
