// Package store provides mmr.Store backends: an in-memory one for tests and
// short-lived verification, and a persistent one backed by go.etcd.io/bbolt
// for the long-running prover.
package store

import (
	"sync"

	"github.com/nervosnetwork/btcspv/mmr"
)

// MemStore is a process-local, mutex-guarded mmr.Store.
type MemStore struct {
	mu      sync.RWMutex
	entries []mmr.Digest
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Get(pos uint64) (mmr.Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pos >= uint64(len(s.entries)) {
		return mmr.Digest{}, ErrOutOfRange
	}
	return s.entries[pos], nil
}

func (s *MemStore) Append(d mmr.Digest) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, d)
	return uint64(len(s.entries) - 1), nil
}

func (s *MemStore) Len() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.entries))
}

// Truncate drops every entry at or above pos, mirroring the teacher's
// BlockCache.Reorg: a rollback discards the tail rather than tombstoning
// individual entries.
func (s *MemStore) Truncate(pos uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos < uint64(len(s.entries)) {
		s.entries = s.entries[:pos]
	}
	return nil
}
