package statementstore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/yanqian/smart-energy/internal/domain/billing"
)

// MemoryStore keeps statements in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) (billing.StoredStatement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = bytes.Clone(data)
	hash := md5.Sum(data)
	return billing.StoredStatement{Key: key, Size: int64(len(data)), ETag: hex.EncodeToString(hash[:])}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", billing.ErrStatementNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(blob)), nil
}

var _ billing.StatementStore = (*MemoryStore)(nil)
