// Package store persists the snapshot produced by each fetch cycle
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

// ErrNoSnapshot is returned by Latest before any cycle has been saved
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store keeps the most recent complete snapshot. Save replaces the previous one.
type Store interface {
	Save(ctx context.Context, snapshot *models.Snapshot) error
	Latest(ctx context.Context) (*models.Snapshot, error)
}

// MemoryStore keeps the latest snapshot in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *models.Snapshot
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, snapshot *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
	return nil
}

func (m *MemoryStore) Latest(_ context.Context) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return m.snapshot, nil
}
