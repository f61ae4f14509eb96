package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-analytics/internal/common"
	"github.com/joseph-ayodele/receipt-analytics/internal/entity"
)

// MemoryStore keeps records in process. Records are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*entity.Receipt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]*entity.Receipt)}
}

func (m *MemoryStore) Create(_ context.Context, r *entity.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; ok {
		return common.AlreadyExists(receiptKind, r.ID.String())
	}
	m.records[r.ID] = clone(r)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*entity.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, common.NotFound(receiptKind, id.String())
	}
	return clone(r), nil
}

func (m *MemoryStore) Update(_ context.Context, r *entity.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; !ok {
		return common.NotFound(receiptKind, r.ID.String())
	}
	m.records[r.ID] = clone(r)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return common.NotFound(receiptKind, id.String())
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*entity.Receipt, error) {
	m.mu.RLock()
	out := make([]*entity.Receipt, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, clone(r))
	}
	m.mu.RUnlock()
	sortByUpload(out)
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
