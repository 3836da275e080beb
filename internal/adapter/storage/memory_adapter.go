package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

// MemoryAdapter keeps purchases in process memory. Used for local runs
// without MySQL and in tests.
type MemoryAdapter struct {
	mu        sync.RWMutex
	purchases map[string]domain.Purchase
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{purchases: make(map[string]domain.Purchase)}
}

func (m *MemoryAdapter) Insert(ctx context.Context, p domain.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purchases[p.ID] = p
	return nil
}

func (m *MemoryAdapter) FindByID(ctx context.Context, id string) (*domain.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryAdapter) FindAll(ctx context.Context) ([]domain.Purchase, error) {
	return m.collect(func(domain.Purchase) bool { return true }), nil
}

func (m *MemoryAdapter) FindByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return m.collect(func(p domain.Purchase) bool { return p.UserID == userID }), nil
}

func (m *MemoryAdapter) collect(match func(domain.Purchase) bool) []domain.Purchase {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Purchase
	for _, p := range m.purchases {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (m *MemoryAdapter) ReplaceFields(ctx context.Context, id string, fields domain.PurchaseFields) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.purchases[id]; !ok {
		return false, nil
	}
	m.purchases[id] = domain.NewPurchase(id, fields)
	return true, nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.purchases[id]; !ok {
		return false, nil
	}
	delete(m.purchases, id)
	return true, nil
}
