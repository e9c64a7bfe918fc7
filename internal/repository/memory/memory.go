// Package memory is an in-process OrderRepository used by tests and as
// a dev-mode fallback when no MySQL instance is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type Store struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	seq    []string // insertion order
}

func NewStore() *Store {
	return &Store{orders: make(map[string]*domain.Order)}
}

var _ repository.OrderRepository = (*Store)(nil)

func (s *Store) Create(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &cp
	s.seq = append(s.seq, order.ID)
	return nil
}

// Update serializes per-store: the whole merge happens under the write
// lock, so a concurrent reader never sees a half-applied patch.
func (s *Store) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	patch.Apply(o, time.Now())
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *Store) FindByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Order
	for _, id := range s.seq {
		if o := s.orders[id]; o.Customer.Email == email {
			cp := *o
			cp.Items = append([]domain.OrderItem(nil), o.Items...)
			out = append(out, cp)
		}
	}
	return out, nil
}

// Len reports the number of stored orders. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
