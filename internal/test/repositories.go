package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/domain/model"
	"github.com/ecutune/ecutune/internal/domain/repository"
)

// OrderRepositoryStub stores orders in-memory for tests. Updates are
// serialized by a mutex, mirroring the store's atomicity contract, and a
// positive ConflictTimes makes the next updates fail with ErrConflict.
type OrderRepositoryStub struct {
	mu            sync.Mutex
	Records       map[string]model.Order
	Err           error
	ConflictTimes int
	UpdateCalls   int
}

// NewOrderRepositoryStub constructs the stub with initialized state.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Records: make(map[string]model.Order)}
}

// Seed inserts an order bypassing validation.
func (s *OrderRepositoryStub) Seed(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.Version == 0 {
		order.Version = 1
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	s.Records[order.ID] = order
}

// Create registers an order unless the key exists.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Records[order.ID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	if order.Version == 0 {
		order.Version = 1
	}
	s.Records[order.ID] = *order
	return nil
}

// Get returns a snapshot or not found.
func (s *OrderRepositoryStub) Get(ctx context.Context, id string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Records[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &order, nil
}

// List filters snapshots, newest first.
func (s *OrderRepositoryStub) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.Records {
		if filter.Owner != "" && order.Owner != filter.Owner {
			continue
		}
		if filter.AwaitingPayment {
			if order.Payment.Status != model.PaymentStatusUnpaid ||
				order.Payment.ExternalID == "" ||
				order.Status != model.OrderStatusUploaded {
				continue
			}
		}
		result = append(result, order)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Update applies the mutator under the lock and bumps the version.
func (s *OrderRepositoryStub) Update(ctx context.Context, id string, mutate func(*model.Order) error) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if s.ConflictTimes > 0 {
		s.ConflictTimes--
		return nil, domainErrors.ErrConflict
	}
	order, ok := s.Records[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if err := mutate(&order); err != nil {
		return nil, err
	}
	order.Touch(time.Now())
	order.Version++
	s.Records[id] = order
	return &order, nil
}

// Delete removes the record and returns the prior snapshot.
func (s *OrderRepositoryStub) Delete(ctx context.Context, id string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Records[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	delete(s.Records, id)
	return &order, nil
}
