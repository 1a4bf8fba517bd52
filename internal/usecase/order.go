package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/domain/model"
	"github.com/ecutune/ecutune/internal/domain/repository"
)

// MaxCommentsLength bounds the free-text field of a submission.
const MaxCommentsLength = 2000

// CreateOrderParams carries a validated customer submission.
type CreateOrderParams struct {
	Owner        string
	Vehicle      map[string]string
	Options      []string
	Comments     string
	OriginalFile model.FileRef
}

// OrderUseCase covers order intake and retrieval.
type OrderUseCase struct {
	orders repository.OrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders}
}

// Create registers a new order in the uploaded state.
func (u *OrderUseCase) Create(ctx context.Context, p CreateOrderParams) (*model.Order, error) {
	owner := strings.TrimSpace(p.Owner)
	if owner == "" {
		return nil, fmt.Errorf("owner identity is required: %w", domainErrors.ErrValidation)
	}
	if p.OriginalFile.Empty() {
		return nil, fmt.Errorf("original file is required: %w", domainErrors.ErrValidation)
	}
	if len(p.Comments) > MaxCommentsLength {
		return nil, fmt.Errorf("comments exceed %d characters: %w", MaxCommentsLength, domainErrors.ErrValidation)
	}

	order := &model.Order{
		ID:           uuid.NewString(),
		Owner:        owner,
		Vehicle:      p.Vehicle,
		Options:      p.Options,
		Comments:     p.Comments,
		OriginalFile: p.OriginalFile,
		Status:       model.OrderStatusUploaded,
		Payment:      model.Payment{Status: model.PaymentStatusUnpaid},
	}
	if order.Vehicle == nil {
		order.Vehicle = map[string]string{}
	}
	if order.Options == nil {
		order.Options = []string{}
	}

	err := u.orders.Create(ctx, order)
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		// id collision: retry once with a fresh one
		order.ID = uuid.NewString()
		err = u.orders.Create(ctx, order)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListByOwner returns the identity's orders, newest first.
func (u *OrderUseCase) ListByOwner(ctx context.Context, owner string) ([]model.Order, error) {
	return u.orders.List(ctx, repository.OrderFilter{Owner: owner})
}

// ListAll returns every order, newest first. Administrative.
func (u *OrderUseCase) ListAll(ctx context.Context) ([]model.Order, error) {
	return u.orders.List(ctx, repository.OrderFilter{})
}

// ListAwaitingPayment returns unpaid orders holding an intent reference.
func (u *OrderUseCase) ListAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.List(ctx, repository.OrderFilter{AwaitingPayment: true, Limit: limit})
}

// Get returns an order snapshot without ownership checks. Administrative.
func (u *OrderUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	return u.orders.Get(ctx, id)
}

// GetOwned returns the order only to its owner.
func (u *OrderUseCase) GetOwned(ctx context.Context, owner, id string) (*model.Order, error) {
	order, err := u.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Owner != owner {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// Purge removes an order and returns the prior snapshot. Administrative.
func (u *OrderUseCase) Purge(ctx context.Context, id string) (*model.Order, error) {
	return u.orders.Delete(ctx, id)
}
