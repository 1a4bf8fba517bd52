package repository

import (
	"context"

	"github.com/ecutune/ecutune/internal/domain/model"
)

// OrderFilter narrows List results. Zero value matches everything.
type OrderFilter struct {
	// Owner restricts results to a single submitting identity when non-empty.
	Owner string
	// AwaitingPayment selects unpaid orders that already hold a payment
	// intent reference, the set the verification poller works through.
	AwaitingPayment bool
	// Limit caps the number of returned records when positive.
	Limit int
}

// OrderRepository describes persistence operations with orders. Update must
// apply the mutator against the current snapshot and persist the result as a
// single unit; a lost concurrent race surfaces as ErrConflict.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	Update(ctx context.Context, id string, mutate func(*model.Order) error) (*model.Order, error)
	Delete(ctx context.Context, id string) (*model.Order, error)
}
