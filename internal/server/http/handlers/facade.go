package handlers

import (
	"context"
	"io"

	"github.com/ecutune/ecutune/internal/adapter/payment"
	"github.com/ecutune/ecutune/internal/domain/model"
	"github.com/ecutune/ecutune/internal/usecase"
)

// OrderFacade encapsulates customer order operations exposed via HTTP.
type OrderFacade interface {
	SubmitOrder(ctx context.Context, p usecase.CreateOrderParams, filename string, file io.Reader) (*model.Order, error)
	Orders(ctx context.Context, owner string) ([]model.Order, error)
	Order(ctx context.Context, owner, id string) (*model.Order, error)
	ConfirmDelivery(ctx context.Context, id, identity string) (*model.Order, error)
	RateOrder(ctx context.Context, id, identity string, rating int, feedback string) (*model.Order, error)
}

// PaymentFacade provides checkout and webhook reconciliation.
type PaymentFacade interface {
	ProviderNames() []string
	CreatePaymentIntent(ctx context.Context, owner, id, providerName string) (*payment.Intent, error)
	HandleWebhook(ctx context.Context, providerName string, body []byte) error
}

// AdminFacade provides the administrative order operations.
type AdminFacade interface {
	AllOrders(ctx context.Context) ([]model.Order, error)
	AttachResult(ctx context.Context, id, filename string, file io.Reader) (*model.Order, error)
	RejectOrder(ctx context.Context, id string) (*model.Order, error)
	RemoveOrder(ctx context.Context, id string) (*model.Order, error)
}

// FileFacade serves stored artifacts.
type FileFacade interface {
	OpenFile(name string) (io.ReadCloser, error)
}

// TuningFacade aggregates the full set of operations used across handlers.
type TuningFacade interface {
	OrderFacade
	PaymentFacade
	AdminFacade
	FileFacade
}
