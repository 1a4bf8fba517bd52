package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ecutune/ecutune/internal/adapter/payment"
	"github.com/ecutune/ecutune/internal/blobstore"
	"github.com/ecutune/ecutune/internal/domain/model"
	"github.com/ecutune/ecutune/internal/usecase"
)

// TuningFacade is the single entry point the HTTP layer and the background
// workers talk to. It composes the use cases with file storage, the payment
// provider registry, and the notification queue.
type TuningFacade struct {
	orders    *usecase.OrderUseCase
	lifecycle *usecase.LifecycleUseCase
	reconcile *usecase.ReconcileUseCase
	providers *payment.Registry
	blobs     blobstore.Store
	queue     usecase.NotificationQueue

	adminEmail    string
	priceAmount   int64
	priceCurrency string
}

// FacadeParams carries the non-service knobs of the facade.
type FacadeParams struct {
	AdminEmail    string
	PriceAmount   int64
	PriceCurrency string
}

// NewTuningFacade constructs TuningFacade. The queue may be nil.
func NewTuningFacade(
	orders *usecase.OrderUseCase,
	lifecycle *usecase.LifecycleUseCase,
	reconcile *usecase.ReconcileUseCase,
	providers *payment.Registry,
	blobs blobstore.Store,
	queue usecase.NotificationQueue,
	params FacadeParams,
) *TuningFacade {
	return &TuningFacade{
		orders:        orders,
		lifecycle:     lifecycle,
		reconcile:     reconcile,
		providers:     providers,
		blobs:         blobs,
		queue:         queue,
		adminEmail:    params.AdminEmail,
		priceAmount:   params.PriceAmount,
		priceCurrency: params.PriceCurrency,
	}
}

// SubmitOrder stores the customer's original file and registers the order.
func (f *TuningFacade) SubmitOrder(ctx context.Context, p usecase.CreateOrderParams, filename string, file io.Reader) (*model.Order, error) {
	ref, err := f.blobs.Store(filename, file)
	if err != nil {
		return nil, err
	}
	p.OriginalFile = ref

	order, err := f.orders.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	f.notifyAdmin(order)
	return order, nil
}

// Orders lists the caller's orders.
func (f *TuningFacade) Orders(ctx context.Context, owner string) ([]model.Order, error) {
	return f.orders.ListByOwner(ctx, owner)
}

// Order fetches one order owned by the caller.
func (f *TuningFacade) Order(ctx context.Context, owner, id string) (*model.Order, error) {
	return f.orders.GetOwned(ctx, owner, id)
}

// AllOrders lists every order. Administrative.
func (f *TuningFacade) AllOrders(ctx context.Context) ([]model.Order, error) {
	return f.orders.ListAll(ctx)
}

// ProviderNames lists the payment providers available for checkout.
func (f *TuningFacade) ProviderNames() []string {
	return f.providers.Names()
}

// CreatePaymentIntent opens a payable reference at the named provider and
// records it on the order.
func (f *TuningFacade) CreatePaymentIntent(ctx context.Context, owner, id, providerName string) (*payment.Intent, error) {
	provider, err := f.providers.Get(providerName)
	if err != nil {
		return nil, err
	}
	if _, err := f.orders.GetOwned(ctx, owner, id); err != nil {
		return nil, err
	}

	intent, err := provider.CreateIntent(ctx, id, f.priceAmount, f.priceCurrency)
	if err != nil {
		return nil, err
	}

	if _, err := f.lifecycle.RecordIntent(ctx, id, owner, provider.Name(), intent.ID); err != nil {
		return nil, err
	}
	return intent, nil
}

// HandleWebhook folds a provider callback into the order lifecycle.
// A payload the provider adapter cannot decode surfaces as
// payment.ErrMalformedWebhook.
func (f *TuningFacade) HandleWebhook(ctx context.Context, providerName string, body []byte) error {
	provider, err := f.providers.Get(providerName)
	if err != nil {
		return err
	}
	n, err := provider.ParseWebhook(body)
	if err != nil {
		return err
	}
	return f.reconcile.Reconcile(ctx, provider, n.ExternalPaymentID, n.OrderRef, n.RawStatus)
}

// OrdersAwaitingVerification feeds the payment verification worker.
func (f *TuningFacade) OrdersAwaitingVerification(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.ListAwaitingPayment(ctx, limit)
}

// VerifyPayment asks the order's provider for the authoritative payment
// status and reconciles the answer.
func (f *TuningFacade) VerifyPayment(ctx context.Context, order model.Order) error {
	provider, err := f.providers.Get(order.Payment.Provider)
	if err != nil {
		return fmt.Errorf("order %s: %w", order.ID, err)
	}
	rawStatus, err := provider.Verify(ctx, order.Payment.ExternalID)
	if err != nil {
		return err
	}
	return f.reconcile.Reconcile(ctx, provider, order.Payment.ExternalID, order.ID, rawStatus)
}

// AttachResult stores the engineer's tuned file on the order and mails the
// customer a download link.
func (f *TuningFacade) AttachResult(ctx context.Context, id, filename string, file io.Reader) (*model.Order, error) {
	ref, err := f.blobs.Store(filename, file)
	if err != nil {
		return nil, err
	}
	order, err := f.lifecycle.AttachResult(ctx, id, ref)
	if err != nil {
		return nil, err
	}
	f.notifyReady(order)
	return order, nil
}

// ConfirmDelivery marks a ready order as delivered. Identity is empty for
// administrative confirmations.
func (f *TuningFacade) ConfirmDelivery(ctx context.Context, id, identity string) (*model.Order, error) {
	return f.lifecycle.ConfirmDelivery(ctx, id, identity)
}

// RejectOrder terminates an order. Administrative.
func (f *TuningFacade) RejectOrder(ctx context.Context, id string) (*model.Order, error) {
	return f.lifecycle.Reject(ctx, id)
}

// RateOrder stores the customer's rating and feedback.
func (f *TuningFacade) RateOrder(ctx context.Context, id, identity string, rating int, feedback string) (*model.Order, error) {
	return f.lifecycle.Rate(ctx, id, identity, rating, feedback)
}

// RemoveOrder deletes an order record. Administrative.
func (f *TuningFacade) RemoveOrder(ctx context.Context, id string) (*model.Order, error) {
	return f.orders.Purge(ctx, id)
}

// OpenFile opens a stored artifact by its generated name.
func (f *TuningFacade) OpenFile(name string) (io.ReadCloser, error) {
	return f.blobs.Open(name)
}

func (f *TuningFacade) notifyAdmin(order *model.Order) {
	if f.queue == nil || f.adminEmail == "" {
		return
	}
	f.queue.Enqueue(usecase.Notification{
		To:      f.adminEmail,
		Subject: "New tuning order",
		Body: fmt.Sprintf("<p>Order %s from %s: %s / %s.</p>",
			order.ID, order.Owner, order.Vehicle["brand"], order.Vehicle["model"]),
	})
}

func (f *TuningFacade) notifyReady(order *model.Order) {
	if f.queue == nil || !strings.Contains(order.Owner, "@") {
		return
	}
	f.queue.Enqueue(usecase.Notification{
		To:      order.Owner,
		Subject: "Your tuned file is ready",
		Body: fmt.Sprintf("<p>Order %s is ready. Download your file: <a href=%q>%s</a></p>",
			order.ID, order.ResultFile.URL, order.ResultFile.URL),
	})
}
