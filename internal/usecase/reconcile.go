package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/domain/model"
)

// ProviderGateway is the slice of a payment adapter the coordinator needs:
// the provider's identity and its reading of a raw status value.
type ProviderGateway interface {
	Name() string
	Approved(rawStatus string) bool
}

// Notification is a deferred mail message.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// NotificationQueue accepts best-effort deferred notifications. Enqueue
// reports whether the message was accepted; a full queue drops it.
type NotificationQueue interface {
	Enqueue(n Notification) bool
}

// ReconcileUseCase merges asynchronous provider confirmations into the
// order lifecycle exactly once, however often they are redelivered.
type ReconcileUseCase struct {
	lifecycle *LifecycleUseCase
	queue     NotificationQueue
	logger    *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase. The queue may be nil.
func NewReconcileUseCase(lifecycle *LifecycleUseCase, queue NotificationQueue, logger *slog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{lifecycle: lifecycle, queue: queue, logger: logger}
}

// Reconcile folds one provider event into the order identified by orderRef.
//
// Non-approved statuses are interim noise and are discarded without touching
// state, so a stale "pending" arriving after an "approved" can never revert
// the payment. Events that cannot be matched to a live order are logged as
// unreconciled and acknowledged, never surfaced as an error the provider
// would retry forever.
func (u *ReconcileUseCase) Reconcile(ctx context.Context, gw ProviderGateway, externalPaymentID, orderRef, rawStatus string) error {
	attrs := []any{
		slog.String("provider", gw.Name()),
		slog.String("external_payment_id", externalPaymentID),
		slog.String("order", orderRef),
		slog.String("raw_status", rawStatus),
	}

	if !gw.Approved(rawStatus) {
		u.logger.Info("discarding non-approved payment status", attrs...)
		return nil
	}

	if orderRef == "" {
		u.logger.Warn("unreconciled payment event: empty order reference", attrs...)
		return nil
	}

	order, changed, err := u.lifecycle.MarkPaid(ctx, orderRef, gw.Name(), externalPaymentID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) || errors.Is(err, domainErrors.ErrTerminalState) {
			u.logger.Warn("unreconciled payment event", append(attrs, slog.String("reason", err.Error()))...)
			return nil
		}
		return err
	}

	if changed {
		u.notifyPaid(order)
	} else {
		u.logger.Info("duplicate payment confirmation ignored", attrs...)
	}
	return nil
}

func (u *ReconcileUseCase) notifyPaid(order *model.Order) {
	if u.queue == nil || !strings.Contains(order.Owner, "@") {
		return
	}
	n := Notification{
		To:      order.Owner,
		Subject: "Payment received",
		Body: fmt.Sprintf("<p>We received your payment for order %s. Your file is now queued for tuning.</p>",
			order.ID),
	}
	if !u.queue.Enqueue(n) {
		u.logger.Warn("notification queue full, dropping paid mail", slog.String("order", order.ID))
	}
}
