package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/domain/model"
	"github.com/ecutune/ecutune/internal/domain/repository"
)

const conflictRetryDelay = 50 * time.Millisecond

// LifecycleUseCase is the only component that moves an order between
// statuses or mutates its payment and result fields.
type LifecycleUseCase struct {
	orders repository.OrderRepository
}

// NewLifecycleUseCase constructs LifecycleUseCase.
func NewLifecycleUseCase(orders repository.OrderRepository) *LifecycleUseCase {
	return &LifecycleUseCase{orders: orders}
}

// update applies the mutator, retrying once when a concurrent writer wins
// the version race. The mutator must be pure: it re-runs on retry.
func (u *LifecycleUseCase) update(ctx context.Context, id string, mutate func(*model.Order) error) (*model.Order, error) {
	order, err := u.orders.Update(ctx, id, mutate)
	if errors.Is(err, domainErrors.ErrConflict) {
		time.Sleep(conflictRetryDelay)
		order, err = u.orders.Update(ctx, id, mutate)
	}
	return order, err
}

// MarkPaid applies the payment-confirmed transition. It reports whether the
// order actually changed: a replayed confirmation on an order that is
// already paid or further along is a success no-op.
func (u *LifecycleUseCase) MarkPaid(ctx context.Context, id, provider, externalPaymentID string) (*model.Order, bool, error) {
	changed := false
	order, err := u.update(ctx, id, func(o *model.Order) error {
		changed = false
		if o.Status == model.OrderStatusRejected {
			return domainErrors.ErrTerminalState
		}
		if o.Status.AtLeast(model.OrderStatusPaid) {
			return nil
		}
		o.Status = model.OrderStatusPaid
		o.Payment = model.Payment{
			Provider:   provider,
			ExternalID: externalPaymentID,
			Status:     model.PaymentStatusApproved,
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, changed, nil
}

// RecordIntent stores the provider reference created for an order before
// any money moved. Only the owner may open an intent, and only while the
// order still waits for payment.
func (u *LifecycleUseCase) RecordIntent(ctx context.Context, id, owner, provider, externalPaymentID string) (*model.Order, error) {
	return u.update(ctx, id, func(o *model.Order) error {
		if o.Owner != owner {
			return domainErrors.ErrForbidden
		}
		if o.Status.Terminal() {
			return domainErrors.ErrTerminalState
		}
		if o.Status != model.OrderStatusUploaded {
			return fmt.Errorf("order already paid: %w", domainErrors.ErrInvalidTransition)
		}
		o.Payment.Provider = provider
		o.Payment.ExternalID = externalPaymentID
		o.Payment.Status = model.PaymentStatusUnpaid
		return nil
	})
}

// AttachResult stores the engineer's modified file and moves the order to
// ready. The administrative caller may skip the payment gate, so the edge is
// accepted from uploaded as well as paid. At ready or delivered the
// reference is overwritten without touching status.
func (u *LifecycleUseCase) AttachResult(ctx context.Context, id string, ref model.FileRef) (*model.Order, error) {
	if ref.Empty() {
		return nil, fmt.Errorf("result file reference is required: %w", domainErrors.ErrValidation)
	}
	return u.update(ctx, id, func(o *model.Order) error {
		if o.Status == model.OrderStatusRejected {
			return domainErrors.ErrTerminalState
		}
		o.ResultFile = ref
		if !o.Status.AtLeast(model.OrderStatusReady) {
			o.Status = model.OrderStatusReady
		}
		return nil
	})
}

// ConfirmDelivery moves a ready order to delivered. An empty identity marks
// an administrative confirmation and skips the ownership check.
func (u *LifecycleUseCase) ConfirmDelivery(ctx context.Context, id, identity string) (*model.Order, error) {
	return u.update(ctx, id, func(o *model.Order) error {
		if identity != "" && o.Owner != identity {
			return domainErrors.ErrForbidden
		}
		if o.Status.Terminal() {
			return domainErrors.ErrTerminalState
		}
		if o.Status != model.OrderStatusReady {
			return fmt.Errorf("order is %s: %w", o.Status, domainErrors.ErrInvalidTransition)
		}
		o.Status = model.OrderStatusDelivered
		return nil
	})
}

// Reject terminates a non-terminal order. Administrative.
func (u *LifecycleUseCase) Reject(ctx context.Context, id string) (*model.Order, error) {
	return u.update(ctx, id, func(o *model.Order) error {
		if o.Status.Terminal() {
			return domainErrors.ErrTerminalState
		}
		o.Status = model.OrderStatusRejected
		return nil
	})
}

// Rate stores the owner's rating and feedback once fulfillment has begun.
// Out-of-range ratings are clamped, not rejected.
func (u *LifecycleUseCase) Rate(ctx context.Context, id, identity string, rating int, feedback string) (*model.Order, error) {
	if len(feedback) > model.MaxFeedbackLength {
		return nil, fmt.Errorf("feedback exceeds %d characters: %w", model.MaxFeedbackLength, domainErrors.ErrValidation)
	}
	return u.update(ctx, id, func(o *model.Order) error {
		if o.Owner != identity {
			return domainErrors.ErrForbidden
		}
		if !o.Status.AtLeast(model.OrderStatusReady) {
			return fmt.Errorf("order is %s: %w", o.Status, domainErrors.ErrInvalidTransition)
		}
		o.Rating = model.ClampRating(rating)
		if feedback != "" {
			o.Feedback = feedback
		}
		return nil
	})
}
