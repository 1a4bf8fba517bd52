package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/ecutune/ecutune/internal/domain/errors"
	"github.com/ecutune/ecutune/internal/domain/model"
	testhelpers "github.com/ecutune/ecutune/internal/test"
)

func seededLifecycle(status model.OrderStatus) (*LifecycleUseCase, *testhelpers.OrderRepositoryStub) {
	repo := testhelpers.NewOrderRepositoryStub()
	repo.Seed(model.Order{
		ID:           "ord-1",
		Owner:        "driver@example.com",
		Status:       status,
		OriginalFile: model.FileRef{Name: "orig.bin", URL: "/api/files/orig.bin"},
	})
	return NewLifecycleUseCase(repo), repo
}

func TestLifecycleForwardScenario(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusUploaded)
	ctx := context.Background()

	order, changed, err := uc.MarkPaid(ctx, "ord-1", "payway", "inv-1")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !changed {
		t.Fatal("expected first confirmation to change the order")
	}
	if order.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
	if order.Payment.Status != model.PaymentStatusApproved {
		t.Fatalf("expected approved payment, got %s", order.Payment.Status)
	}

	order, err = uc.AttachResult(ctx, "ord-1", model.FileRef{Name: "tuned.bin", URL: "/api/files/tuned.bin"})
	if err != nil {
		t.Fatalf("attach result: %v", err)
	}
	if order.Status != model.OrderStatusReady {
		t.Fatalf("expected ready, got %s", order.Status)
	}

	order, err = uc.ConfirmDelivery(ctx, "ord-1", "driver@example.com")
	if err != nil {
		t.Fatalf("confirm delivery: %v", err)
	}
	if order.Status != model.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}

	if _, err := uc.Reject(ctx, "ord-1"); !errors.Is(err, domainErrors.ErrTerminalState) {
		t.Fatalf("expected terminal state rejecting a delivered order, got %v", err)
	}
}

func TestLifecycleMarkPaidIdempotent(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusUploaded)
	ctx := context.Background()

	if _, changed, err := uc.MarkPaid(ctx, "ord-1", "payway", "inv-1"); err != nil || !changed {
		t.Fatalf("first confirmation: changed=%v err=%v", changed, err)
	}
	order, changed, err := uc.MarkPaid(ctx, "ord-1", "payway", "inv-1")
	if err != nil {
		t.Fatalf("duplicate confirmation: %v", err)
	}
	if changed {
		t.Fatal("duplicate confirmation must be a no-op")
	}
	if order.Status != model.OrderStatusPaid {
		t.Fatalf("expected paid, got %s", order.Status)
	}
}

func TestLifecycleMarkPaidAfterReadyKeepsStatus(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusReady)

	order, changed, err := uc.MarkPaid(context.Background(), "ord-1", "payway", "inv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("late confirmation must not change an already advanced order")
	}
	if order.Status != model.OrderStatusReady {
		t.Fatalf("expected ready to survive, got %s", order.Status)
	}
}

func TestLifecycleMarkPaidRejectedOrder(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusRejected)
	if _, _, err := uc.MarkPaid(context.Background(), "ord-1", "payway", "inv-1"); !errors.Is(err, domainErrors.ErrTerminalState) {
		t.Fatalf("expected terminal state, got %v", err)
	}
}

func TestLifecycleAttachResultAdminOverride(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusUploaded)

	order, err := uc.AttachResult(context.Background(), "ord-1", model.FileRef{Name: "tuned.bin", URL: "/api/files/tuned.bin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusReady {
		t.Fatalf("expected ready even without payment, got %s", order.Status)
	}
}

func TestLifecycleAttachResultValidation(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusPaid)
	if _, err := uc.AttachResult(context.Background(), "ord-1", model.FileRef{}); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLifecycleAttachResultReplacesFileWithoutRegression(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusDelivered)

	order, err := uc.AttachResult(context.Background(), "ord-1", model.FileRef{Name: "v2.bin", URL: "/api/files/v2.bin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusDelivered {
		t.Fatalf("expected delivered to survive, got %s", order.Status)
	}
	if order.ResultFile.Name != "v2.bin" {
		t.Fatalf("expected replacement file, got %+v", order.ResultFile)
	}
}

func TestLifecycleConfirmDeliveryGuards(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusPaid)
	ctx := context.Background()

	if _, err := uc.ConfirmDelivery(ctx, "ord-1", "driver@example.com"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition before ready, got %v", err)
	}

	uc, _ = seededLifecycle(model.OrderStatusReady)
	if _, err := uc.ConfirmDelivery(ctx, "ord-1", "other@example.com"); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	// Empty identity marks an operator acting on the customer's behalf.
	if _, err := uc.ConfirmDelivery(ctx, "ord-1", ""); err != nil {
		t.Fatalf("unexpected error for operator confirm: %v", err)
	}
}

func TestLifecycleRecordIntent(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusUploaded)
	ctx := context.Background()

	order, err := uc.RecordIntent(ctx, "ord-1", "driver@example.com", "unipay", "pay-77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Payment.Provider != "unipay" || order.Payment.ExternalID != "pay-77" {
		t.Fatalf("unexpected payment %+v", order.Payment)
	}
	if order.Status != model.OrderStatusUploaded {
		t.Fatalf("intent must not advance the order, got %s", order.Status)
	}

	if _, err := uc.RecordIntent(ctx, "ord-1", "other@example.com", "unipay", "pay-78"); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	uc, _ = seededLifecycle(model.OrderStatusPaid)
	if _, err := uc.RecordIntent(ctx, "ord-1", "driver@example.com", "unipay", "pay-79"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for a paid order, got %v", err)
	}
}

func TestLifecycleReject(t *testing.T) {
	uc, _ := seededLifecycle(model.OrderStatusPaid)

	order, err := uc.Reject(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusRejected {
		t.Fatalf("expected rejected, got %s", order.Status)
	}
	if _, err := uc.Reject(context.Background(), "ord-1"); !errors.Is(err, domainErrors.ErrTerminalState) {
		t.Fatalf("expected terminal state on second reject, got %v", err)
	}
}

func TestLifecycleRate(t *testing.T) {
	ctx := context.Background()

	uc, _ := seededLifecycle(model.OrderStatusDelivered)
	order, err := uc.Rate(ctx, "ord-1", "driver@example.com", 9, "smooth power delivery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Rating != 5 {
		t.Fatalf("expected rating clamped to 5, got %d", order.Rating)
	}
	if order.Feedback != "smooth power delivery" {
		t.Fatalf("unexpected feedback %q", order.Feedback)
	}

	order, err = uc.Rate(ctx, "ord-1", "driver@example.com", -3, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Rating != 0 {
		t.Fatalf("expected rating clamped to 0, got %d", order.Rating)
	}
	if order.Feedback != "smooth power delivery" {
		t.Fatalf("empty feedback must not erase the previous one, got %q", order.Feedback)
	}

	if _, err := uc.Rate(ctx, "ord-1", "other@example.com", 4, ""); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	uc, _ = seededLifecycle(model.OrderStatusPaid)
	if _, err := uc.Rate(ctx, "ord-1", "driver@example.com", 4, ""); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition before ready, got %v", err)
	}
}

func TestLifecycleRetriesOnConflict(t *testing.T) {
	uc, repo := seededLifecycle(model.OrderStatusPaid)
	repo.ConflictTimes = 1

	if _, err := uc.Reject(context.Background(), "ord-1"); err != nil {
		t.Fatalf("expected retry to absorb a single conflict, got %v", err)
	}
	if repo.UpdateCalls != 2 {
		t.Fatalf("expected exactly one retry, got %d update calls", repo.UpdateCalls)
	}
}

func TestLifecycleGivesUpAfterRepeatedConflict(t *testing.T) {
	uc, repo := seededLifecycle(model.OrderStatusPaid)
	repo.ConflictTimes = 2

	if _, err := uc.Reject(context.Background(), "ord-1"); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict to surface, got %v", err)
	}
}
