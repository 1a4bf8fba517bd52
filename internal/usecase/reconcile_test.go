package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/ecutune/ecutune/internal/domain/model"
)

type gatewayStub struct {
	name     string
	approved map[string]bool
}

func (g gatewayStub) Name() string                 { return g.name }
func (g gatewayStub) Approved(rawStatus string) bool { return g.approved[rawStatus] }

type queueStub struct {
	messages []Notification
	reject   bool
}

func (q *queueStub) Enqueue(n Notification) bool {
	if q.reject {
		return false
	}
	q.messages = append(q.messages, n)
	return true
}

func newReconcileFixture(t *testing.T, status model.OrderStatus) (*ReconcileUseCase, *queueStub) {
	t.Helper()
	lifecycle, _ := seededLifecycle(status)
	queue := &queueStub{}
	return NewReconcileUseCase(lifecycle, queue, slog.Default()), queue
}

func TestReconcileApprovedEvent(t *testing.T) {
	uc, queue := newReconcileFixture(t, model.OrderStatusUploaded)
	gw := gatewayStub{name: "payway", approved: map[string]bool{"paid": true}}

	if err := uc.Reconcile(context.Background(), gw, "inv-1", "ord-1", "paid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.messages) != 1 {
		t.Fatalf("expected one paid notification, got %d", len(queue.messages))
	}
	if queue.messages[0].To != "driver@example.com" {
		t.Fatalf("unexpected recipient %q", queue.messages[0].To)
	}
}

func TestReconcileDuplicateEventSendsNoSecondMail(t *testing.T) {
	uc, queue := newReconcileFixture(t, model.OrderStatusUploaded)
	gw := gatewayStub{name: "payway", approved: map[string]bool{"paid": true}}
	ctx := context.Background()

	if err := uc.Reconcile(ctx, gw, "inv-1", "ord-1", "paid"); err != nil {
		t.Fatalf("first event: %v", err)
	}
	if err := uc.Reconcile(ctx, gw, "inv-1", "ord-1", "paid"); err != nil {
		t.Fatalf("replayed event must be acknowledged, got %v", err)
	}
	if len(queue.messages) != 1 {
		t.Fatalf("replay must not mail again, got %d messages", len(queue.messages))
	}
}

func TestReconcileStalePendingAfterApproved(t *testing.T) {
	uc, queue := newReconcileFixture(t, model.OrderStatusUploaded)
	gw := gatewayStub{name: "unipay", approved: map[string]bool{"COMPLETED": true}}
	ctx := context.Background()

	if err := uc.Reconcile(ctx, gw, "pay-9", "ord-1", "COMPLETED"); err != nil {
		t.Fatalf("approved event: %v", err)
	}
	if err := uc.Reconcile(ctx, gw, "pay-9", "ord-1", "PENDING"); err != nil {
		t.Fatalf("stale event must be discarded silently, got %v", err)
	}
	if len(queue.messages) != 1 {
		t.Fatalf("stale event must not mail, got %d messages", len(queue.messages))
	}
}

func TestReconcileNonApprovedDiscarded(t *testing.T) {
	uc, queue := newReconcileFixture(t, model.OrderStatusUploaded)
	gw := gatewayStub{name: "payway", approved: map[string]bool{"paid": true}}

	if err := uc.Reconcile(context.Background(), gw, "inv-1", "ord-1", "pending"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.messages) != 0 {
		t.Fatalf("interim status must not mail, got %d messages", len(queue.messages))
	}
}

func TestReconcileUnknownOrderAcknowledged(t *testing.T) {
	uc, _ := newReconcileFixture(t, model.OrderStatusUploaded)
	gw := gatewayStub{name: "payway", approved: map[string]bool{"paid": true}}

	if err := uc.Reconcile(context.Background(), gw, "inv-1", "missing", "paid"); err != nil {
		t.Fatalf("unknown order must be acknowledged, got %v", err)
	}
	if err := uc.Reconcile(context.Background(), gw, "inv-1", "", "paid"); err != nil {
		t.Fatalf("empty order reference must be acknowledged, got %v", err)
	}
}

func TestReconcileRejectedOrderAcknowledged(t *testing.T) {
	uc, queue := newReconcileFixture(t, model.OrderStatusRejected)
	gw := gatewayStub{name: "payway", approved: map[string]bool{"paid": true}}

	if err := uc.Reconcile(context.Background(), gw, "inv-1", "ord-1", "paid"); err != nil {
		t.Fatalf("payment for a rejected order must be acknowledged, got %v", err)
	}
	if len(queue.messages) != 0 {
		t.Fatalf("rejected order must not mail, got %d messages", len(queue.messages))
	}
}

func TestReconcileFullQueueDoesNotFail(t *testing.T) {
	lifecycle, _ := seededLifecycle(model.OrderStatusUploaded)
	queue := &queueStub{reject: true}
	uc := NewReconcileUseCase(lifecycle, queue, slog.Default())
	gw := gatewayStub{name: "payway", approved: map[string]bool{"paid": true}}

	if err := uc.Reconcile(context.Background(), gw, "inv-1", "ord-1", "paid"); err != nil {
		t.Fatalf("a full queue must not fail reconciliation, got %v", err)
	}
}
