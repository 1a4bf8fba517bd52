package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ecutune/ecutune/internal/domain/model"
	testhelpers "github.com/ecutune/ecutune/internal/test"
)

func TestNewPaymentVerifierDefaults(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	v := NewPaymentVerifier(&testhelpers.VerificationFacadeStub{}, time.Second, 0, 0, logger)
	if v.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", v.batchSize)
	}
	if v.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", v.workers)
	}
}

func TestPaymentVerifierVerifiesOrders(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := &testhelpers.VerificationFacadeStub{
		Batches: [][]model.Order{{{ID: "ord-1", Status: model.OrderStatusUploaded}}},
	}
	v := NewPaymentVerifier(facade, 10*time.Millisecond, 1, 1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		verified := len(facade.Verified) > 0
		facade.Unlock()
		if verified {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for payment verification")
		case <-time.After(10 * time.Millisecond):
		}
	}

	v.Stop()
	facade.Lock()
	defer facade.Unlock()
	if facade.Verified[0].ID != "ord-1" {
		t.Fatalf("unexpected verified order %+v", facade.Verified[0])
	}
}

func TestPaymentVerifierStopsCleanly(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	v := NewPaymentVerifier(&testhelpers.VerificationFacadeStub{}, 10*time.Millisecond, 1, 2, logger)

	v.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	v.Stop()
	// A second Stop must be a no-op.
	v.Stop()
}
