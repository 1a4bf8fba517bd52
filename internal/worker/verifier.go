package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ecutune/ecutune/internal/domain/model"
)

// VerificationFacade exposes the subset of application functionality required
// by the verifier.
type VerificationFacade interface {
	OrdersAwaitingVerification(ctx context.Context, limit int) ([]model.Order, error)
	VerifyPayment(ctx context.Context, order model.Order) error
}

// PaymentVerifier periodically pulls orders that opened a payment intent but
// never received the provider callback, and asks the provider for the
// authoritative status. It is the safety net behind lost webhooks.
type PaymentVerifier struct {
	facade       VerificationFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentVerifier constructs the verifier worker pool.
func NewPaymentVerifier(facade VerificationFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentVerifier {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PaymentVerifier{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background verification.
func (p *PaymentVerifier) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentVerifier) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentVerifier) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentVerifier) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.OrdersAwaitingVerification(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch orders awaiting verification failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *PaymentVerifier) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.facade.VerifyPayment(ctx, order); err != nil {
				p.logger.Error("payment verification failed",
					slog.String("order", order.ID),
					slog.String("error", err.Error()))
			}
		}
	}
}
