package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ecutune/ecutune/internal/adapter/mail"
	"github.com/ecutune/ecutune/internal/usecase"
)

// Notifier drains queued notifications into the mail sender on a single
// background goroutine, keeping SMTP latency out of request handlers.
// It satisfies usecase.NotificationQueue.
type Notifier struct {
	sender mail.Sender
	logger *slog.Logger

	queue  chan usecase.Notification
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewNotifier constructs the notifier with a bounded queue.
func NewNotifier(sender mail.Sender, queueSize int, logger *slog.Logger) *Notifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Notifier{
		sender: sender,
		logger: logger,
		queue:  make(chan usecase.Notification, queueSize),
	}
}

// Enqueue accepts a notification without blocking. A full queue drops the
// message and reports false; mail is best effort.
func (n *Notifier) Enqueue(msg usecase.Notification) bool {
	select {
	case n.queue <- msg:
		return true
	default:
		return false
	}
}

// Start launches the delivery loop.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	n.wg.Add(1)
	go n.run(runCtx)
}

// Stop drains nothing further and waits for the in-flight send to finish.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.mu.Unlock()

	n.wg.Wait()
}

func (n *Notifier) run(ctx context.Context) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-n.queue:
			if err := n.sender.Send(msg.To, msg.Subject, msg.Body); err != nil {
				n.logger.Error("notification send failed",
					slog.String("to", msg.To),
					slog.String("subject", msg.Subject),
					slog.String("error", err.Error()))
			}
		}
	}
}
