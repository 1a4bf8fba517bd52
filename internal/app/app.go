package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/ecutune/ecutune/internal/adapter/mail"
	"github.com/ecutune/ecutune/internal/adapter/payment"
	"github.com/ecutune/ecutune/internal/blobstore"
	"github.com/ecutune/ecutune/internal/config"
	"github.com/ecutune/ecutune/internal/usecase"
	"github.com/ecutune/ecutune/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newFacade,
		newHTTPServer,
		newNotifier,
		func(n *worker.Notifier) usecase.NotificationQueue { return n },
		newPaymentVerifier,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Orders    *usecase.OrderUseCase
	Lifecycle *usecase.LifecycleUseCase
	Reconcile *usecase.ReconcileUseCase
	Providers *payment.Registry
	Blobs     blobstore.Store
	Queue     usecase.NotificationQueue
	Config    *config.Config
}

func newFacade(p facadeParams) *TuningFacade {
	return NewTuningFacade(p.Orders, p.Lifecycle, p.Reconcile, p.Providers, p.Blobs, p.Queue, FacadeParams{
		AdminEmail:    p.Config.AdminEmail,
		PriceAmount:   p.Config.PriceAmount,
		PriceCurrency: p.Config.PriceCurrency,
	})
}

type notifierParams struct {
	fx.In

	Sender mail.Sender
	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) *worker.Notifier {
	return worker.NewNotifier(p.Sender, p.Config.NotifyQueueSize, p.Logger)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type verifierParams struct {
	fx.In

	Facade *TuningFacade
	Config *config.Config
	Logger *slog.Logger
}

func newPaymentVerifier(p verifierParams) *worker.PaymentVerifier {
	return worker.NewPaymentVerifier(
		p.Facade,
		p.Config.VerifyInterval,
		p.Config.VerifyBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Verifier   *worker.PaymentVerifier
	Notifier   *worker.Notifier
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting ecutune", slog.String("addr", p.Server.Addr))
			p.Notifier.Start(ctx)
			p.Verifier.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Verifier.Stop()
			p.Notifier.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("ecutune stopped")
			return nil
		},
	})
}
