package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/ecutune/ecutune/internal/app"
	"github.com/ecutune/ecutune/internal/config"
	"github.com/ecutune/ecutune/internal/domain/repository"
	"github.com/ecutune/ecutune/internal/storage/postgres"
	"github.com/ecutune/ecutune/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:      ":0",
		DatabaseURI:     "postgres://stub",
		AdminSecret:     "s3cret",
		UploadDir:       t.TempDir(),
		MaxUploadBytes:  1 << 20,
		PriceAmount:     9900,
		PriceCurrency:   "EUR",
		VerifyInterval:  time.Millisecond,
		VerifyBatch:     1,
		WorkerPoolSize:  1,
		NotifyQueueSize: 1,
		ShutdownTimeout: time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orderRepo := test.NewOrderRepositoryStub()

	var facade *app.TuningFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(orderRepo)),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected tuning facade instance")
	}
}
