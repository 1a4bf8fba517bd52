package di

import (
	"go.uber.org/fx"

	"github.com/ecutune/ecutune/internal/adapter/mail"
	"github.com/ecutune/ecutune/internal/adapter/payment"
	"github.com/ecutune/ecutune/internal/app"
	"github.com/ecutune/ecutune/internal/blobstore"
	"github.com/ecutune/ecutune/internal/config"
	"github.com/ecutune/ecutune/internal/logger"
	"github.com/ecutune/ecutune/internal/pkg/auth"
	"github.com/ecutune/ecutune/internal/server/http/router"
	"github.com/ecutune/ecutune/internal/storage/postgres"
	"github.com/ecutune/ecutune/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		blobstore.Module,
		payment.Module,
		mail.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
