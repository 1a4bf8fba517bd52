package router

import (
	"go.uber.org/fx"

	"github.com/ecutune/ecutune/internal/app"
	"github.com/ecutune/ecutune/internal/server/http/handlers"
)

// Module registers HTTP router construction for the fx runtime.
var Module = fx.Provide(
	func(f *app.TuningFacade) handlers.TuningFacade { return f },
	Setup,
)
