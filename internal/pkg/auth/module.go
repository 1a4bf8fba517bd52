package auth

import (
	"github.com/ecutune/ecutune/internal/config"
	"go.uber.org/fx"
)

// Module provides the token strategy via fx. An empty AUTH_SECRET yields a
// nil strategy: open mode, where callers trust the submitted identity.
var Module = fx.Provide(newTokenStrategy)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	if p.Config.AuthSecret == "" {
		return nil
	}
	return NewHMACStrategy(p.Config.AuthSecret, Options{})
}
