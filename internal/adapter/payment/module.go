package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ecutune/ecutune/internal/config"
)

// Module builds the provider registry from configuration. Providers without
// a configured address are simply not registered.
var Module = fx.Provide(newRegistry)

type registryParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newRegistry(p registryParams) (*Registry, error) {
	var providers []Provider

	if p.Config.PaywayAddress != "" {
		payway, err := NewPaywayClient(p.Config.PaywayAddress, p.Config.PaywayAPIKey, p.Logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, payway)
	}

	if p.Config.UnipayAddress != "" {
		unipay, err := NewUnipayClient(p.Config.UnipayAddress, p.Config.UnipayAPIKey, p.Logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, unipay)
	}

	if len(providers) == 0 {
		p.Logger.Warn("no payment providers configured, intents will be rejected")
	}

	return NewRegistry(providers...), nil
}
