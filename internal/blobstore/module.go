package blobstore

import (
	"go.uber.org/fx"

	"github.com/ecutune/ecutune/internal/config"
)

// Module exposes the artifact store to the fx graph.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Config *config.Config
}

func newStore(p storeParams) (Store, error) {
	return NewDiskStore(p.Config.UploadDir, p.Config.PublicBaseURL, p.Config.MaxUploadBytes, p.Config.AllowedExtensions)
}
