package api

import (
	"github.com/kbristol/sift/internal/config"
	"github.com/kbristol/sift/internal/infrastructure"
	"github.com/kbristol/sift/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Inference: infra.Inference,
		},
		Pagination: cfg.API.Pagination,
	}
}
