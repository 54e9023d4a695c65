package repos

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stoik/internal/config"
	applog "stoik/internal/log"
)

// Open selects the engine named by cfg.StoreBackend. When it cannot be opened and
// cfg.StoreFallback is set, the in-memory engine is used instead. The returned name
// is the engine actually in use.
func Open(ctx context.Context, cfg config.Config) (*Store, string, error) {
	b, err := openBackend(ctx, cfg)
	if err == nil {
		return New(b), cfg.StoreBackend, nil
	}
	if !cfg.StoreFallback || cfg.StoreBackend == config.BackendMemory {
		return nil, "", err
	}
	applog.L().Warn("store.fallback",
		zap.String("backend", cfg.StoreBackend),
		zap.Error(err),
	)
	return New(NewMemory()), config.BackendMemory, nil
}

func openBackend(ctx context.Context, cfg config.Config) (Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendSQLite:
		return OpenDB(cfg.DBDSN)
	case config.BackendMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
