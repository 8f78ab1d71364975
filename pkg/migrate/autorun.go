package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on API boot, but only in dev
// with STOREFRONT_AUTO_MIGRATE set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	pool, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("migrate: pool handle: %w", err)
	}
	p, err := NewProvider(pool, "")
	if err != nil {
		return err
	}

	ctx = logg.With(ctx, "env", cfg.App.Env, "source", "embedded")
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: auto up: %w", err)
	}
	for _, res := range results {
		logg.Info(logg.With(ctx, "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds()), "migration applied")
	}
	logg.Info(logg.With(ctx, "applied", len(results)), "schema up to date")
	return nil
}
