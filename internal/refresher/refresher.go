// Package refresher keeps the catalog snapshot warm so request paths
// rarely pay for a load.
package refresher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/korpa/basket-service/internal/catalog"
)

// CatalogRefresher periodically reloads the catalog snapshot before its
// TTL expires. A failed reload leaves the previous snapshot serving.
type CatalogRefresher struct {
	cache    *catalog.Cache
	logger   *zerolog.Logger
	interval time.Duration
	stopChan chan struct{}
}

// NewCatalogRefresher creates a refresher over the given cache.
func NewCatalogRefresher(cache *catalog.Cache, logger *zerolog.Logger, interval time.Duration) *CatalogRefresher {
	return &CatalogRefresher{
		cache:    cache,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic refresh loop
func (r *CatalogRefresher) Start(ctx context.Context) {
	r.logger.Info().
		Dur("interval", r.interval).
		Msg("Starting catalog refresher")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Catalog refresher stopping (context cancelled)")
			return
		case <-r.stopChan:
			r.logger.Info().Msg("Catalog refresher stopping (stop signal)")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop signals the refresher to stop
func (r *CatalogRefresher) Stop() {
	close(r.stopChan)
}

func (r *CatalogRefresher) refresh(ctx context.Context) {
	start := time.Now()
	if err := r.cache.Refresh(ctx); err != nil {
		r.logger.Error().Err(err).Msg("Failed to refresh catalog snapshot")
		return
	}

	f := r.cache.GetFreshness()
	r.logger.Debug().
		Int("products", f.Products).
		Int("stores", f.Stores).
		Dur("duration", time.Since(start)).
		Msg("Catalog snapshot refreshed")
}
