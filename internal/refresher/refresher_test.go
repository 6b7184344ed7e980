package refresher

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/korpa/basket-service/internal/catalog"
)

func newCountingCache(calls *atomic.Int32) *catalog.Cache {
	loader := func(ctx context.Context) (*catalog.Snapshot, error) {
		calls.Add(1)
		return &catalog.Snapshot{
			Book:     catalog.PriceBook{},
			LoadedAt: time.Now(),
		}, nil
	}
	return catalog.NewCache(loader, catalog.DefaultCacheConfig())
}

func TestRefresherReloadsPeriodically(t *testing.T) {
	var calls atomic.Int32
	cache := newCountingCache(&calls)
	logger := zerolog.Nop()

	r := NewCatalogRefresher(cache, &logger, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	r.Stop()
}

func TestRefresherStopsOnContextCancel(t *testing.T) {
	var calls atomic.Int32
	cache := newCountingCache(&calls)
	logger := zerolog.Nop()

	r := NewCatalogRefresher(cache, &logger, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after context cancellation")
	}
}
