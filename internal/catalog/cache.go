package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Snapshot is an immutable view of the whole catalog: every product's
// latest price per store plus store metadata. It is built off-lock and
// swapped atomically; readers never see a half-loaded catalog, which
// gives the all-or-nothing read the evaluators require.
type Snapshot struct {
	Book     PriceBook
	Stores   []StoreMeta
	LoadedAt time.Time
}

// Loader produces a fresh catalog snapshot. The pg-backed
// implementation lives in loadSnapshot; tests inject their own.
type Loader func(ctx context.Context) (*Snapshot, error)

// CacheConfig tunes the snapshot cache.
type CacheConfig struct {
	// TTL is how long a snapshot remains fresh.
	TTL time.Duration

	// LoadTimeout bounds a single load, independent of request contexts.
	LoadTimeout time.Duration
}

// DefaultCacheConfig returns the default cache settings.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:         15 * time.Minute,
		LoadTimeout: 30 * time.Second,
	}
}

// Cache is an injectable TTL cache over catalog snapshots with
// singleflight loads, a circuit breaker on load failures and a warmup
// gate. The comparison core stays cache-agnostic: it sees only the
// Resolver interface.
type Cache struct {
	loader  Loader
	config  CacheConfig
	breaker *Breaker
	gate    *WarmupGate
	logger  zerolog.Logger

	snapshot atomic.Value // *Snapshot

	loadMu   sync.Mutex
	loading  bool
	loadDone chan struct{}
	loadErr  error
}

// NewCache creates a cache over the given loader.
func NewCache(loader Loader, config CacheConfig) *Cache {
	logger := log.With().Str("component", "catalog_cache").Logger()
	return &Cache{
		loader:  loader,
		config:  config,
		breaker: NewBreaker(DefaultBreakerConfig(), logger),
		gate:    NewWarmupGate(),
		logger:  logger,
	}
}

// NewCachedResolver wraps a PGResolver in a snapshot cache and returns
// it as a Resolver.
func NewCachedResolver(pg *PGResolver, config CacheConfig) *Cache {
	return NewCache(loadSnapshot(pg), config)
}

// loadSnapshot builds a Loader that pulls the full catalog through a
// PGResolver in one consistent pass.
func loadSnapshot(pg *PGResolver) Loader {
	return func(ctx context.Context) (*Snapshot, error) {
		stores, err := pg.ListStores(ctx)
		if err != nil {
			return nil, err
		}

		book, err := pg.resolveAllLatestPrices(ctx)
		if err != nil {
			return nil, err
		}

		return &Snapshot{Book: book, Stores: stores, LoadedAt: time.Now()}, nil
	}
}

// Get returns the current snapshot, loading one if none exists or the
// TTL has elapsed. Concurrent callers share a single load.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	if s := c.current(); s != nil && time.Since(s.LoadedAt) <= c.config.TTL {
		return s, nil
	}
	return c.load(ctx)
}

// Refresh forces a reload regardless of TTL. Used by the background
// refresher; the old snapshot keeps serving until the new one is ready
// (last write wins).
func (c *Cache) Refresh(ctx context.Context) error {
	_, err := c.load(ctx)
	return err
}

// Invalidate drops the current snapshot so the next Get reloads.
func (c *Cache) Invalidate() {
	c.snapshot.Store((*Snapshot)(nil))
}

// Warmup performs the initial load and opens the gate.
func (c *Cache) Warmup(ctx context.Context) error {
	start := time.Now()
	if _, err := c.load(ctx); err != nil {
		return fmt.Errorf("catalog warmup failed: %w", err)
	}
	c.gate.Ready()
	c.logger.Info().Dur("duration", time.Since(start)).Msg("Catalog warmup completed")
	return nil
}

// WaitReady blocks until warmup has completed or ctx is cancelled.
func (c *Cache) WaitReady(ctx context.Context) bool {
	return c.gate.Wait(ctx)
}

// IsHealthy reports whether the cache can serve comparisons.
func (c *Cache) IsHealthy(ctx context.Context) bool {
	if c.breaker.State() == BreakerOpen {
		return false
	}
	if !c.gate.IsReady() {
		return false
	}
	return c.current() != nil
}

// Freshness describes the loaded snapshot for health reporting.
type Freshness struct {
	LoadedAt time.Time `json:"loadedAt"`
	IsStale  bool      `json:"isStale"`
	Products int       `json:"products"`
	Stores   int       `json:"stores"`
}

// GetFreshness reports the current snapshot's age and size.
func (c *Cache) GetFreshness() Freshness {
	s := c.current()
	if s == nil {
		return Freshness{IsStale: true}
	}
	return Freshness{
		LoadedAt: s.LoadedAt,
		IsStale:  time.Since(s.LoadedAt) > c.config.TTL,
		Products: len(s.Book),
		Stores:   len(s.Stores),
	}
}

// ResolveLatestPrices implements Resolver from the cached snapshot.
func (c *Cache) ResolveLatestPrices(ctx context.Context, productIDs []string) (PriceBook, error) {
	s, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filterBook(s.Book, productIDs), nil
}

// ListStores implements Resolver from the cached snapshot.
func (c *Cache) ListStores(ctx context.Context) ([]StoreMeta, error) {
	s, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Stores, nil
}

// ResolveCatalog implements Resolver with a single snapshot read: the
// returned book and store directory always come from the same load,
// even if the TTL expires between calls.
func (c *Cache) ResolveCatalog(ctx context.Context, productIDs []string) (PriceBook, []StoreMeta, error) {
	s, err := c.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return filterBook(s.Book, productIDs), s.Stores, nil
}

// filterBook narrows a full catalog book to the requested products.
func filterBook(full PriceBook, productIDs []string) PriceBook {
	book := make(PriceBook, len(productIDs))
	for _, id := range productIDs {
		if offers, ok := full[id]; ok {
			book[id] = offers
		}
	}
	return book
}

// current returns the loaded snapshot, or nil.
func (c *Cache) current() *Snapshot {
	v := c.snapshot.Load()
	if v == nil {
		return nil
	}
	s, _ := v.(*Snapshot)
	return s
}

// load performs a guarded, deduplicated snapshot load. The load runs on
// a dedicated context so one cancelled request does not fail the load
// for everyone sharing it.
func (c *Cache) load(ctx context.Context) (*Snapshot, error) {
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("catalog load rejected: circuit breaker %s", c.breaker.State())
	}

	c.loadMu.Lock()
	if c.loading {
		done := c.loadDone
		c.loadMu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		c.loadMu.Lock()
		err := c.loadErr
		c.loadMu.Unlock()
		if err != nil {
			return nil, err
		}
		if s := c.current(); s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("catalog load produced no snapshot")
	}

	c.loading = true
	c.loadDone = make(chan struct{})
	c.loadMu.Unlock()

	loadCtx, cancel := context.WithTimeout(context.Background(), c.config.LoadTimeout)
	defer cancel()

	start := time.Now()
	snapshot, err := c.loader(loadCtx)

	c.loadMu.Lock()
	c.loading = false
	c.loadErr = err
	close(c.loadDone)
	c.loadMu.Unlock()

	if err != nil {
		c.breaker.RecordFailure(err)
		return nil, fmt.Errorf("catalog load failed: %w", err)
	}

	c.breaker.RecordSuccess()
	c.snapshot.Store(snapshot)

	c.logger.Info().
		Int("products", len(snapshot.Book)).
		Int("stores", len(snapshot.Stores)).
		Dur("duration", time.Since(start)).
		Msg("Loaded catalog snapshot")

	return snapshot, nil
}
