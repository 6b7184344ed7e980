package basket

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/korpa/basket-service/internal/catalog"
)

// Evaluator runs basket comparisons against a price catalog. It is
// stateless between requests and safe for concurrent use.
type Evaluator struct {
	resolver catalog.Resolver
	config   *Config
	metrics  *MetricsRecorder
	logger   zerolog.Logger
}

// NewEvaluator creates an evaluator backed by the given resolver.
func NewEvaluator(resolver catalog.Resolver, config *Config) *Evaluator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Evaluator{
		resolver: resolver,
		config:   config,
		metrics:  NewMetricsRecorder(),
		logger:   log.With().Str("component", "basket-evaluator").Logger(),
	}
}

// Evaluate validates the request, resolves the catalog once, and prices
// the basket under both scenarios. The two evaluators are pure
// functions over the same resolved snapshot, so they run concurrently
// and cannot disagree about a price.
func (e *Evaluator) Evaluate(ctx context.Context, req *Request) (*Comparison, error) {
	start := time.Now()

	if err := req.Validate(e.config.MaxBasketItems); err != nil {
		e.metrics.RecordEvaluationError("validation")
		return nil, err
	}
	e.metrics.RecordBasketSize(len(req.Lines))

	book, stores, err := e.resolve(ctx, req)
	if err != nil {
		e.metrics.RecordEvaluationError("catalog")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := catalog.NewStoreFilter(req.EnabledStoreIDs)
	now := time.Now()

	var (
		single []*ScenarioResult
		multi  *ScenarioResult
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		single = EvaluateSingleStore(book, stores, filter, req.Lines, now)
		e.metrics.RecordEvaluationDuration("single_store", time.Since(t))
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		multi = EvaluateMixAndMatch(book, filter, req.Lines, now)
		e.metrics.RecordEvaluationDuration("mix_and_match", time.Since(t))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := Rank(single, book, stores, filter)

	e.recordOutcome(req, single, ranked)
	e.metrics.RecordEvaluationDuration("total", time.Since(start))

	e.logger.Debug().
		Int("lines", len(req.Lines)).
		Int("stores_compared", len(single)).
		Int("full_coverage", len(ranked.Full)).
		Int64("mix_and_match_cents", multi.TotalCents).
		Dur("duration", time.Since(start)).
		Msg("Basket evaluated")

	return &Comparison{
		SingleStore: single,
		MultiStore:  multi,
		Ranked:      ranked,
	}, nil
}

// resolve fetches the latest prices for the requested products and the
// store directory in one resolver call, so both views come from the
// same catalog snapshot.
func (e *Evaluator) resolve(ctx context.Context, req *Request) (catalog.PriceBook, []catalog.StoreMeta, error) {
	start := time.Now()

	productIDs := make([]string, 0, len(req.Lines))
	seen := make(map[string]struct{}, len(req.Lines))
	for _, line := range req.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		productIDs = append(productIDs, line.ProductID)
	}

	book, stores, err := e.resolver.ResolveCatalog(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving catalog: %w", err)
	}

	e.metrics.RecordResolveDuration(time.Since(start))
	return book, stores, nil
}

// recordOutcome feeds the comparison-shape metrics.
func (e *Evaluator) recordOutcome(req *Request, single []*ScenarioResult, ranked Ranked) {
	e.metrics.RecordStoresCompared(len(single))

	best := bestResult(ranked)
	if best != nil && len(req.Lines) > 0 {
		e.metrics.RecordCoverageRatio(float64(best.FoundItems) / float64(len(req.Lines)))
	}
}

// bestResult returns the top-ranked single-store result, preferring the
// full-coverage bucket.
func bestResult(ranked Ranked) *ScenarioResult {
	if len(ranked.Full) > 0 {
		return ranked.Full[0]
	}
	if len(ranked.Partial) > 0 {
		return ranked.Partial[0]
	}
	return nil
}
