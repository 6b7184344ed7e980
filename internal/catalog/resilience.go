package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// BreakerState represents the state of the load circuit breaker.
type BreakerState int

const (
	// BreakerClosed allows loads to pass through.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects loads immediately.
	BreakerOpen

	// BreakerHalfOpen allows a limited number of probe loads.
	BreakerHalfOpen
)

// String returns the string representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds circuit breaker tuning.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before opening.
	MaxFailures int

	// ResetTimeout is how long to wait before probing again.
	ResetTimeout time.Duration

	// HalfOpenMaxCalls is the number of probes allowed in half-open state.
	HalfOpenMaxCalls int
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:      5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// Breaker implements the circuit breaker pattern for catalog loads, so
// a failing database does not get hammered by every comparison request.
type Breaker struct {
	mu              sync.Mutex
	state           BreakerState
	failureCount    int
	successCount    int // used in half-open state
	lastFailureTime time.Time
	config          BreakerConfig
	logger          zerolog.Logger
}

// NewBreaker creates a closed circuit breaker.
func NewBreaker(config BreakerConfig, logger zerolog.Logger) *Breaker {
	return &Breaker{
		state:  BreakerClosed,
		config: config,
		logger: logger,
	}
}

// Allow reports whether a load attempt should proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if time.Since(b.lastFailureTime) >= b.config.ResetTimeout {
			b.state = BreakerHalfOpen
			b.successCount = 0
			b.logger.Info().Msg("Catalog breaker transitioning to half-open")
			return true
		}
		return false
	case BreakerHalfOpen:
		return b.successCount < b.config.HalfOpenMaxCalls
	default:
		return false
	}
}

// RecordSuccess records a successful load.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failureCount = 0
	case BreakerHalfOpen:
		b.successCount++
		if b.successCount >= b.config.HalfOpenMaxCalls {
			b.state = BreakerClosed
			b.failureCount = 0
			b.successCount = 0
			b.logger.Info().Msg("Catalog breaker closing after recovery")
		}
	}
}

// RecordFailure records a failed load.
func (b *Breaker) RecordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = time.Now()

	switch b.state {
	case BreakerClosed:
		if b.failureCount >= b.config.MaxFailures {
			b.state = BreakerOpen
			b.logger.Warn().Err(err).
				Int("failures", b.failureCount).
				Dur("reset_timeout", b.config.ResetTimeout).
				Msg("Catalog breaker opening after max failures")
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.successCount = 0
		b.logger.Warn().Err(err).Msg("Catalog breaker re-opening after probe failure")
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker back to closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failureCount = 0
	b.successCount = 0
}

// WarmupGate blocks comparisons until the first catalog load completes,
// so early requests wait instead of failing with an empty book.
type WarmupGate struct {
	mu       sync.RWMutex
	ready    bool
	warmedCh chan struct{}
}

// NewWarmupGate creates a not-ready gate.
func NewWarmupGate() *WarmupGate {
	return &WarmupGate{warmedCh: make(chan struct{})}
}

// Wait blocks until warmup completes or the context is cancelled.
// Returns false on cancellation.
func (g *WarmupGate) Wait(ctx context.Context) bool {
	g.mu.RLock()
	ready := g.ready
	g.mu.RUnlock()
	if ready {
		return true
	}

	select {
	case <-g.warmedCh:
		return true
	case <-ctx.Done():
		return false
	}
}

// Ready marks warmup as complete.
func (g *WarmupGate) Ready() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.ready {
		g.ready = true
		close(g.warmedCh)
	}
}

// IsReady reports completion without blocking.
func (g *WarmupGate) IsReady() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ready
}
