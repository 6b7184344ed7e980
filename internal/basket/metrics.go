package basket

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// evaluationDuration tracks the time taken for basket evaluation.
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "basket_evaluation_duration_seconds",
		Help:    "Time taken for basket evaluation by scenario",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}, []string{"scenario"}) // scenario: single_store, mix_and_match, total

	// evaluationErrors tracks failed evaluations.
	evaluationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_evaluation_errors_total",
		Help: "Total number of evaluation errors by kind",
	}, []string{"kind"}) // kind: validation, catalog

	// basketSize tracks the distribution of basket sizes.
	basketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "basket_items_count",
		Help:    "Number of lines in evaluation requests",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// coverageRatio tracks the coverage of the best single-store result.
	coverageRatio = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "basket_best_coverage_ratio",
		Help:    "Coverage ratio of the best single-store result",
		Buckets: []float64{0.5, 0.7, 0.8, 0.9, 0.95, 1.0},
	})

	// resolveDuration tracks catalog resolution time.
	resolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "basket_catalog_resolve_duration_seconds",
		Help:    "Time taken to resolve the price catalog for a basket",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// storesCompared tracks how many stores produced a result.
	storesCompared = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "basket_stores_compared_count",
		Help:    "Number of stores with at least one basket match",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
)

// MetricsRecorder provides methods to record evaluation metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordEvaluationDuration records the duration of an evaluation stage.
func (m *MetricsRecorder) RecordEvaluationDuration(scenario string, d time.Duration) {
	evaluationDuration.WithLabelValues(scenario).Observe(d.Seconds())
}

// RecordEvaluationError records a failed evaluation.
func (m *MetricsRecorder) RecordEvaluationError(kind string) {
	evaluationErrors.WithLabelValues(kind).Inc()
}

// RecordBasketSize records the number of lines in a request.
func (m *MetricsRecorder) RecordBasketSize(size int) {
	basketSize.Observe(float64(size))
}

// RecordCoverageRatio records the best single-store coverage.
func (m *MetricsRecorder) RecordCoverageRatio(ratio float64) {
	coverageRatio.Observe(ratio)
}

// RecordResolveDuration records catalog resolution time.
func (m *MetricsRecorder) RecordResolveDuration(d time.Duration) {
	resolveDuration.Observe(d.Seconds())
}

// RecordStoresCompared records how many stores produced results.
func (m *MetricsRecorder) RecordStoresCompared(count int) {
	storesCompared.Observe(float64(count))
}
