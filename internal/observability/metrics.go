package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	retrievalSearchDuration prometheus.Histogram
	retrievalRecallDuration prometheus.Histogram
	memoryWriteDuration     prometheus.Histogram
	memoryEntriesTotal      prometheus.Gauge

	vectorErrorsTotal  *prometheus.CounterVec
	vectorHealthy      prometheus.Gauge
	budgeterDroppedSum prometheus.Counter
	prunedTotal        prometheus.Counter
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			retrievalSearchDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "retrieval_search_duration_seconds",
					Help:    "Retrieval search duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			retrievalRecallDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "retrieval_recall_duration_seconds",
					Help:    "Retrieval recall (search + pack) duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			memoryWriteDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "memory_write_duration_seconds",
					Help:    "Memory create/update duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			memoryEntriesTotal: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "memory_entries_total",
					Help: "Total memory records stored.",
				},
			),
			vectorErrorsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "vector_errors_total",
					Help: "Total vector store failures by operation.",
				},
				[]string{"op"},
			),
			vectorHealthy: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "vector_healthy",
					Help: "Vector store health flag (1 healthy, 0 degraded).",
				},
			),
			budgeterDroppedSum: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "budgeter_dropped_total",
					Help: "Total items dropped by the context budgeter.",
				},
			),
			prunedTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "memories_pruned_total",
					Help: "Total memories removed by pruning.",
				},
			),
		}

		prometheus.MustRegister(
			m.retrievalSearchDuration,
			m.retrievalRecallDuration,
			m.memoryWriteDuration,
			m.memoryEntriesTotal,
			m.vectorErrorsTotal,
			m.vectorHealthy,
			m.budgeterDroppedSum,
			m.prunedTotal,
		)

		m.vectorHealthy.Set(1)
		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func RecordRetrievalSearch(duration time.Duration) {
	getMetrics().retrievalSearchDuration.Observe(duration.Seconds())
}

func RecordRetrievalRecall(duration time.Duration) {
	getMetrics().retrievalRecallDuration.Observe(duration.Seconds())
}

func RecordMemoryWrite(duration time.Duration) {
	getMetrics().memoryWriteDuration.Observe(duration.Seconds())
}

func SetMemoryEntries(total int) {
	getMetrics().memoryEntriesTotal.Set(float64(total))
}

func RecordVectorError(op string) {
	getMetrics().vectorErrorsTotal.WithLabelValues(op).Inc()
}

func SetVectorHealthy(healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	getMetrics().vectorHealthy.Set(value)
}

func RecordBudgeterDrop(dropped int) {
	if dropped > 0 {
		getMetrics().budgeterDroppedSum.Add(float64(dropped))
	}
}

func RecordPruned(count int) {
	if count > 0 {
		getMetrics().prunedTotal.Add(float64(count))
	}
}
