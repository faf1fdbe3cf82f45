package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "sluice"

var (
	durationBuckets = []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5}

	operationDurationHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Name:      "operation_duration_seconds",
		Buckets:   durationBuckets,
	}, []string{"op"})

	ledgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: "ledger",
		Name:      "operations_total",
	}, []string{"op", "status"})

	valueMoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: "ledger",
		Name:      "value_moved_total",
		Help:      "Units moved by the ledger, by direction (deposit, to_recipient, to_sender, reversed).",
	}, []string{"direction"})

	eventsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: "events",
		Name:      "appended_total",
	})

	eventsTrimmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: "events",
		Name:      "trimmed_total",
	})

	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: "events",
		Name:      "notify_failures_total",
	})

	storageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: "storage",
		Name:      "op_seconds",
		Buckets:   durationBuckets,
	}, []string{"op"})

	storageBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: "storage",
		Name:      "bytes_total",
	}, []string{"op"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }

func TrackDuration(operation string) func() {
	start := time.Now()
	return func() {
		operationDurationHistogram.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// TrackStatus counts a finished ledger operation by its outcome label.
func TrackStatus(operation, status string) {
	ledgerOperations.WithLabelValues(operation, status).Inc()
}

func AddValueMoved(direction string, amount int64) {
	if amount > 0 {
		valueMoved.WithLabelValues(direction).Add(float64(amount))
	}
}

func EventAppended()      { eventsAppended.Inc() }
func EventNotifyFailed()  { eventsFailed.Inc() }
func EventsTrimmed(n int) { eventsTrimmed.Add(float64(n)) }

// Storage implements pebblestore.MetricsHook.
type Storage struct{}

func (Storage) ObserveWrite(elapsed time.Duration, bytes int) {
	storageLatency.WithLabelValues("write").Observe(elapsed.Seconds())
	storageBytes.WithLabelValues("write").Add(float64(bytes))
}

func (Storage) ObserveRead(elapsed time.Duration, bytes int) {
	storageLatency.WithLabelValues("read").Observe(elapsed.Seconds())
	storageBytes.WithLabelValues("read").Add(float64(bytes))
}

func (Storage) ObserveBatchCommit(elapsed time.Duration, _ int, bytes int) {
	storageLatency.WithLabelValues("batch_commit").Observe(elapsed.Seconds())
	storageBytes.WithLabelValues("batch_commit").Add(float64(bytes))
}
