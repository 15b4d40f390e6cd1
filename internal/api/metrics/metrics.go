// Package metrics defines the Prometheus metrics of the account service and
// the Recorder that feeds them from the core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// OperationsTotal counts account lifecycle operations.
// Labels:
//   - operation: e.g. "register", "verify_email", "upload_picture"
//   - outcome: "ok" or the error kind (e.g. "conflict", "unavailable")
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of account operations, by outcome.",
	},
	[]string{"operation", "outcome"},
)

// OperationDuration measures how long each operation takes, including calls
// to the database and object store.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of account operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// InconsistenciesTotal counts detected divergences between the account
// record, asset metadata and the object store.
// Label:
//   - kind: "orphaned_object", "unlinked_asset", "dangling_pointer",
//     "missing_verification_token"
var InconsistenciesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inconsistencies_total",
		Help:      "Total number of detected cross-store inconsistencies.",
	},
	[]string{"kind"},
)

// Recorder implements ports.Observer on top of the package metrics.
type Recorder struct {
	operations      *prometheus.CounterVec
	durations       *prometheus.HistogramVec
	inconsistencies *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	return &Recorder{
		operations:      OperationsTotal,
		durations:       OperationDuration,
		inconsistencies: InconsistenciesTotal,
	}
}

func (r *Recorder) Operation(name, outcome string, elapsed time.Duration) {
	r.operations.WithLabelValues(name, outcome).Inc()
	r.durations.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (r *Recorder) Inconsistency(kind string) {
	r.inconsistencies.WithLabelValues(kind).Inc()
}
