// Package metrics holds the Prometheus instruments for ledger operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeInvalidInput = "invalid_input"
	OutcomeEmpty        = "empty"
	OutcomeError        = "error"
)

// Metrics provides observability for the ledger service.
type Metrics struct {
	// Operation results by operation name and outcome
	Operations *prometheus.CounterVec

	// Records written by kind (debt, escrow, crop_insurance, insurance_claim)
	RecordsCreated *prometheus.CounterVec

	// Operation latency by operation name
	OperationLatency *prometheus.HistogramVec
}

// New registers the ledger metrics on reg. Passing a fresh registry keeps
// tests and multiple services independent.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agriledger_operations_total",
			Help: "Total ledger operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agriledger_records_created_total",
			Help: "Total records created by kind",
		}, []string{"kind"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agriledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"operation"}),
	}
}

// ObserveOperation records one completed operation.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// IncrementCreated records a newly created record of kind.
func (m *Metrics) IncrementCreated(kind string) {
	if m != nil {
		m.RecordsCreated.WithLabelValues(kind).Inc()
	}
}
