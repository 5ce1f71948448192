package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOperation("add_debt", OutcomeOK, 2*time.Millisecond)
	m.ObserveOperation("add_debt", OutcomeOK, time.Millisecond)
	m.ObserveOperation("add_debt", OutcomeEmpty, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("add_debt", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("add_debt", OutcomeEmpty)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationLatency))
}

func TestIncrementCreated(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementCreated("debt")
	m.IncrementCreated("debt")
	m.IncrementCreated("escrow")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsCreated.WithLabelValues("debt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsCreated.WithLabelValues("escrow")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("get_debt", OutcomeNotFound, time.Millisecond)
		m.IncrementCreated("debt")
	})
}

func TestNewRegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) }, "duplicate registration must fail")
}
