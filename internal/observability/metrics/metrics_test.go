package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPipelineMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)

	m.ObserveTurn("command_based", "ok", 1.2)
	m.ObserveCommand("initial", true)
	m.ObserveCommand("follow_up", false)
	m.ObserveRejection()
	m.ObserveProviderFallback("analyze")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.turnsTotal.WithLabelValues("command_based", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsExecutedTotal.WithLabelValues("initial", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsExecutedTotal.WithLabelValues("follow_up", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsRejectedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.providerFallbackTotal.WithLabelValues("analyze")))
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.ObserveTurn("advice_only", "ok", 0.1)
		m.ObserveCommand("initial", true)
		m.ObserveRejection()
		m.ObserveProviderFallback("suggest")
	})
}
