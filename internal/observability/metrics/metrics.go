package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the diagnostic pipeline.
// All methods are nil-safe so wiring metrics stays optional in tests.
type PipelineMetrics struct {
	turnsTotal            *prometheus.CounterVec
	commandsExecutedTotal *prometheus.CounterVec
	commandsRejectedTotal prometheus.Counter
	providerFallbackTotal *prometheus.CounterVec
	turnLatency           *prometheus.HistogramVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "k8schat",
			Subsystem: "pipeline",
			Name:      "turns_total",
			Help:      "Total processed conversation turns",
		}, []string{"analysis_type", "outcome"}),
		commandsExecutedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "k8schat",
			Subsystem: "pipeline",
			Name:      "commands_executed_total",
			Help:      "Total kubectl commands executed",
		}, []string{"phase", "status"}),
		commandsRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "k8schat",
			Subsystem: "pipeline",
			Name:      "commands_rejected_total",
			Help:      "Total suggested commands rejected by the safety gate",
		}),
		providerFallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "k8schat",
			Subsystem: "pipeline",
			Name:      "provider_fallback_total",
			Help:      "Total LLM operations that degraded to a fallback",
		}, []string{"operation"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "k8schat",
			Subsystem: "pipeline",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end turn processing latency",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"analysis_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.turnsTotal,
		m.commandsExecutedTotal,
		m.commandsRejectedTotal,
		m.providerFallbackTotal,
		m.turnLatency,
	)
	return m
}

func (m *PipelineMetrics) ObserveTurn(analysisType, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(analysisType, outcome).Inc()
	m.turnLatency.WithLabelValues(analysisType).Observe(seconds)
}

func (m *PipelineMetrics) ObserveCommand(phase string, success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "ok"
	}
	m.commandsExecutedTotal.WithLabelValues(phase, status).Inc()
}

func (m *PipelineMetrics) ObserveRejection() {
	if m == nil {
		return
	}
	m.commandsRejectedTotal.Inc()
}

func (m *PipelineMetrics) ObserveProviderFallback(operation string) {
	if m == nil {
		return
	}
	m.providerFallbackTotal.WithLabelValues(operation).Inc()
}
