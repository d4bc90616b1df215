package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssistantMetrics exposes counters/histograms for the chat pipeline.
type AssistantMetrics struct {
	turnsTotal  *prometheus.CounterVec
	lookupTotal *prometheus.CounterVec
	llmTotal    *prometheus.CounterVec
	llmLatency  prometheus.Histogram
}

func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbot",
			Subsystem: "assistant",
			Name:      "turns_total",
			Help:      "Chat turns answered, by resolution source",
		}, []string{"source"}),
		lookupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbot",
			Subsystem: "assistant",
			Name:      "lookup_total",
			Help:      "Structured lookups, by intent and result",
		}, []string{"intent", "result"}),
		llmTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbot",
			Subsystem: "assistant",
			Name:      "llm_requests_total",
			Help:      "External model calls, by outcome",
		}, []string{"status"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicbot",
			Subsystem: "assistant",
			Name:      "llm_latency_seconds",
			Help:      "Latency of external model generation calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 12, 16},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.lookupTotal, m.llmTotal, m.llmLatency)
	return m
}

func (m *AssistantMetrics) ObserveTurn(source string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(source).Inc()
}

func (m *AssistantMetrics) ObserveLookup(intent, result string) {
	if m == nil {
		return
	}
	m.lookupTotal.WithLabelValues(intent, result).Inc()
}

// ObserveLLM records one model call. Latency is only observed for calls
// that reached generation.
func (m *AssistantMetrics) ObserveLLM(status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmTotal.WithLabelValues(status).Inc()
	if seconds > 0 {
		m.llmLatency.Observe(seconds)
	}
}
