package llm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver records LLM call counts and latencies in Prometheus.
type MetricsObserver struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsObserver registers the LLM call metrics on reg.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	o := &MetricsObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dayplan",
			Name:      "llm_calls_total",
			Help:      "Number of LLM backend calls by provider, model and status",
		}, []string{"provider", "model", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dayplan",
			Name:      "llm_call_duration_seconds",
			Help:      "Latency of LLM backend calls",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
	}
	if reg != nil {
		reg.MustRegister(o.calls, o.duration)
	}
	return o
}

func (o *MetricsObserver) OnCallComplete(event CallEvent) {
	o.calls.WithLabelValues(string(event.Provider), event.Model, event.Status.String()).Inc()
	o.duration.WithLabelValues(string(event.Provider)).Observe(float64(event.LatencyMs) / 1000)
}
