package intelligence

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexanderramin/dayplan/internal/domain"
)

// GenerationMetrics counts answered requests by the path that produced them.
type GenerationMetrics struct {
	generations *prometheus.CounterVec
}

// NewGenerationMetrics registers the generation counter on reg.
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	m := &GenerationMetrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dayplan",
			Name:      "generations_total",
			Help:      "Schedule generations by the source that produced the events",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.generations)
	}
	return m
}

func (m *GenerationMetrics) RecordGeneration(source domain.GenerationSource) {
	m.generations.WithLabelValues(string(source)).Inc()
}
