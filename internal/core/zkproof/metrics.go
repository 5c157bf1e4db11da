package zkproof

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 证明引擎指标
type Metrics struct {
	generated *prometheus.CounterVec
	failed    *prometheus.CounterVec
	verified  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics 创建指标，registerer 为 nil 时不注册
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		generated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "traitproof",
				Subsystem: "zkproof",
				Name:      "proofs_generated_total",
				Help:      "Total number of proofs generated",
			},
			[]string{"kind"},
		),
		failed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "traitproof",
				Subsystem: "zkproof",
				Name:      "proofs_failed_total",
				Help:      "Total number of failed proof generations",
			},
			[]string{"kind", "reason"},
		),
		verified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "traitproof",
				Subsystem: "zkproof",
				Name:      "proofs_verified_total",
				Help:      "Total number of proof verifications",
			},
			[]string{"kind", "result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "traitproof",
				Subsystem: "zkproof",
				Name:      "generation_duration_seconds",
				Help:      "Proof generation duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"kind"},
		),
	}
}
