package envelope

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "convexenv",
		Name:      "evaluations_total",
		Help:      "Envelope evaluations by outcome",
	}, []string{"outcome"})

	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "convexenv",
		Name:      "candidates_total",
		Help:      "Candidate evaluations by minimizer status",
	}, []string{"status"})

	subsetsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "convexenv",
		Name:      "subsets_rejected_total",
		Help:      "Subsets of Y rejected by the feasibility test, by reason",
	}, []string{"reason"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "convexenv",
		Name:      "evaluation_duration_seconds",
		Help:      "Wall time of one envelope evaluation",
		Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
	})
)

func recordEnumeration(stats EnumerationStats) {
	subsetsRejectedTotal.WithLabelValues("negative_weight").Add(float64(stats.NegativeWeight))
	subsetsRejectedTotal.WithLabelValues("residual").Add(float64(stats.Residual))
	subsetsRejectedTotal.WithLabelValues("factorization").Add(float64(stats.FactorFailed))
}
