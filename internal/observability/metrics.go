package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CalculationsTotal counts calculation attempts by final status
	// (success, partial, failed).
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peloton",
		Name:      "calculations_total",
		Help:      "Stage calculation attempts by outcome status.",
	}, []string{"status"})

	// CalculationSkipsTotal counts short-circuited attempts by guard
	// (cooldown, hash).
	CalculationSkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peloton",
		Name:      "calculation_skips_total",
		Help:      "Calculation attempts skipped by an idempotency guard.",
	}, []string{"guard"})

	PointsAwardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peloton",
		Name:      "points_awarded_total",
		Help:      "Fantasy points awarded across all games.",
	})

	CalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "peloton",
		Name:      "calculation_duration_seconds",
		Help:      "Wall time of a full stage calculation fan-out.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	GamesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peloton",
		Name:      "games_processed_total",
		Help:      "Games scored by the fan-out pipeline.",
	})
)
