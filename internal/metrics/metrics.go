package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pricewatch_guard"

var (
	// FetchAttempts counts page fetches by outcome: clean, blocked,
	// network_error.
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Page fetch attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// Detections counts classified blocks by detection type.
	Detections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Block detections by type.",
		},
		[]string{"type"},
	)

	// SuggestionSeconds tracks suggestion generation latency.
	SuggestionSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_seconds",
			Help:      "Time spent generating grouped suggestions.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SolutionApplications counts apply attempts by outcome: success,
	// failure, rejected.
	SolutionApplications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solution_applications_total",
			Help:      "Solution applications by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register installs the collectors on reg. Already-registered
// collectors are tolerated so tests can call this repeatedly.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		FetchAttempts,
		Detections,
		SuggestionSeconds,
		SolutionApplications,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveFetch records one fetch attempt outcome.
func ObserveFetch(outcome string) {
	FetchAttempts.WithLabelValues(outcome).Inc()
}

// ObserveDetection records one classified block.
func ObserveDetection(detectionType string) {
	Detections.WithLabelValues(detectionType).Inc()
}

// ObserveSuggestion records the time spent generating suggestions.
func ObserveSuggestion(elapsed time.Duration) {
	SuggestionSeconds.Observe(elapsed.Seconds())
}

// ObserveApplication records one solution application outcome.
func ObserveApplication(outcome string) {
	SolutionApplications.WithLabelValues(outcome).Inc()
}
