package auth

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once

	// decisionCounter counts resolved access checks by query kind and result.
	decisionCounter *prometheus.CounterVec //nolint:gochecknoglobals

	// cacheCounter counts cache lookups by entry type and result.
	cacheCounter *prometheus.CounterVec //nolint:gochecknoglobals
)

func initMetrics() {
	metricsOnce.Do(func() {
		decisionCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "access_decisions_total",
				Help: "Number of access decisions, differentiated by query kind and result.",
			},
			[]string{"kind", "result"},
		)

		cacheCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "access_cache_lookups_total",
				Help: "Number of cache lookups of resolution inputs, differentiated by entry and result.",
			},
			[]string{"entry", "result"},
		)
	})
}

func countDecision(kind string, allowed bool) {
	result := "deny"
	if allowed {
		result = "allow"
	}

	decisionCounter.WithLabelValues(kind, result).Inc()
}

func countLookup(entry string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}

	cacheCounter.WithLabelValues(entry, result).Inc()
}

// kindNavigate and kindPolicy label decisions that are not engine queries.
const (
	kindNavigate = "navigate"
	kindPolicy   = "policy"
)
