// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: 6c5b4a39-2817-4f6e-8d9c-0b1a2c3d4e5f

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	resolutionStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "audiobook_curator",
		Name:      "resolutions_started_total",
		Help:      "Total number of metadata resolutions started",
	})
	resolutionOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audiobook_curator",
		Name:      "resolutions_total",
		Help:      "Total number of metadata resolutions by outcome",
	}, []string{"outcome"}) // resolved, partial, unresolved
	resolutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "audiobook_curator",
		Name:      "resolution_duration_seconds",
		Help:      "Histogram of metadata resolution durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audiobook_curator",
		Name:      "cache_lookups_total",
		Help:      "Total cache lookups by namespace and result",
	}, []string{"namespace", "result"}) // namespace: query|file, result: hit|miss

	providerSearches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audiobook_curator",
		Name:      "provider_searches_total",
		Help:      "Total provider searches by provider and result",
	}, []string{"provider", "result"}) // result: ok, unavailable, auth_error

	persistAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audiobook_curator",
		Name:      "persist_attempts_total",
		Help:      "Total persistence strategy attempts by strategy and result",
	}, []string{"strategy", "result"}) // result: ok, failed, skipped
	persistDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "audiobook_curator",
		Name:      "persist_duration_seconds",
		Help:      "Histogram of persistence transaction durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(resolutionStarted, resolutionOutcome, resolutionDuration,
			cacheLookups, providerSearches, persistAttempts, persistDuration)
	})
}

// Resolution lifecycle helpers
func IncResolutionStarted() { resolutionStarted.Inc() }

func IncResolutionOutcome(out string) { resolutionOutcome.WithLabelValues(out).Inc() }

func ObserveResolution(d time.Duration) { resolutionDuration.Observe(d.Seconds()) }

// Cache helpers
func IncCacheHit(namespace string) { cacheLookups.WithLabelValues(namespace, "hit").Inc() }

func IncCacheMiss(namespace string) { cacheLookups.WithLabelValues(namespace, "miss").Inc() }

// Provider helpers
func IncProviderSearch(provider, result string) {
	providerSearches.WithLabelValues(provider, result).Inc()
}

// Persistence helpers
func IncPersistAttempt(strategy, result string) {
	persistAttempts.WithLabelValues(strategy, result).Inc()
}
func ObservePersist(d time.Duration) { persistDuration.Observe(d.Seconds()) }
