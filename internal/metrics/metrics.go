// Package metrics declares the Prometheus collectors shared by the pipeline
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tennis_documents_fetched_total",
		Help: "Total number of HTML documents fetched successfully",
	})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tennis_fetch_errors_total",
		Help: "Total number of failed document fetches by kind",
	}, []string{"kind"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tennis_fetch_duration_seconds",
		Help:    "Duration of successful document fetches",
		Buckets: prometheus.DefBuckets,
	})

	ProfilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tennis_profiles_skipped_total",
		Help: "Total number of athlete profiles recorded as degraded entries",
	})

	Cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tennis_cycles_total",
		Help: "Total number of fetch cycles by outcome",
	}, []string{"outcome"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tennis_cycle_duration_seconds",
		Help:    "Duration of complete fetch cycles",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
	})

	LastCycleAthletes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tennis_last_cycle_athletes",
		Help: "Number of athletes in the most recent stats map",
	})
)
