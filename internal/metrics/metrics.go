// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cryptosense"

// Prediction metrics
var (
	// PredictionsTotal counts completed evaluations by horizon and recommendation
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Completed predictions by horizon and recommendation",
		},
		[]string{"horizon", "recommendation"},
	)

	// PredictionFailures counts evaluations that returned an error
	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Failed predictions by reason",
		},
		[]string{"reason"},
	)
)

// Sentiment metrics
var (
	// SentimentSourceTotal counts sub-score lookups by source and outcome (ok, cached, empty, error)
	SentimentSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentiment_source_total",
			Help:      "Sentiment sub-score lookups by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// SentimentScore records the last combined score per asset
	SentimentScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sentiment_combined_score",
			Help:      "Most recent combined sentiment score per asset",
		},
		[]string{"asset"},
	)

	ClassifierFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_failures_total",
			Help:      "Text classification calls that failed and were skipped",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
