// Package metrics provides Prometheus metrics for the PagerDuty handler.
//
// The handler runs once per event, so metrics live in a dedicated registry
// that is pushed to a Pushgateway instead of being scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "sensu_pagerduty_handler"
)

// Registry holds every handler metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Dispatch metrics
var (
	// DispatchTotal counts PagerDuty calls by action and result.
	DispatchTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Total number of PagerDuty events sent",
		},
		[]string{"action", "result"},
	)

	// DispatchDuration tracks PagerDuty call latency.
	DispatchDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "PagerDuty Events API call latency in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"action"},
	)
)

// Resolution metrics
var (
	// FieldOriginTotal counts which tier produced each resolved field.
	FieldOriginTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "field_origin_total",
			Help:      "Resolved alert fields by field name and origin (flag, env, default)",
		},
		[]string{"field", "origin"},
	)

	// ErrorsTotal counts fatal handler errors by kind.
	ErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Fatal handler errors by kind",
		},
		[]string{"kind"},
	)
)

// Result labels
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)
