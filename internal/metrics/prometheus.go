// Package metrics exposes monitor state as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinkOnline is 1 while a link reports power on
	LinkOnline = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linkmon_link_online",
			Help: "Whether the link reports power on",
		},
		[]string{"link"},
	)

	// LinkClockSeconds is the current uptime or downtime of a link
	LinkClockSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linkmon_link_clock_seconds",
			Help: "Current uptime or downtime of the link in seconds",
		},
		[]string{"link", "kind"},
	)

	// BackendConnected is 1 while the backend answers link-state polls
	BackendConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkmon_backend_connected",
			Help: "Whether the backend API is reachable",
		},
	)

	// FetchFailures counts failed backend fetches per feed
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmon_fetch_failures_total",
			Help: "Total number of failed backend fetches",
		},
		[]string{"feed", "kind"},
	)

	// SamplesMerged counts samples appended to a series
	SamplesMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmon_samples_merged_total",
			Help: "Total number of samples merged into a series",
		},
		[]string{"series", "origin"},
	)

	// StabilityCacheLookups counts stability cache hits and misses
	StabilityCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmon_stability_cache_lookups_total",
			Help: "Total number of stability cache lookups",
		},
		[]string{"result"},
	)

	// Stability holds the stability metrics of the selected stats range
	Stability = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linkmon_stability",
			Help: "Stability metrics of the selected stats range",
		},
		[]string{"metric"},
	)

	// AverageLatency holds the windowed average latency per period
	AverageLatency = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "linkmon_average_latency_ms",
			Help: "Average latency per period in milliseconds",
		},
		[]string{"period"},
	)

	// RedisOperations counts snapshot mirror writes
	RedisOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkmon_redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)
)
