package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the status engine.
var (
	probesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "status_probes_total",
		Help: "Total number of live-status probes issued to the IoT cloud.",
	})
	probeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "status_probe_failures_total",
		Help: "Total number of live-status probes that failed or timed out.",
	})
	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "status_refresh_duration_seconds",
		Help:    "Duration of one owner or contact refresh pass.",
		Buckets: prometheus.DefBuckets,
	})
	cachedDevices = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "status_cached_devices",
		Help: "Number of reconciled device entries currently cached.",
	})
)
