package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service is the Prometheus-backed implementation of the Metrics interface.
type Service struct {
	SessionLoads        prometheus.Counter
	SessionLoadFailures prometheus.Counter
	Actions             *prometheus.CounterVec
	ActionDuration      *prometheus.HistogramVec
	StartupTimeSeconds  prometheus.Gauge
}
