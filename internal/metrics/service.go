package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SessionLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_session_loads_total",
			Help: "The total number of booking aggregate loads.",
		}),
		SessionLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_session_load_failures_total",
			Help: "The total number of booking aggregate loads that failed.",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_actions_total",
			Help: "The total number of match/booking actions, by action and outcome.",
		}, []string{"action", "outcome"}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courtside_action_duration_seconds",
			Help:    "The duration of individual actions including the service call.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"action"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SessionLoads,
		s.SessionLoadFailures,
		s.Actions,
		s.ActionDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSessionLoads() {
	s.SessionLoads.Inc()
}

func (s *Service) IncSessionLoadFailures() {
	s.SessionLoadFailures.Inc()
}

func (s *Service) IncAction(action, outcome string) {
	s.Actions.WithLabelValues(action, outcome).Inc()
}

func (s *Service) ObserveActionDuration(action string, seconds float64) {
	s.ActionDuration.WithLabelValues(action).Observe(seconds)
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
