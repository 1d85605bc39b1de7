// Package metrics exposes Prometheus counters for the session operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. Outcome labels carry "ok" or a short
// failure reason so dashboards can split successes from rejections.
type Metrics struct {
	registry *prometheus.Registry

	CheckIns      *prometheus.CounterVec
	BreakRequests *prometheus.CounterVec
	Submissions   *prometheus.CounterVec
	Incidents     prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CheckIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_session_check_ins_total",
			Help: "Check-in attempts by outcome.",
		}, []string{"outcome"}),
		BreakRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_session_break_requests_total",
			Help: "Washroom break requests by outcome.",
		}, []string{"outcome"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_session_submissions_total",
			Help: "Recorded submissions by reason (early, end_of_time).",
		}, []string{"reason"}),
		Incidents: factory.NewCounter(prometheus.CounterOpts{
			Name: "exam_session_incidents_total",
			Help: "Incident records written.",
		}),
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
