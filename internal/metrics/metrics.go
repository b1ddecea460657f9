// Package metrics exposes the bot's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgops_commands_total",
			Help: "Number of commands received by the bot",
		},
		[]string{"command", "user_id"},
	)

	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgops_callbacks_total",
			Help: "Number of callback queries processed",
		},
		[]string{"action", "user_id"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgops_errors_total",
			Help: "Number of errors encountered by kind and command",
		},
		[]string{"type", "command"},
	)

	UnauthorizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tgops_unauthorized_attempts_total",
			Help: "Number of unauthorized access attempts",
		},
		[]string{"user_id"},
	)

	CommandLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tgops_command_latency_seconds",
			Help:    "Command processing latency in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CallbacksTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(UnauthorizedTotal)
	prometheus.MustRegister(CommandLatency)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
