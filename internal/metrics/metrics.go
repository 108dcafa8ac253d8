package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metric names are not prefixed with the service name so dashboards can aggregate across
// the web and worker binaries.
var (
	BackendRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Latency of calls to the booking backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "code"})

	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of requests served by the web tier.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	FlowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_flow_transitions_total",
		Help: "Payment capture flow transitions by target step.",
	}, []string{"step"})

	BookedDatesCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booked_dates_cache_total",
		Help: "Booked dates lookups by cache result.",
	}, []string{"result"})

	VAPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "va_status_polls_total",
		Help: "Virtual account status checks by resulting status.",
	}, []string{"status"})
)

// Serve exposes /metrics on its own listener.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("component", "metrics").Msg("metrics server stopped")
		}
	}()
}
