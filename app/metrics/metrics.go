package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcomb_upstream_requests_total",
		Help: "Upstream requests by site, endpoint and outcome",
	}, []string{"site", "endpoint", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogcomb_upstream_request_duration_seconds",
		Help:    "Upstream request latency",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	}, []string{"site", "endpoint"})

	adapterFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogcomb_adapter_failures_total",
		Help: "Failed adapter operations by operation and error kind",
	}, []string{"site", "operation", "kind"})
)

func ObserveUpstream(site, endpoint string, startedAt time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	upstreamRequests.WithLabelValues(site, endpoint, outcome).Inc()
	upstreamDuration.WithLabelValues(site, endpoint).Observe(time.Since(startedAt).Seconds())
}

func ObserveFailure(site, operation, kind string) {
	adapterFailures.WithLabelValues(site, operation, kind).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
