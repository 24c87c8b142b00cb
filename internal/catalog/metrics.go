package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK      = "ok"
	outcomeStatus  = "bad_status"
	outcomeInvalid = "invalid_body"
	outcomeError   = "transport_error"
)

var upstreamTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "catalog_upstream_requests_total", Help: "Upstream catalog requests by category and outcome"},
	[]string{"category", "outcome"},
)

func init() { prometheus.MustRegister(upstreamTotal) }

func observe(c Category, outcome string) {
	upstreamTotal.WithLabelValues(string(c), outcome).Inc()
}
