package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics
var Registry = prometheus.NewRegistry()

var (
	OauthTokensMetric = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_oauth_tokens_total",
			Help: "Token endpoint calls partitioned by grant and outcome",
		},
		[]string{"action", "outcome"},
	)
	OauthLatencyMetric = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "demo_oauth_request_latency",
			Help: "A summary of the request latency for requests against the openid provider, in seconds",
		},
		[]string{"action"},
	)
)

func init() {
	Registry.MustRegister(
		OauthTokensMetric,
		OauthLatencyMetric,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
