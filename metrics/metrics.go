package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "embed_http_requests_total",
}, []string{"action", "method"})
var HttpResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "embed_http_responses_total",
}, []string{"action", "method", "statusCode"})
var Resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "embed_resolutions_total",
}, []string{"provider"})
var Fetches = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "embed_fetches_total",
}, []string{"provider", "outcome"})
var FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "embed_fetch_duration_seconds",
}, []string{"provider"})
var Redirects = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "embed_redirects_total",
}, []string{"kind"})
var DnsCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "embed_dns_cache_hits_total",
})

func init() {
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(HttpResponses)
	prometheus.MustRegister(Resolutions)
	prometheus.MustRegister(Fetches)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(Redirects)
	prometheus.MustRegister(DnsCacheHits)
}
