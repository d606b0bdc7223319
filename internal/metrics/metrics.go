// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Auth decision results used as the "result" label.
const (
	ResultAuthorized = "authorized"
	ResultBypassed   = "bypassed"
	ResultMissing    = "missing_api_key"
	ResultInvalid    = "invalid_api_key"
	ResultError      = "error"
)

var AuthDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "graduates_auth_decisions_total",
		Help: "Count of API key checks by outcome",
	},
	[]string{"result"},
)

var CipherFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "graduates_cipher_failures_total",
		Help: "Count of credential encrypt/decrypt failures",
	},
	[]string{"op"},
)

var ListingQueries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "graduates_listing_queries_total",
		Help: "Count of graduate listing queries, split by whether a search term was given",
	},
	[]string{"search"},
)

var ListingResults = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "graduates_listing_page_items",
		Help:    "Number of graduates returned per listing page",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	},
)

// Register adds all collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(AuthDecisions)
	reg.MustRegister(CipherFailures)
	reg.MustRegister(ListingQueries)
	reg.MustRegister(ListingResults)
}
