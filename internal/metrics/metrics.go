package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trustcheck_queries_total", Help: "Account lines queries by outcome"},
		[]string{"outcome"},
	)
	WalletsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trustcheck_wallets_total", Help: "Wallets evaluated by result"},
		[]string{"result"},
	)
	QuerySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trustcheck_query_seconds",
			Help:    "Round trip time of account lines queries",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(QueriesTotal, WalletsTotal, QuerySeconds)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
