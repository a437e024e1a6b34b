package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported by both servers.
type Metrics struct {
	registry       *prometheus.Registry
	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	productLookups *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "search_web",
			Name:      "searches_total",
			Help:      "Searches finished, by outcome.",
		}, []string{"outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "search_web",
			Name:      "search_duration_seconds",
			Help:      "Time from search trigger to outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		productLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "search_web",
			Name:      "product_searches_total",
			Help:      "Product search API requests, by HTTP status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.searches,
		m.searchDuration,
		m.productLookups,
		collectors.NewGoCollector(),
	)
	return m
}

// SearchFinished records one finished session search.
func (m *Metrics) SearchFinished(outcome string, elapsed time.Duration) {
	m.searches.WithLabelValues(outcome).Inc()
	m.searchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ProductSearchServed records one product search API response.
func (m *Metrics) ProductSearchServed(status int) {
	m.productLookups.WithLabelValues(http.StatusText(status)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
