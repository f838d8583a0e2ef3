package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geonews_requests_total",
		Help: "News API requests by action and outcome.",
	}, []string{"action", "outcome"})

	scrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "geonews_scrape_duration_seconds",
		Help:    "Time spent scraping a category page and its articles.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)

func observe(action, outcome string) {
	requestsTotal.WithLabelValues(action, outcome).Inc()
}
