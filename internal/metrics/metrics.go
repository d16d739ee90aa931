package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	feedFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gastrocal",
			Name:      "feed_fetch_total",
			Help:      "Backend feed fetches by feed and result.",
		},
		[]string{"feed", "result"},
	)

	staleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gastrocal",
			Name:      "stale_responses_dropped_total",
			Help:      "Fetch responses discarded because a newer navigation superseded them.",
		},
	)

	printJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gastrocal",
			Name:      "print_jobs_total",
			Help:      "Occupancy print jobs by result.",
		},
		[]string{"result"},
	)

	exportJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gastrocal",
			Name:      "export_jobs_total",
			Help:      "Tax export jobs by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gastrocal",
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(feedFetches, staleResponses, printJobs, exportJobs, httpRequests)
	})
}

func IncFeedFetch(feed, result string) {
	feedFetches.WithLabelValues(feed, result).Inc()
}

func IncStaleResponseDropped() {
	staleResponses.Inc()
}

func IncPrintJob(result string) {
	printJobs.WithLabelValues(result).Inc()
}

func IncExportJob(result string) {
	exportJobs.WithLabelValues(result).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
