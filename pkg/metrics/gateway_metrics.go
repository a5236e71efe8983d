package metrics

import "github.com/prometheus/client_golang/prometheus"

var cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gallery_cache_requests_total",
	Help: "TTL cache lookups, partitioned by cache name and hit/miss",
}, []string{"cache", "result"})

var listingOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "drive_listings_total",
	Help: "Folder listing attempts, partitioned by strategy and outcome",
}, []string{"strategy", "outcome"})

var streamOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "drive_streams_total",
	Help: "Media stream attempts, partitioned by path (api/public) and outcome",
}, []string{"path", "outcome"})

var sourceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "gallery_source_errors_total",
	Help: "Per-source gallery assembly failures, partitioned by error kind",
}, []string{"kind"})

func init() {
	prometheus.MustRegister(cacheRequests, listingOutcomes, streamOutcomes, sourceErrors)
}

func CacheRequest(cache, result string) {
	cacheRequests.WithLabelValues(cache, result).Inc()
}

func ListingOutcome(strategy, outcome string) {
	listingOutcomes.WithLabelValues(strategy, outcome).Inc()
}

func StreamOutcome(path, outcome string) {
	streamOutcomes.WithLabelValues(path, outcome).Inc()
}

func SourceError(kind string) {
	sourceErrors.WithLabelValues(kind).Inc()
}
