package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	feedbackSubmissions   *prometheus.CounterVec
	aggregateRecomputes   prometheus.Counter
	aggregateRespondents  prometheus.Histogram
	overviewCacheLookups  *prometheus.CounterVec
	domainEventsPublished *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assessment_submissions_total",
			Help: "Assessment submissions by type and outcome.",
		}, []string{"assessment_type", "outcome"})

		feedbackSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Evaluator feedback submissions by outcome.",
		}, []string{"outcome"})

		aggregateRecomputes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_aggregate_recomputations_total",
			Help: "Number of full 360 aggregate recomputations.",
		})

		aggregateRespondents = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_aggregate_respondents",
			Help:    "Completed evaluators per aggregate computation.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		})

		overviewCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_overview_cache_lookups_total",
			Help: "Results overview cache lookups (hit, miss) and skipped stale writes (stale).",
		}, []string{"outcome"})

		domainEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Domain events handed to the broker by subject and outcome.",
		}, []string{"subject", "outcome"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionsTotal,
			feedbackSubmissions,
			aggregateRecomputes,
			aggregateRespondents,
			overviewCacheLookups,
			domainEventsPublished,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Submissions counts assessment submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// FeedbackSubmissions counts evaluator submissions.
func FeedbackSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return feedbackSubmissions
}

// AggregateRecomputations counts full 360 aggregate recomputations.
func AggregateRecomputations() prometheus.Counter {
	RegisterMetrics()
	return aggregateRecomputes
}

// AggregateRespondents observes respondents per aggregate.
func AggregateRespondents() prometheus.Histogram {
	RegisterMetrics()
	return aggregateRespondents
}

// OverviewCacheLookups counts overview cache hits and misses.
func OverviewCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return overviewCacheLookups
}

// DomainEventsPublished counts events handed to the broker.
func DomainEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return domainEventsPublished
}
