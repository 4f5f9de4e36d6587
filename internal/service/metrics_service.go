package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	extractionDuration prometheus.Observer
	extractionFailures prometheus.Counter
	searchDuration     prometheus.Observer
	searchMatches      prometheus.Observer
	ticketsSold        prometheus.Counter
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	extractionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "criteria_extraction_duration_seconds",
		Help:    "Latency of completion-backed criteria extraction",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	})

	extractionFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "criteria_extraction_failures_total",
		Help: "Total failed criteria extractions",
	})

	searchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "event_search_duration_seconds",
		Help:    "Duration of compiled event searches",
		Buckets: prometheus.DefBuckets,
	})

	searchMatches := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "event_search_matches",
		Help:    "Number of events returned per search",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	ticketsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tickets_sold_total",
		Help: "Total tickets registered",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, extractionDuration, extractionFailures, searchDuration, searchMatches, ticketsSold, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		extractionDuration: extractionDuration,
		extractionFailures: extractionFailures,
		searchDuration:     searchDuration,
		searchMatches:      searchMatches,
		ticketsSold:        ticketsSold,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveExtraction records completion latency and failure counts.
func (m *MetricsService) ObserveExtraction(duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.extractionDuration.Observe(duration.Seconds())
	if failed {
		m.extractionFailures.Inc()
	}
}

// ObserveSearch records the timing and result size of an event search.
func (m *MetricsService) ObserveSearch(duration time.Duration, matches int) {
	if m == nil {
		return
	}
	m.searchDuration.Observe(duration.Seconds())
	m.searchMatches.Observe(float64(matches))
}

// RecordTicketSold increments the sold ticket counter.
func (m *MetricsService) RecordTicketSold() {
	if m == nil {
		return
	}
	m.ticketsSold.Inc()
}
