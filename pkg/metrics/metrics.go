package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

const namespace = "sitekit"

// Metrics owns a private registry with the cache, backend and HTTP series.
type Metrics struct {
	registry *prometheus.Registry

	cacheLookups      *prometheus.CounterVec
	cacheFetches      *prometheus.CounterVec
	cacheFetchSeconds prometheus.Histogram
	cacheRetries      prometheus.Counter
	cacheUnauthorized prometheus.Counter

	backendRequests *prometheus.CounterVec
	backendSeconds  *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpSeconds  *prometheus.HistogramVec
}

// New registers all series on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Cache reads by outcome.",
		}, []string{"outcome"}),
		cacheFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "fetches_total",
			Help: "Fetches issued by the cache by result kind.",
		}, []string{"result"}),
		cacheFetchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "cache", Name: "fetch_duration_seconds",
			Help:    "Duration of cache fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "retries_total",
			Help: "Scheduled error retries.",
		}),
		cacheUnauthorized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "unauthorized_total",
			Help: "Fetches rejected with 401.",
		}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "backend", Name: "requests_total",
			Help: "Backend calls by method and status; status 0 is a network failure.",
		}, []string{"method", "status"}),
		backendSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "backend", Name: "request_duration_seconds",
			Help:    "Duration of backend calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Served requests by route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Duration of served requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheLookups, m.cacheFetches, m.cacheFetchSeconds, m.cacheRetries, m.cacheUnauthorized,
		m.backendRequests, m.backendSeconds,
		m.httpRequests, m.httpSeconds,
	)
	return m
}

// Registry returns the registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Recorder adapts the cache series to swr.Recorder.
func (m *Metrics) Recorder() swr.Recorder {
	return cacheRecorder{m}
}

// ObserveRequest implements apiclient.Observer.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.backendRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.backendSeconds.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveHTTP records one served request. route is the router pattern, not
// the raw path, to keep cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

type cacheRecorder struct{ m *Metrics }

func (r cacheRecorder) Lookup(o swr.Outcome) {
	r.m.cacheLookups.WithLabelValues(string(o)).Inc()
}

func (r cacheRecorder) Fetch(d time.Duration, err error) {
	r.m.cacheFetches.WithLabelValues(apiclient.Kind(err).String()).Inc()
	r.m.cacheFetchSeconds.Observe(d.Seconds())
}

func (r cacheRecorder) Retry()        { r.m.cacheRetries.Inc() }
func (r cacheRecorder) Unauthorized() { r.m.cacheUnauthorized.Inc() }

var (
	_ swr.Recorder       = cacheRecorder{}
	_ apiclient.Observer = (*Metrics)(nil)
)
