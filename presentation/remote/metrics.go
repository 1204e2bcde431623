package remote

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatched = "unmatched"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browser_library_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "browser_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	keywordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "browser_library_keywords_total",
			Help: "Total number of keywords run, by outcome.",
		},
		[]string{"keyword", "status"},
	)

	keywordDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "browser_library_keyword_duration_seconds",
			Help:    "Keyword run duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"keyword"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(keywordsTotal)
	prometheus.MustRegister(keywordDuration)
}

// metricsMiddleware records request count and duration for every HTTP request.
// Uses the chi route pattern, not the raw path, to keep label cardinality bounded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// observeKeyword records one keyword run. keyword must be a registered
// name so that label values stay bounded.
func observeKeyword(keyword, status string, took time.Duration) {
	keywordsTotal.WithLabelValues(keyword, status).Inc()
	keywordDuration.WithLabelValues(keyword).Observe(took.Seconds())
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unmatched
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
