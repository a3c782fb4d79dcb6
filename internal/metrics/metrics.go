package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "studio"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by route.", Buckets: prometheus.DefBuckets},
		[]string{"route", "method"},
	)
	RenderJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "render_jobs_total", Help: "PDF render jobs by outcome."},
		[]string{"outcome"},
	)
	RenderCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "render_cache_lookups_total", Help: "Render cache lookups by result."},
		[]string{"result"},
	)
	TranslationPulls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "translation_pull_languages_total", Help: "Languages processed by translation pulls, by outcome."},
		[]string{"outcome"},
	)
	TasksEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "tasks_enqueued_total", Help: "Background tasks enqueued, by queue."},
		[]string{"queue"},
	)
	TranslationStrings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "translation_push_strings_total", Help: "Strings sent to the translation service, by outcome."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(RenderJobs)
	reg.MustRegister(RenderCache)
	reg.MustRegister(TranslationPulls)
	reg.MustRegister(TranslationStrings)
	reg.MustRegister(TasksEnqueued)
}

// Middleware records request counts and latency keyed by the matched route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
