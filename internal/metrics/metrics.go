package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crmm_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path_pattern", "status_code"})

	// Denied permission checks, labelled by the route that rejected them.
	AuthorizationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crmm_authorization_failures_total",
		Help: "Total number of requests rejected by a permission check.",
	}, []string{"path_pattern"})

	InvalidAttemptsRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crmm_invalid_attempts_rejections_total",
		Help: "Total number of requests rejected because the caller exceeded the invalid attempts limit.",
	})

	TeamMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crmm_team_mutations_total",
		Help: "Total number of committed team, ownership and organisation mutations.",
	}, []string{"operation"})

	SearchSyncedProjectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crmm_search_synced_projects_total",
		Help: "Total number of projects processed by the search sync worker.",
	}, []string{"result"})

	SearchQueueLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crmm_search_queue_length",
		Help: "Number of project ids waiting for search sync.",
	})

	ServerStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crmm_server_start_time_seconds",
		Help: "Unix timestamp of server start.",
	})
)

func init() {
	registry.MustRegister(
		HTTPRequestDuration,
		AuthorizationFailuresTotal,
		InvalidAttemptsRejectionsTotal,
		TeamMutationsTotal,
		SearchSyncedProjectsTotal,
		SearchQueueLength,
		ServerStartTime,
	)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ServerStartTime.Set(float64(time.Now().Unix()))
}

func GetRegistry() *prometheus.Registry {
	return registry
}

// RequestDurationMiddleware records latency per matched route pattern, so
// high-cardinality ids never end up in label values.
func RequestDurationMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		startedAt := time.Now()
		ctx.Next()

		pathPattern := ctx.FullPath()
		if pathPattern == "" {
			pathPattern = "unmatched"
		}

		HTTPRequestDuration.
			WithLabelValues(ctx.Request.Method, pathPattern, strconv.Itoa(ctx.Writer.Status())).
			Observe(time.Since(startedAt).Seconds())
	}
}

type MetricsController struct{}

func GetMetricsController() *MetricsController {
	return &MetricsController{}
}

func (c *MetricsController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
