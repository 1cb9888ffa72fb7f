package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 评估与进度传播
	EvaluationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courseware_evaluations_total",
			Help: "Total number of learner evaluations by outcome",
		},
		[]string{"walkable_type", "outcome"},
	)

	EvaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courseware_evaluation_duration_seconds",
			Help:    "Duration of an evaluation including progress propagation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"walkable_type"},
	)

	ProgressCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courseware_progress_updates_total",
			Help: "Total number of persisted progress records",
		},
		[]string{"kind"},
	)

	CompetencyRollupCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courseware_competency_rollups_total",
			Help: "Total number of competency roll-ups by status",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(EvaluationCounter)
	prometheus.MustRegister(EvaluationDuration)
	prometheus.MustRegister(ProgressCounter)
	prometheus.MustRegister(CompetencyRollupCounter)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
