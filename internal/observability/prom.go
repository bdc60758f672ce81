package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Jobs (worker)
	JobDuration  *prometheus.HistogramVec
	JobResults   *prometheus.CounterVec
	JobsInFlight prometheus.Gauge

	// Uploads
	UploadsTotal *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "galleryhub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "galleryhub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "galleryhub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "galleryhub",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "galleryhub",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op.",
			},
			[]string{"op"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "galleryhub",
				Subsystem: "jobs",
				Name:      "duration_seconds",
				Help:      "Job execution duration by type and result",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"job_type", "result"}, // result=done|retry|failed
		),
		JobResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "galleryhub",
				Subsystem: "jobs",
				Name:      "results_total",
				Help:      "Job outcomes by type and result.",
			},
			[]string{"job_type", "result"},
		),
		JobsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "galleryhub",
				Subsystem: "jobs",
				Name:      "in_flight",
				Help:      "Current number of executing jobs (per process)",
			},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "galleryhub",
				Subsystem: "uploads",
				Name:      "total",
				Help:      "Upload attempts by outcome.",
			},
			[]string{"outcome"}, // outcome=stored|rejected|failed
		),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.JobDuration, p.JobResults, p.JobsInFlight,
		p.UploadsTotal,
	)

	return p
}

// ObserveDB wraps a logical repository operation with latency and error
// accounting.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op).Inc()
	}

	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())

	return err
}

// ObserveJob records one job execution.
func (p *Prom) ObserveJob(jobType, result string, took time.Duration) {
	p.JobResults.WithLabelValues(jobType, result).Inc()
	p.JobDuration.WithLabelValues(jobType, result).Observe(took.Seconds())
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
