package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/enrollflow/enrollflow/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Intake submission outcomes
const (
	IntakeAccepted  = "accepted"
	IntakeHoneypot  = "honeypot"
	IntakeThrottled = "throttled"
	IntakeRejected  = "rejected"
)

type Metrics struct {
	registry   *prometheus.Registry
	namespace  string
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec
	leadMoves  *prometheus.CounterVec
	stageSaves prometheus.Counter
	intakeCnt  *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	// Register standard process and Go collectors
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	// Register basic HTTP metrics
	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	// Pipeline operation metrics
	leadMoves := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "lead_moves_total"}, []string{"role"})
	stageSaves := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "stage_batch_saves_total"})
	intakeCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "intake_submissions_total"}, []string{"outcome"})
	r.MustRegister(leadMoves, stageSaves, intakeCnt)

	return &Metrics{
		registry:   r,
		namespace:  ns,
		httpReqCnt: httpReqCnt,
		httpDur:    httpDur,
		httpInfl:   httpInfl,
		leadMoves:  leadMoves,
		stageSaves: stageSaves,
		intakeCnt:  intakeCnt,
	}
}

func (m *Metrics) LeadMoved(role string) {
	m.leadMoves.WithLabelValues(role).Inc()
}

func (m *Metrics) StageBatchSaved() {
	m.stageSaves.Inc()
}

func (m *Metrics) IntakeSubmission(outcome string) {
	m.intakeCnt.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := httpStatus(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func httpStatus(code int) string { return strconv.Itoa(code) }
