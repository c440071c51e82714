package metrics

import (
	"net/http"
	"strconv"
	"time"

	"refund-settlement-engine/internal/domain/refund"
	"refund-settlement-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "refund_engine"

// Registry owns every collector of the service on a private registry, so
// tests can build as many as they like.
type Registry struct {
	reg         *prometheus.Registry
	transitions *prometheus.CounterVec
	gateway     *prometheus.CounterVec
	gatewayTime *prometheus.HistogramVec
	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refund_transitions_total",
			Help:      "Refund status transitions by previous and new status.",
		}, []string{"from", "to"}),
		gateway: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Payment gateway refund calls by outcome.",
		}, []string{"outcome"}),
		gatewayTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Payment gateway refund call latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.transitions, r.gateway, r.gatewayTime, r.requests, r.reqDuration,
	)
	return r
}

func (r *Registry) ObserveTransition(from *refund.Status, to refund.Status) {
	label := "NONE"
	if from != nil {
		label = string(*from)
	}
	r.transitions.WithLabelValues(label, string(to)).Inc()
}

func (r *Registry) ObserveGatewayCall(outcome string, elapsed time.Duration) {
	r.gateway.WithLabelValues(outcome).Inc()
	r.gatewayTime.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Middleware records every request under its route template so path ids do
// not explode label cardinality.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		r.reqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

type Nop struct{}

func (Nop) ObserveTransition(*refund.Status, refund.Status) {}
func (Nop) ObserveGatewayCall(string, time.Duration)        {}

var (
	_ commands.Metrics = (*Registry)(nil)
	_ commands.Metrics = Nop{}
)
