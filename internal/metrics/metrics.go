// Package metrics provides Prometheus instrumentation for oracle calls and
// searches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thurmanmarka/retroglide/internal/motion"
	"github.com/thurmanmarka/retroglide/internal/solver"
)

const defaultNamespace = "retroglide"

// Collector holds all metrics for one process.
type Collector struct {
	OracleCalls    *prometheus.CounterVec
	OracleErrors   *prometheus.CounterVec
	OracleDuration *prometheus.HistogramVec

	Searches       *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec

	Movement *prometheus.GaugeVec
}

// New registers the metrics on reg. A nil reg registers on the default
// registerer.
func New(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		OracleCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Total number of longitude oracle calls by body",
		}, []string{"body"}),
		OracleErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "errors_total",
			Help:      "Total number of failed longitude oracle calls by body",
		}, []string{"body"}),
		OracleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Duration of longitude oracle calls",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"body"}),

		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "total",
			Help:      "Total number of searches by kind, body and outcome",
		}, []string{"kind", "body", "outcome"}),
		SearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Duration of searches by kind",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}, []string{"kind"}),

		Movement: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "body",
			Name:      "movement",
			Help:      "Current apparent movement by body: 1 direct, -1 retrograde, 0 stationary",
		}, []string{"body"}),
	}
}

// Instrument wraps an oracle so every call is counted and timed.
func (c *Collector) Instrument(o solver.Oracle) solver.Oracle {
	return solver.OracleFunc(func(key string, t time.Time) (float64, error) {
		start := time.Now()
		lon, err := o.ApparentLongitude(key, t)
		c.OracleDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
		c.OracleCalls.WithLabelValues(key).Inc()
		if err != nil {
			c.OracleErrors.WithLabelValues(key).Inc()
		}
		return lon, err
	})
}

// ObserveSearch records one finished search that began at start.
func (c *Collector) ObserveSearch(kind, body string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Searches.WithLabelValues(kind, body, outcome).Inc()
	c.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// SetMovement publishes the current movement of body.
func (c *Collector) SetMovement(body string, m motion.Movement) {
	v := 0.0
	switch m {
	case motion.MovementDirect:
		v = 1
	case motion.MovementRetrograde:
		v = -1
	}
	c.Movement.WithLabelValues(body).Set(v)
}

// Handler serves the metrics gathered by g. A nil g serves the default
// gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
