package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sapphire-forecast/sapphire-go/pkg/batch"
	"github.com/sapphire-forecast/sapphire-go/pkg/transport"
)

const namespace = "sapphire"

// Outcome label values for attempts that got no HTTP status.
const (
	OutcomeNetwork = "network"
)

// Collector records request attempts and batch submissions.
type Collector struct {
	attempts     *prometheus.CounterVec
	retries      *prometheus.CounterVec
	backoff      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	batches      *prometheus.CounterVec
	records      *prometheus.CounterVec
	batchLatency *prometheus.HistogramVec
}

var (
	_ transport.Observer = (*Collector)(nil)
	_ batch.Observer     = (*Collector)(nil)
)

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "attempts_total",
			Help:      "HTTP attempts made, by method and outcome (status code or network).",
		}, []string{"method", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "retries_total",
			Help:      "Attempts that were followed by a retry.",
		}, []string{"method"}),
		backoff: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "backoff_seconds_total",
			Help:      "Time spent waiting between attempts.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of single HTTP attempts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "submitted_total",
			Help:      "Batches submitted, by path and result.",
		}, []string{"path", "result"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "records_posted_total",
			Help:      "Records accepted by the server.",
		}, []string{"path"}),
		batchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Time to submit one batch, retries included.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"path"}),
	}
	reg.MustRegister(c.attempts, c.retries, c.backoff, c.duration, c.batches, c.records, c.batchLatency)
	return c
}

// ObserveAttempt implements transport.Observer.
func (c *Collector) ObserveAttempt(a transport.Attempt) {
	outcome := OutcomeNetwork
	if a.StatusCode != 0 {
		outcome = strconv.Itoa(a.StatusCode)
	}
	c.attempts.WithLabelValues(a.Method, outcome).Inc()
	c.duration.WithLabelValues(a.Method).Observe(a.Duration.Seconds())
	if a.Retry {
		c.retries.WithLabelValues(a.Method).Inc()
		c.backoff.WithLabelValues(a.Method).Add(a.Wait.Seconds())
	}
}

// ObserveBatch implements batch.Observer.
func (c *Collector) ObserveBatch(r batch.Result) {
	result := "success"
	if r.Err != nil {
		result = "failure"
	} else {
		c.records.WithLabelValues(r.Path).Add(float64(r.Records))
	}
	c.batches.WithLabelValues(r.Path, result).Inc()
	c.batchLatency.WithLabelValues(r.Path).Observe(r.Duration.Seconds())
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
