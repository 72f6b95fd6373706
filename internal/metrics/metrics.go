package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "rampsim"

// Recorder holds the run's metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	rowsAppended   *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	stepFailures   *prometheus.CounterVec
	lastDate       prometheus.Gauge
	quotesFallback prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_appended_total",
			Help:      "Rows acknowledged by the warehouse.",
		}, []string{"table"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of a loader step.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"table", "outcome"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_failures_total",
			Help:      "Loader step failures by error kind.",
		}, []string{"table", "kind"}),
		lastDate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_date_timestamp_seconds",
			Help:      "Last committed incremental date as a unix timestamp.",
		}),
		quotesFallback: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quotes_fallback",
			Help:      "1 if the run generated against static fallback quotes.",
		}),
	}
	r.registry.MustRegister(r.rowsAppended, r.stepDuration, r.stepFailures, r.lastDate, r.quotesFallback)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// StepCommitted records a successful step.
func (r *Recorder) StepCommitted(table string, rows int, d time.Duration) {
	if r == nil {
		return
	}
	r.rowsAppended.WithLabelValues(table).Add(float64(rows))
	r.stepDuration.WithLabelValues(table, "committed").Observe(d.Seconds())
}

// StepFailed records a failed step.
func (r *Recorder) StepFailed(table, kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.stepFailures.WithLabelValues(table, kind).Inc()
	r.stepDuration.WithLabelValues(table, "failed").Observe(d.Seconds())
}

// LastDate records the last committed incremental date.
func (r *Recorder) LastDate(t time.Time) {
	if r == nil {
		return
	}
	r.lastDate.Set(float64(t.Unix()))
}

// QuotesFallback records whether fallback quotes were used.
func (r *Recorder) QuotesFallback(used bool) {
	if r == nil {
		return
	}
	if used {
		r.quotesFallback.Set(1)
	} else {
		r.quotesFallback.Set(0)
	}
}

// Push sends the registry to a Pushgateway, grouped by instance.
func (r *Recorder) Push(ctx context.Context, url, job, instance string) error {
	if r == nil || url == "" {
		return nil
	}
	pusher := push.New(url, job).Gatherer(r.registry)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
