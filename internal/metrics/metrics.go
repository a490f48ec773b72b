// Package metrics records batch counters on a private Prometheus registry and
// writes them in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/backmassage/batchconv/internal/kind"
)

// Result label values.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultMissing = "missing"
)

// Recorder owns the registry and every collector batchconv exports. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	items        *prometheus.CounterVec
	batches      *prometheus.CounterVec
	deleted      *prometheus.CounterVec
	itemDuration *prometheus.HistogramVec
	lastBatch    *prometheus.GaugeVec
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),

		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchconv_items_total",
			Help: "Work items processed by kind and result",
		}, []string{"kind", "result"}), // result=ok|failed

		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchconv_batches_total",
			Help: "Conversion batches by kind and overall status",
		}, []string{"kind", "status"}), // status=success|partial|failed

		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchconv_deleted_total",
			Help: "Source files matched by delete operations by result",
		}, []string{"kind", "result"}), // result=ok|missing|failed

		itemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batchconv_item_duration_seconds",
			Help:    "Wall time of a single conversion",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"kind"}),

		lastBatch: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "batchconv_last_batch_timestamp_seconds",
			Help: "Unix time the last batch of each kind finished",
		}, []string{"kind"}),
	}
	r.reg.MustRegister(r.items, r.batches, r.deleted, r.itemDuration, r.lastBatch)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// ObserveItem records one finished work item.
func (r *Recorder) ObserveItem(k kind.Kind, ok bool, d time.Duration) {
	if r == nil {
		return
	}
	result := ResultOK
	if !ok {
		result = ResultFailed
	}
	r.items.WithLabelValues(k.String(), result).Inc()
	if d > 0 {
		r.itemDuration.WithLabelValues(k.String()).Observe(d.Seconds())
	}
}

// ObserveBatch records a finished batch with its status label.
func (r *Recorder) ObserveBatch(k kind.Kind, status string, finished time.Time) {
	if r == nil {
		return
	}
	r.batches.WithLabelValues(k.String(), status).Inc()
	r.lastBatch.WithLabelValues(k.String()).Set(float64(finished.Unix()))
}

// ObserveDeletion records the tallies of one delete operation.
func (r *Recorder) ObserveDeletion(k kind.Kind, deleted, missing, failed int) {
	if r == nil {
		return
	}
	r.deleted.WithLabelValues(k.String(), ResultOK).Add(float64(deleted))
	r.deleted.WithLabelValues(k.String(), ResultMissing).Add(float64(missing))
	r.deleted.WithLabelValues(k.String(), ResultFailed).Add(float64(failed))
}
