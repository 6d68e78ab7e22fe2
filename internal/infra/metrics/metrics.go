// Package metrics exposes split counters through Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	domshopping "example.com/divide-account/internal/domain/shopping"
	domsplit "example.com/divide-account/internal/domain/split"
)

type Recorder struct {
	splits             prometheus.Counter
	validationFailures *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	totals             prometheus.Histogram
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "divide",
			Name:      "splits_total",
			Help:      "Splits computed and recorded.",
		}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "divide",
			Name:      "validation_failures_total",
			Help:      "Rejected inputs by offending field.",
		}, []string{"field"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "divide",
			Name:      "notifications_total",
			Help:      "Share notifications by result.",
		}, []string{"result"}),
		totals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "divide",
			Name:      "split_amount_units",
			Help:      "Total cost of computed splits, in currency units.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
		}),
	}
	reg.MustRegister(r.splits, r.validationFailures, r.notifications, r.totals)
	return r
}

func (r *Recorder) SplitComputed(alloc domsplit.Allocation) {
	r.splits.Inc()
	r.totals.Observe(float64(alloc.Total))
}

func (r *Recorder) ValidationFailed(verr *domshopping.ValidationError) {
	if !verr.ShoppingList.Empty() {
		r.validationFailures.WithLabelValues("shopping_list").Inc()
	}
	if !verr.Emails.Empty() {
		r.validationFailures.WithLabelValues("emails").Inc()
	}
}

func (r *Recorder) NotificationSent(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.notifications.WithLabelValues(result).Inc()
}
