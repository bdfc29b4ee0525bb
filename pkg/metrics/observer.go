// Package metrics exposes controller activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Collector owns the metric vectors. Bind it to a form id with Observer.
type Collector struct {
	validations *prometheus.CounterVec
	submits     *prometheus.CounterVec
	submitTime  *prometheus.HistogramVec
	removals    *prometheus.CounterVec
}

// NewCollector builds the vectors and registers them on reg when reg is
// non-nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formstate",
				Name:      "field_validations_total",
				Help:      "Field validations by form, field and outcome.",
			},
			[]string{"form", "field", "outcome"},
		),
		submits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formstate",
				Name:      "submits_total",
				Help:      "Form submits by form and outcome.",
			},
			[]string{"form", "outcome"},
		),
		submitTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "formstate",
				Name:      "submit_duration_seconds",
				Help:      "Time spent validating a submit.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"form"},
		),
		removals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formstate",
				Name:      "field_removals_total",
				Help:      "Fields removed after their element left the document.",
			},
			[]string{"form"},
		),
	}
	if reg != nil {
		for _, col := range []prometheus.Collector{c.validations, c.submits, c.submitTime, c.removals} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Observer returns a form.Observer that records under formID.
func (c *Collector) Observer(formID string) form.Observer {
	return observer{c: c, form: formID}
}

type observer struct {
	c    *Collector
	form string
}

var _ form.Observer = observer{}

func (o observer) FieldValidated(name string, valid bool) {
	o.c.validations.WithLabelValues(o.form, name, outcome(valid)).Inc()
}

func (o observer) FormSubmitted(valid bool, elapsed time.Duration) {
	o.c.submits.WithLabelValues(o.form, outcome(valid)).Inc()
	o.c.submitTime.WithLabelValues(o.form).Observe(elapsed.Seconds())
}

func (o observer) FieldRemoved(string) {
	o.c.removals.WithLabelValues(o.form).Inc()
}

func outcome(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
