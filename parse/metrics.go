package parse

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	total      *prometheus.CounterVec
	rejections *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// newMetrics registers the parser collectors with r. Parsers sharing a
// registerer share the collectors already registered there.
func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veloxq_parse_total",
			Help: "The total number of parse calls by operation and result",
		}, []string{"op", "result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "veloxq_parse_rejections_total",
			Help: "The number of rejected inputs by error kind",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veloxq_parse_duration_seconds",
			Help:    "The duration of parse calls",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"op"}),
	}
	var err error
	if m.total, err = register(r, m.total); err != nil {
		return nil, err
	}
	if m.rejections, err = register(r, m.rejections); err != nil {
		return nil, err
	}
	if m.duration, err = register(r, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) (C, error) {
	err := r.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, err
}
