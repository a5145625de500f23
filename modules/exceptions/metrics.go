package exceptions

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Writes   *prometheus.CounterVec
	Duration prometheus.Histogram
	Items    prometheus.Gauge
	Units    prometheus.Gauge

	registry *prometheus.Registry
}

func NewMetrics() *Metrics {
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cart",
		Subsystem: "persist",
		Name:      "writes_total",
		Help:      "Total number of cart snapshot writes.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cart",
		Subsystem: "persist",
		Name:      "duration_ms",
		Help:      "Cart snapshot write latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	items := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cart",
		Name:      "items",
		Help:      "Distinct line items in the cart.",
	})
	units := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cart",
		Name:      "units",
		Help:      "Units across every line item in the cart.",
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(writes, duration, items, units)
	return &Metrics{
		Writes:   writes,
		Duration: duration,
		Items:    items,
		Units:    units,
		registry: registry,
	}
}

func (m *Metrics) Observe(took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.Writes.WithLabelValues(result).Inc()
	m.Duration.Observe(float64(took.Milliseconds()))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
