// Package metrics defines Prometheus metrics for the transit board.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the board collectors. Each instance owns its registry so
// independent boards do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	TicksTotal       prometheus.Counter
	DecrementsTotal  prometheus.Counter
	RendersTotal     *prometheus.CounterVec
	RejectedInput    *prometheus.CounterVec
	ApproachingBuses prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitboard_ticks_total",
			Help: "Total simulation ticks",
		}),
		DecrementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transitboard_decrements_total",
			Help: "Total minutes-to-arrival counters decremented",
		}),
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitboard_renders_total",
			Help: "Total rendered views by kind",
		}, []string{"view"}),
		RejectedInput: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transitboard_rejected_input_total",
			Help: "Total rejected stop selections by reason",
		}, []string{"reason"}),
		ApproachingBuses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transitboard_approaching_buses",
			Help: "Approaching buses tracked across all stops",
		}),
	}

	m.Registry.MustRegister(
		m.TicksTotal, m.DecrementsTotal,
		m.RendersTotal, m.RejectedInput,
		m.ApproachingBuses,
	)
	return m
}

// Summary flattens the registry into name -> value, summing over labels.
// Used for the shutdown log line.
func (m *Metrics) Summary() (map[string]float64, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(families))
	for _, mf := range families {
		var total float64
		for _, metric := range mf.GetMetric() {
			total += value(mf.GetType(), metric)
		}
		result[mf.GetName()] = total
	}
	return result, nil
}

func value(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return 0
	}
}
