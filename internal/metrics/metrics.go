package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes counters for dataset, scheduling, report and tool flows.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	degradedTotal   *prometheus.CounterVec
	schedulingTotal *prometheus.CounterVec
	reportsSaved    prometheus.Counter
	toolsTotal      *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		degradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medcompanion",
			Subsystem: "store",
			Name:      "dataset_degraded_total",
			Help:      "Dataset loads that fell back to an empty collection",
		}, []string{"kind"}),
		schedulingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medcompanion",
			Subsystem: "scheduling",
			Name:      "operations_total",
			Help:      "Appointment operations by outcome",
		}, []string{"operation", "result"}),
		reportsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medcompanion",
			Subsystem: "reports",
			Name:      "saved_total",
			Help:      "Reports saved and summarized",
		}),
		toolsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medcompanion",
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Agent tool invocations by result status",
		}, []string{"tool", "status"}),
	}
	reg.MustRegister(m.degradedTotal, m.schedulingTotal, m.reportsSaved, m.toolsTotal)
	return m
}

func (m *Metrics) ObserveDegradedLoad(kind string) {
	if m == nil {
		return
	}
	m.degradedTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveScheduling(operation, result string) {
	if m == nil {
		return
	}
	m.schedulingTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveReportSaved() {
	if m == nil {
		return
	}
	m.reportsSaved.Inc()
}

func (m *Metrics) ObserveTool(tool, status string) {
	if m == nil {
		return
	}
	m.toolsTotal.WithLabelValues(tool, status).Inc()
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
