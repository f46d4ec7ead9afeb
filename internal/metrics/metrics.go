package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/hostmon/pkg/models"
)

const namespace = "hostmon"

// Metrics exports the daemon's own telemetry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	cpuPercent      prometheus.Gauge
	memoryPercent   prometheus.Gauge
	memoryUsedBytes prometheus.Gauge

	ticksTotal        prometheus.Counter
	skippedTicks      prometheus.Counter
	samplingErrors    prometheus.Counter
	persistenceErrors *prometheus.CounterVec
	alertsTotal       *prometheus.CounterVec

	tickDuration        prometheus.Histogram
	circuitBreakerState *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_percent",
			Help:      "CPU utilization of the last successful tick.",
		}),
		memoryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_percent",
			Help:      "Memory utilization of the last successful tick.",
		}),
		memoryUsedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_used_bytes",
			Help:      "Used memory of the last successful tick.",
		}),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Monitoring ticks started.",
		}),
		skippedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_skipped_total",
			Help:      "Ticks skipped because another tick was still running.",
		}),
		samplingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sampling_errors_total",
			Help:      "Ticks abandoned because a platform read failed.",
		}),
		persistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Failed writes to the store.",
		}, []string{"record"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised by metric and severity.",
		}, []string{"metric", "severity"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time of a monitoring tick.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		circuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "0=closed, 1=open, 2=half-open.",
		}, []string{"name"}),
	}

	registry.MustRegister(
		m.cpuPercent,
		m.memoryPercent,
		m.memoryUsedBytes,
		m.ticksTotal,
		m.skippedTicks,
		m.samplingErrors,
		m.persistenceErrors,
		m.alertsTotal,
		m.tickDuration,
		m.circuitBreakerState,
	)

	return m
}

func (m *Metrics) ObserveSnapshot(s *models.Snapshot) {
	if m == nil {
		return
	}
	m.cpuPercent.Set(s.CPUPercent)
	m.memoryPercent.Set(s.MemoryPercent)
	m.memoryUsedBytes.Set(float64(s.MemoryUsedBytes))
}

func (m *Metrics) IncTicks() {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
}

func (m *Metrics) IncSkippedTicks() {
	if m == nil {
		return
	}
	m.skippedTicks.Inc()
}

func (m *Metrics) IncSamplingErrors() {
	if m == nil {
		return
	}
	m.samplingErrors.Inc()
}

func (m *Metrics) IncPersistenceErrors(record string) {
	if m == nil {
		return
	}
	m.persistenceErrors.WithLabelValues(record).Inc()
}

func (m *Metrics) IncAlert(metric models.Metric, severity models.Severity) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(string(metric), string(severity)).Inc()
}

func (m *Metrics) ObserveTickDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.circuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
