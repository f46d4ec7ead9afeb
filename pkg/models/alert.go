package models

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

type Metric string

const (
	MetricCPU    Metric = "cpu"
	MetricMemory Metric = "memory"
)

// Label is the human readable metric name used in alert messages.
func (m Metric) Label() string {
	switch m {
	case MetricCPU:
		return "CPU"
	case MetricMemory:
		return "Memory"
	default:
		return string(m)
	}
}

type Direction string

const (
	DirectionHigh Direction = "high"
	DirectionLow  Direction = "low"
)

func (d Direction) Label() string {
	switch d {
	case DirectionHigh:
		return "High"
	case DirectionLow:
		return "Low"
	default:
		return string(d)
	}
}

// AlertClassification is the result of evaluating one metric against the
// threshold policy.
type AlertClassification struct {
	Severity  Severity  `json:"severity"`
	Metric    Metric    `json:"metric"`
	Direction Direction `json:"direction"`
	Value     float64   `json:"value"`
	Message   string    `json:"message"`
}

func NewAlertClassification(severity Severity, metric Metric, direction Direction, value float64) AlertClassification {
	return AlertClassification{
		Severity:  severity,
		Metric:    metric,
		Direction: direction,
		Value:     value,
		Message:   AlertMessage(metric, direction, value),
	}
}

// AlertMessage formats e.g. "High CPU Usage: 80.01%".
func AlertMessage(metric Metric, direction Direction, value float64) string {
	return fmt.Sprintf("%s %s Usage: %.2f%%", direction.Label(), metric.Label(), value)
}

// Alert is a persisted AlertClassification. SnapshotID is set when the
// snapshot of the same tick was stored first.
type Alert struct {
	ID         int64  `json:"id"`
	SnapshotID *int64 `json:"snapshot_id,omitempty"`
	AlertClassification
	CreatedAt time.Time `json:"created_at"`
}

func NewAlert(c AlertClassification, snapshotID *int64, createdAt time.Time) *Alert {
	return &Alert{
		SnapshotID:          snapshotID,
		AlertClassification: c,
		CreatedAt:           createdAt,
	}
}
