// Package alerting classifies CPU and memory readings against the fixed
// threshold policy.
package alerting

import "github.com/OldStager01/hostmon/pkg/models"

const (
	CPUDangerThreshold  = 80.0
	CPUWarningThreshold = 20.0
	CPULowThreshold     = 10.0

	MemoryDangerThreshold  = 90.0
	MemoryWarningThreshold = 65.0
	MemoryLowThreshold     = 30.0
)

// Rule maps a predicate on a metric value to an alert classification.
type Rule struct {
	Severity  models.Severity
	Direction models.Direction
	Matches   func(value float64) bool
}

func above(threshold float64) func(float64) bool {
	return func(v float64) bool { return v > threshold }
}

func below(threshold float64) func(float64) bool {
	return func(v float64) bool { return v < threshold }
}

// Rules are ordered strictest first; evaluation stops at the first match,
// so a metric yields at most one alert.
var (
	cpuRules = []Rule{
		{Severity: models.SeverityDanger, Direction: models.DirectionHigh, Matches: above(CPUDangerThreshold)},
		{Severity: models.SeverityWarning, Direction: models.DirectionHigh, Matches: above(CPUWarningThreshold)},
		{Severity: models.SeverityInfo, Direction: models.DirectionLow, Matches: below(CPULowThreshold)},
	}

	memoryRules = []Rule{
		{Severity: models.SeverityDanger, Direction: models.DirectionHigh, Matches: above(MemoryDangerThreshold)},
		{Severity: models.SeverityWarning, Direction: models.DirectionHigh, Matches: above(MemoryWarningThreshold)},
		{Severity: models.SeverityInfo, Direction: models.DirectionLow, Matches: below(MemoryLowThreshold)},
	}
)

// RulesFor returns a copy of the rule chain for a metric.
func RulesFor(metric models.Metric) []Rule {
	var rules []Rule
	switch metric {
	case models.MetricCPU:
		rules = cpuRules
	case models.MetricMemory:
		rules = memoryRules
	}
	return append([]Rule(nil), rules...)
}
