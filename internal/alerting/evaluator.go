package alerting

import "github.com/OldStager01/hostmon/pkg/models"

// Evaluate returns the CPU alert (if any) followed by the memory alert (if
// any). The result is never nil.
func Evaluate(cpuPercent, memoryPercent float64) []models.AlertClassification {
	alerts := make([]models.AlertClassification, 0, 2)

	if c, ok := classify(models.MetricCPU, cpuRules, cpuPercent); ok {
		alerts = append(alerts, c)
	}
	if c, ok := classify(models.MetricMemory, memoryRules, memoryPercent); ok {
		alerts = append(alerts, c)
	}

	return alerts
}

func classify(metric models.Metric, rules []Rule, value float64) (models.AlertClassification, bool) {
	for _, rule := range rules {
		if rule.Matches(value) {
			return models.NewAlertClassification(rule.Severity, metric, rule.Direction, value), true
		}
	}
	return models.AlertClassification{}, false
}
