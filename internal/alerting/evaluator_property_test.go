package alerting

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/OldStager01/hostmon/pkg/models"
)

func TestEvaluate_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000
	properties := gopter.NewProperties(parameters)

	percent := gen.Float64Range(0, 100)

	properties.Property("at most one alert per metric", prop.ForAll(
		func(cpu, memory float64) bool {
			alerts := Evaluate(cpu, memory)
			if len(alerts) > 2 {
				return false
			}
			counts := map[models.Metric]int{}
			for _, a := range alerts {
				counts[a.Metric]++
			}
			return counts[models.MetricCPU] <= 1 && counts[models.MetricMemory] <= 1
		},
		percent, percent,
	))

	properties.Property("alerts carry the evaluated value", prop.ForAll(
		func(cpu, memory float64) bool {
			for _, a := range Evaluate(cpu, memory) {
				if a.Metric == models.MetricCPU && a.Value != cpu {
					return false
				}
				if a.Metric == models.MetricMemory && a.Value != memory {
					return false
				}
			}
			return true
		},
		percent, percent,
	))

	properties.Property("evaluation is deterministic", prop.ForAll(
		func(cpu, memory float64) bool {
			return reflect.DeepEqual(Evaluate(cpu, memory), Evaluate(cpu, memory))
		},
		percent, percent,
	))

	properties.Property("danger only above the danger threshold", prop.ForAll(
		func(cpu, memory float64) bool {
			for _, a := range Evaluate(cpu, memory) {
				if a.Severity != models.SeverityDanger {
					continue
				}
				if a.Metric == models.MetricCPU && cpu <= CPUDangerThreshold {
					return false
				}
				if a.Metric == models.MetricMemory && memory <= MemoryDangerThreshold {
					return false
				}
			}
			return true
		},
		percent, percent,
	))

	properties.TestingRun(t)
}
