package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/OldStager01/hostmon/pkg/models"
)

// DefaultWarmUp is how long the first Sample call waits between its two
// reads so there is a measurable tick delta.
const DefaultWarmUp = time.Second

type CPUSamplerConfig struct {
	Source Source
	WarmUp time.Duration
}

// CPUSampler converts successive tick readings into a utilization
// percentage. It keeps the previous reading between calls and is not safe
// for concurrent use.
type CPUSampler struct {
	source    Source
	warmUp    time.Duration
	sleep     func(time.Duration)
	lastTicks *TickBaseline
}

func NewCPUSampler(cfg CPUSamplerConfig) *CPUSampler {
	warmUp := cfg.WarmUp
	if warmUp <= 0 {
		warmUp = DefaultWarmUp
	}

	return &CPUSampler{
		source: cfg.Source,
		warmUp: warmUp,
		sleep:  time.Sleep,
	}
}

// Sample returns system-wide CPU utilization since the previous call,
// rounded to two decimals. The first call blocks for the warm-up interval.
func (s *CPUSampler) Sample(ctx context.Context) (float64, error) {
	if s.lastTicks == nil {
		baseline, err := s.source.ReadCPUTicks(ctx)
		if err != nil {
			return 0, fmt.Errorf("%w: read cpu ticks: %w", ErrSamplingFailed, err)
		}
		s.lastTicks = &baseline
		s.sleep(s.warmUp)
	}

	current, err := s.source.ReadCPUTicks(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: read cpu ticks: %w", ErrSamplingFailed, err)
	}

	percent := Utilization(*s.lastTicks, current)
	s.lastTicks = &current

	return percent, nil
}

// Primed reports whether a baseline has been captured.
func (s *CPUSampler) Primed() bool {
	return s.lastTicks != nil
}

// Utilization returns the share of non-idle time between two readings as a
// percentage in [0, 100], rounded to two decimals. No elapsed time yields 0.
func Utilization(prev, curr TickBaseline) float64 {
	total := curr.Total() - prev.Total()
	if total <= 0 {
		return 0
	}

	idle := curr.IdleTotal() - prev.IdleTotal()
	percent := (total - idle) / total * 100

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return models.Round2(percent)
}
