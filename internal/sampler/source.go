// Package sampler turns raw platform counters into CPU and memory
// utilization readings.
package sampler

import (
	"context"
	"errors"
)

var (
	ErrSamplingFailed       = errors.New("sampling failed")
	ErrNoCPUTimes           = errors.New("platform reported no cpu times")
	ErrZeroTotalMemory      = errors.New("platform reported zero total memory")
	ErrInvalidMemoryReading = errors.New("available memory exceeds total memory")
)

// Source reads point-in-time counters from the platform.
type Source interface {
	// ReadCPUTicks returns the cumulative CPU time counters since boot.
	ReadCPUTicks(ctx context.Context) (TickBaseline, error)

	// ReadMemory returns total and available memory from a single read.
	ReadMemory(ctx context.Context) (MemoryReading, error)
}

// TickBaseline holds cumulative CPU time per CPU state, aggregated over all
// cores. Units are whatever the platform reports; only deltas matter.
type TickBaseline struct {
	User    float64
	Nice    float64
	System  float64
	Idle    float64
	IOWait  float64
	IRQ     float64
	SoftIRQ float64
	Steal   float64
}

func (t TickBaseline) Total() float64 {
	return t.User + t.Nice + t.System + t.Idle + t.IOWait + t.IRQ + t.SoftIRQ + t.Steal
}

// IdleTotal counts iowait as idle time.
func (t TickBaseline) IdleTotal() float64 {
	return t.Idle + t.IOWait
}

type MemoryReading struct {
	TotalBytes     uint64
	AvailableBytes uint64
}
