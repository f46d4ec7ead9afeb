package sampler

import (
	"context"
	"fmt"

	"github.com/OldStager01/hostmon/pkg/models"
)

type MemoryUsage struct {
	UsedBytes  uint64
	TotalBytes uint64
	Percent    float64
}

type MemorySampler struct {
	source Source
}

func NewMemorySampler(source Source) *MemorySampler {
	return &MemorySampler{source: source}
}

func (s *MemorySampler) Sample(ctx context.Context) (MemoryUsage, error) {
	reading, err := s.source.ReadMemory(ctx)
	if err != nil {
		return MemoryUsage{}, fmt.Errorf("%w: read memory: %w", ErrSamplingFailed, err)
	}

	return ComputeMemoryUsage(reading)
}

// ComputeMemoryUsage derives used bytes and percentage from a reading.
func ComputeMemoryUsage(reading MemoryReading) (MemoryUsage, error) {
	if reading.TotalBytes == 0 {
		return MemoryUsage{}, fmt.Errorf("%w: %w", ErrSamplingFailed, ErrZeroTotalMemory)
	}
	if reading.AvailableBytes > reading.TotalBytes {
		return MemoryUsage{}, fmt.Errorf("%w: %w (available=%d total=%d)",
			ErrSamplingFailed, ErrInvalidMemoryReading, reading.AvailableBytes, reading.TotalBytes)
	}

	used := reading.TotalBytes - reading.AvailableBytes

	return MemoryUsage{
		UsedBytes:  used,
		TotalBytes: reading.TotalBytes,
		Percent:    models.Round2(float64(used) / float64(reading.TotalBytes) * 100),
	}, nil
}
