package sampler

import (
	"context"
	"math/rand"
	"sync"
)

const (
	defaultSyntheticTotalMemory = 8 << 30
	ticksPerRead                = 100.0
)

type SyntheticSourceConfig struct {
	BaseCPU          float64
	BaseMemory       float64
	Variance         float64
	TotalMemoryBytes uint64
}

// SyntheticSource fabricates counters that hover around a configured load.
// Each ReadCPUTicks call advances the counters by a fixed amount split
// between busy and idle time.
type SyntheticSource struct {
	mu           sync.Mutex
	ticks        TickBaseline
	baseCPU      float64
	baseMemory   float64
	variance     float64
	totalMemory  uint64
	shouldFail   bool
	failureError error
}

func NewSyntheticSource(cfg SyntheticSourceConfig) *SyntheticSource {
	totalMemory := cfg.TotalMemoryBytes
	if totalMemory == 0 {
		totalMemory = defaultSyntheticTotalMemory
	}

	return &SyntheticSource{
		baseCPU:     cfg.BaseCPU,
		baseMemory:  cfg.BaseMemory,
		variance:    cfg.Variance,
		totalMemory: totalMemory,
	}
}

func (s *SyntheticSource) SetBaseCPU(cpu float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseCPU = cpu
}

func (s *SyntheticSource) SetBaseMemory(memory float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseMemory = memory
}

func (s *SyntheticSource) SetShouldFail(shouldFail bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFail = shouldFail
	s.failureError = err
}

func (s *SyntheticSource) ReadCPUTicks(ctx context.Context) (TickBaseline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure(); err != nil {
		return TickBaseline{}, err
	}

	busy := ticksPerRead * s.randomValue(s.baseCPU) / 100
	s.ticks.User += busy
	s.ticks.Idle += ticksPerRead - busy

	return s.ticks, nil
}

func (s *SyntheticSource) ReadMemory(ctx context.Context) (MemoryReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure(); err != nil {
		return MemoryReading{}, err
	}

	used := uint64(float64(s.totalMemory) * s.randomValue(s.baseMemory) / 100)
	return MemoryReading{
		TotalBytes:     s.totalMemory,
		AvailableBytes: s.totalMemory - used,
	}, nil
}

func (s *SyntheticSource) failure() error {
	if !s.shouldFail {
		return nil
	}
	if s.failureError != nil {
		return s.failureError
	}
	return ErrSamplingFailed
}

func (s *SyntheticSource) randomValue(base float64) float64 {
	value := base
	if s.variance > 0 {
		value += (rand.Float64()*2 - 1) * s.variance
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return value
}
