package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource returns the queued readings in order and repeats the last
// one once the queue is exhausted.
type scriptedSource struct {
	ticks  []TickBaseline
	errs   []error
	memory MemoryReading
	memErr error
	reads  int
}

func (s *scriptedSource) ReadCPUTicks(ctx context.Context) (TickBaseline, error) {
	i := s.reads
	s.reads++
	if i < len(s.errs) && s.errs[i] != nil {
		return TickBaseline{}, s.errs[i]
	}
	if i >= len(s.ticks) {
		i = len(s.ticks) - 1
	}
	return s.ticks[i], nil
}

func (s *scriptedSource) ReadMemory(ctx context.Context) (MemoryReading, error) {
	return s.memory, s.memErr
}

func newTestCPUSampler(src Source) (*CPUSampler, *[]time.Duration) {
	var slept []time.Duration
	s := NewCPUSampler(CPUSamplerConfig{Source: src})
	s.sleep = func(d time.Duration) { slept = append(slept, d) }
	return s, &slept
}

func TestCPUSampler_FirstCallWarmsUp(t *testing.T) {
	src := &scriptedSource{ticks: []TickBaseline{
		{User: 100, Idle: 900},
		{User: 130, Idle: 970},
	}}
	s, slept := newTestCPUSampler(src)

	require.False(t, s.Primed())

	percent, err := s.Sample(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{DefaultWarmUp}, *slept)
	assert.Equal(t, 2, src.reads)
	assert.Equal(t, 30.0, percent)
	assert.True(t, s.Primed())
}

func TestCPUSampler_SubsequentCallsUseLastReading(t *testing.T) {
	src := &scriptedSource{ticks: []TickBaseline{
		{User: 0, Idle: 0},
		{User: 50, Idle: 50},
		{User: 50, System: 40, Idle: 60},
		{User: 50, System: 40, Idle: 160},
	}}
	s, slept := newTestCPUSampler(src)
	ctx := context.Background()

	first, err := s.Sample(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, first)

	second, err := s.Sample(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80.0, second)

	third, err := s.Sample(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, third)

	assert.Len(t, *slept, 1, "only the first call should wait")
}

func TestCPUSampler_ReadErrorIsSamplingError(t *testing.T) {
	platformErr := errors.New("proc unavailable")
	src := &scriptedSource{
		ticks: []TickBaseline{{User: 1, Idle: 1}},
		errs:  []error{platformErr},
	}
	s, _ := newTestCPUSampler(src)

	_, err := s.Sample(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSamplingFailed)
	assert.ErrorIs(t, err, platformErr)
	assert.False(t, s.Primed())
}

func TestCPUSampler_FailedSecondReadKeepsBaseline(t *testing.T) {
	src := &scriptedSource{
		ticks: []TickBaseline{{User: 10, Idle: 10}, {}, {User: 20, Idle: 20}},
		errs:  []error{nil, errors.New("transient")},
	}
	s, slept := newTestCPUSampler(src)
	ctx := context.Background()

	_, err := s.Sample(ctx)
	require.ErrorIs(t, err, ErrSamplingFailed)
	require.True(t, s.Primed())

	percent, err := s.Sample(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, percent)
	assert.Len(t, *slept, 1)
}

func TestUtilization(t *testing.T) {
	tests := []struct {
		name     string
		prev     TickBaseline
		curr     TickBaseline
		expected float64
	}{
		{
			name:     "fully busy",
			prev:     TickBaseline{User: 10},
			curr:     TickBaseline{User: 20, System: 10},
			expected: 100,
		},
		{
			name:     "fully idle",
			prev:     TickBaseline{Idle: 10},
			curr:     TickBaseline{Idle: 30},
			expected: 0,
		},
		{
			name:     "iowait counts as idle",
			prev:     TickBaseline{},
			curr:     TickBaseline{User: 25, IOWait: 25, Idle: 50},
			expected: 25,
		},
		{
			name:     "all busy states count",
			prev:     TickBaseline{},
			curr:     TickBaseline{User: 1, Nice: 1, System: 1, IRQ: 1, SoftIRQ: 1, Steal: 1, Idle: 4},
			expected: 60,
		},
		{
			name:     "rounds to two decimals",
			prev:     TickBaseline{},
			curr:     TickBaseline{User: 1, Idle: 2},
			expected: 33.33,
		},
		{
			name:     "no elapsed ticks",
			prev:     TickBaseline{User: 5, Idle: 5},
			curr:     TickBaseline{User: 5, Idle: 5},
			expected: 0,
		},
		{
			name:     "counter reset yields zero",
			prev:     TickBaseline{User: 50, Idle: 50},
			curr:     TickBaseline{User: 1, Idle: 1},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Utilization(tt.prev, tt.curr))
		})
	}
}
