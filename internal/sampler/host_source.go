package sampler

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostSource reads counters of the machine the daemon runs on.
type HostSource struct{}

func NewHostSource() *HostSource {
	return &HostSource{}
}

func (s *HostSource) ReadCPUTicks(ctx context.Context) (TickBaseline, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return TickBaseline{}, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) == 0 {
		return TickBaseline{}, ErrNoCPUTimes
	}

	t := times[0]
	return TickBaseline{
		User:    t.User,
		Nice:    t.Nice,
		System:  t.System,
		Idle:    t.Idle,
		IOWait:  t.Iowait,
		IRQ:     t.Irq,
		SoftIRQ: t.Softirq,
		Steal:   t.Steal,
	}, nil
}

func (s *HostSource) ReadMemory(ctx context.Context) (MemoryReading, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryReading{}, fmt.Errorf("virtual memory: %w", err)
	}

	return MemoryReading{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
	}, nil
}

// Hostname returns the platform host name, or "localhost" if it cannot be
// determined.
func Hostname(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil || info.Hostname == "" {
		return "localhost"
	}
	return info.Hostname
}
