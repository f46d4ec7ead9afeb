package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/OldStager01/hostmon/internal/events"
	"github.com/OldStager01/hostmon/internal/logger"
	"github.com/OldStager01/hostmon/internal/metrics"
	"github.com/OldStager01/hostmon/internal/monitor"
	"github.com/OldStager01/hostmon/internal/sampler"
	"github.com/OldStager01/hostmon/pkg/models"
)

type Config struct {
	Host            string
	Source          sampler.Source
	Sink            monitor.Sink
	Metrics         *metrics.Metrics
	EventBufferSize int
	// Interval and WarmUp override the defaults; tests use them to run fast.
	Interval time.Duration
	WarmUp   time.Duration
}

// Orchestrator owns the per-process monitoring pieces: the event bus, the
// samplers and the loop that drives them.
type Orchestrator struct {
	host     string
	eventBus *events.EventBus
	loop     *monitor.Loop
	metrics  *metrics.Metrics
	wg       sync.WaitGroup
}

func New(cfg Config) *Orchestrator {
	eventBus := events.NewEventBus(cfg.EventBufferSize)

	cpu := sampler.NewCPUSampler(sampler.CPUSamplerConfig{
		Source: cfg.Source,
		WarmUp: cfg.WarmUp,
	})

	loop := monitor.NewLoop(monitor.LoopConfig{
		Host:      cfg.Host,
		Interval:  cfg.Interval,
		CPU:       cpu,
		Memory:    sampler.NewMemorySampler(cfg.Source),
		Sink:      cfg.Sink,
		Publisher: events.NewPublisher(eventBus, cfg.Host),
		Metrics:   cfg.Metrics,
	})

	return &Orchestrator{
		host:     cfg.Host,
		eventBus: eventBus,
		loop:     loop,
		metrics:  cfg.Metrics,
	}
}

// Run starts the event log and the loop and blocks until ctx is done. The
// bus is closed once the loop has stopped.
func (o *Orchestrator) Run(ctx context.Context) error {
	logger.WithHost(o.host).Info("Orchestrator starting")

	o.startEventLog()
	err := o.loop.Run(ctx)

	o.eventBus.Close()
	o.wg.Wait()

	logger.WithHost(o.host).Info("Orchestrator stopped")
	return err
}

// RunOnce takes a single sample without starting the schedule.
func (o *Orchestrator) RunOnce(ctx context.Context) (*monitor.TickResult, error) {
	return o.loop.RunOnce(ctx)
}

func (o *Orchestrator) startEventLog() {
	ch := o.eventBus.SubscribeAll()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for event := range ch {
			logger.WithFields(map[string]interface{}{
				"event_id": event.ID,
				"type":     event.Type,
				"severity": event.Severity,
			}).Debugf("[EVENT] %s", event.Message)
		}
	}()
}

func (o *Orchestrator) SubscribeEvents(eventType models.EventType) <-chan *models.Event {
	return o.eventBus.Subscribe(eventType)
}

func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}

func (o *Orchestrator) Loop() *monitor.Loop {
	return o.loop
}

func (o *Orchestrator) IsRunning() bool {
	return o.loop.IsRunning()
}
