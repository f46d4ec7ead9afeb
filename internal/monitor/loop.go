package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OldStager01/hostmon/internal/alerting"
	"github.com/OldStager01/hostmon/internal/events"
	"github.com/OldStager01/hostmon/internal/logger"
	"github.com/OldStager01/hostmon/internal/metrics"
	"github.com/OldStager01/hostmon/internal/sampler"
	"github.com/OldStager01/hostmon/pkg/models"
)

// DefaultInterval is the fixed sampling period.
const DefaultInterval = 5 * time.Second

var ErrTickInProgress = errors.New("monitor tick already in progress")

type State int32

const (
	StateIdle State = iota
	StateSampling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	default:
		return "unknown"
	}
}

type CPUSampler interface {
	Sample(ctx context.Context) (float64, error)
}

type MemorySampler interface {
	Sample(ctx context.Context) (sampler.MemoryUsage, error)
}

// Sink stores snapshots and alerts. Both calls are append-only and return
// the id assigned by the store.
type Sink interface {
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (int64, error)
	SaveAlert(ctx context.Context, alert *models.Alert) (int64, error)
}

type LoopConfig struct {
	Host      string
	Interval  time.Duration
	CPU       CPUSampler
	Memory    MemorySampler
	Sink      Sink

	// Publisher and Metrics are optional.
	Publisher *events.Publisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// TickResult is what a completed tick produced. Errors holds persistence
// failures; the snapshot and alerts are returned even if storing them failed.
type TickResult struct {
	Snapshot *models.Snapshot `json:"snapshot"`
	Alerts   []*models.Alert  `json:"alerts"`
	Errors   []error          `json:"-"`
}

type Loop struct {
	config  LoopConfig
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex

	tickMu sync.Mutex
	state  atomic.Int32
}

func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Loop{config: cfg}
}

func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return nil
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.running = true
	l.wg.Add(1)
	go l.run()

	logger.WithHost(l.config.Host).Infof("Monitoring loop started (interval %s)", l.config.Interval)
	return nil
}

// Stop halts scheduling and waits for an in-flight tick to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()

	logger.WithHost(l.config.Host).Info("Monitoring loop stopped")
}

// Run starts the loop and blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	l.Stop()
	return nil
}

func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) run() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	l.tick()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	ctx := context.WithoutCancel(l.ctx)
	if _, err := l.RunOnce(ctx); errors.Is(err, ErrTickInProgress) {
		logger.WithHost(l.config.Host).Debug("Previous tick still running, skipping")
	}
}

// RunOnce executes a single tick synchronously. It returns ErrTickInProgress
// without sampling if another tick holds the loop, and a wrapped
// sampler.ErrSamplingFailed if the tick was abandoned.
func (l *Loop) RunOnce(ctx context.Context) (*TickResult, error) {
	if !l.tickMu.TryLock() {
		l.config.Metrics.IncSkippedTicks()
		return nil, ErrTickInProgress
	}
	defer l.tickMu.Unlock()

	l.state.Store(int32(StateSampling))
	defer l.state.Store(int32(StateIdle))

	started := time.Now()
	l.config.Metrics.IncTicks()
	defer func() {
		l.config.Metrics.ObserveTickDuration(time.Since(started))
	}()

	snapshot, err := l.sample(ctx)
	if err != nil {
		logger.WithHost(l.config.Host).WithError(err).Error("Sampling failed, tick abandoned")
		l.config.Metrics.IncSamplingErrors()
		l.config.Publisher.SamplingFailed(err)
		return nil, err
	}

	result := &TickResult{Snapshot: snapshot}

	if err := l.saveSnapshot(ctx, snapshot); err != nil {
		result.Errors = append(result.Errors, err)
	}

	var snapshotID *int64
	if snapshot.ID != 0 {
		id := snapshot.ID
		snapshotID = &id
	}

	for _, classification := range alerting.Evaluate(snapshot.CPUPercent, snapshot.MemoryPercent) {
		alert := models.NewAlert(classification, snapshotID, snapshot.TakenAt)
		if err := l.saveAlert(ctx, alert); err != nil {
			result.Errors = append(result.Errors, err)
		}
		result.Alerts = append(result.Alerts, alert)
	}

	return result, nil
}

func (l *Loop) sample(ctx context.Context) (*models.Snapshot, error) {
	cpuPercent, err := l.config.CPU.Sample(ctx)
	if err != nil {
		return nil, err
	}

	memory, err := l.config.Memory.Sample(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &models.Snapshot{
		CPUPercent:       cpuPercent,
		MemoryUsedBytes:  memory.UsedBytes,
		MemoryTotalBytes: memory.TotalBytes,
		MemoryPercent:    memory.Percent,
		TakenAt:          l.config.Now(),
	}

	log := logger.WithHost(l.config.Host)
	log.Infof("CPU Usage: %.2f%%", snapshot.CPUPercent)
	log.Infof("Memory Usage: %.2f%%", snapshot.MemoryPercent)
	log.Infof("Memory Used MB: %d", snapshot.MemoryUsedMB())

	l.config.Metrics.ObserveSnapshot(snapshot)
	return snapshot, nil
}

func (l *Loop) saveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	id, err := l.config.Sink.SaveSnapshot(ctx, snapshot)
	if err != nil {
		l.persistenceFailed("snapshot", err)
		return err
	}

	snapshot.ID = id
	l.config.Publisher.SnapshotRecorded(snapshot)
	return nil
}

func (l *Loop) saveAlert(ctx context.Context, alert *models.Alert) error {
	logger.WithHost(l.config.Host).WithFields(map[string]interface{}{
		"severity": alert.Severity,
		"metric":   alert.Metric,
	}).Warn(alert.Message)
	l.config.Metrics.IncAlert(alert.Metric, alert.Severity)

	id, err := l.config.Sink.SaveAlert(ctx, alert)
	if err != nil {
		l.persistenceFailed("alert", err)
	} else {
		alert.ID = id
	}

	l.config.Publisher.AlertRaised(alert)
	return err
}

func (l *Loop) persistenceFailed(record string, err error) {
	logger.WithHost(l.config.Host).WithError(err).Errorf("Failed to persist %s", record)
	l.config.Metrics.IncPersistenceErrors(record)
	l.config.Publisher.PersistenceFailed(record, err)
}
