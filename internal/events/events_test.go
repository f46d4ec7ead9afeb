package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/hostmon/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return nil
	}
}

func TestPublisher_SnapshotRecorded(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeSnapshotRecorded)
	publisher := NewPublisher(bus, "node-1")

	snapshot := &models.Snapshot{ID: 1, CPUPercent: 42}
	publisher.SnapshotRecorded(snapshot)

	event := receive(t, ch)
	assert.Equal(t, models.EventTypeSnapshotRecorded, event.Type)
	assert.Equal(t, "node-1", event.Host)
	assert.Equal(t, snapshot, event.Data)
	assert.NotEmpty(t, event.ID)
}

func TestPublisher_AlertRaisedCarriesSeverity(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()
	publisher := NewPublisher(bus, "node-1")

	c := models.NewAlertClassification(models.SeverityDanger, models.MetricCPU, models.DirectionHigh, 99)
	publisher.AlertRaised(models.NewAlert(c, nil, time.Now()))

	event := receive(t, ch)
	assert.Equal(t, models.EventTypeAlertRaised, event.Type)
	assert.Equal(t, models.SeverityDanger, event.Severity)
	assert.Equal(t, "High CPU Usage: 99.00%", event.Message)
}

func TestPublisher_Failures(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()
	publisher := NewPublisher(bus, "node-1")

	publisher.SamplingFailed(errors.New("boom"))
	publisher.PersistenceFailed("snapshot", errors.New("db down"))

	sampling := receive(t, ch)
	assert.Equal(t, models.EventTypeSamplingFailed, sampling.Type)
	assert.Equal(t, models.SeverityDanger, sampling.Severity)

	persistence := receive(t, ch)
	assert.Equal(t, models.EventTypePersistenceFailed, persistence.Type)
	data, ok := persistence.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "snapshot", data["record"])
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeSnapshotRecorded)
	publisher := NewPublisher(bus, "node-1")

	publisher.SnapshotRecorded(&models.Snapshot{ID: 1})
	publisher.SnapshotRecorded(&models.Snapshot{ID: 2})

	event := receive(t, ch)
	assert.Equal(t, int64(1), event.Data.(*models.Snapshot).ID)
	assert.Len(t, ch, 0)
}

func TestEventBus_CloseClosesSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	one := bus.Subscribe(models.EventTypeAlertRaised)
	all := bus.SubscribeAll()

	bus.Close()
	bus.Close()

	_, ok := <-one
	assert.False(t, ok)
	_, ok = <-all
	assert.False(t, ok)

	late := bus.SubscribeAll()
	_, ok = <-late
	assert.False(t, ok)

	bus.Publish(models.NewEvent(models.EventTypeAlertRaised, "h", "ignored"))
}

func TestPublisher_NilSafe(t *testing.T) {
	var publisher *Publisher
	assert.NotPanics(t, func() {
		publisher.SnapshotRecorded(&models.Snapshot{})
		publisher.AlertRaised(&models.Alert{AlertClassification: models.AlertClassification{Message: "High CPU Usage: 95.00%"}})
		publisher.SamplingFailed(errors.New("read failed"))
		publisher.PersistenceFailed("snapshot", errors.New("insert failed"))
	})
}
