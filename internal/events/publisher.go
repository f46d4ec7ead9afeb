package events

import (
	"github.com/OldStager01/hostmon/pkg/models"
)

// Publisher builds monitoring events for one host. A nil *Publisher drops
// every event.
type Publisher struct {
	bus  *EventBus
	host string
}

func NewPublisher(bus *EventBus, host string) *Publisher {
	return &Publisher{bus: bus, host: host}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	p.bus.Publish(event)
}

func (p *Publisher) SnapshotRecorded(snapshot *models.Snapshot) {
	if p == nil {
		return
	}
	event := models.NewEvent(models.EventTypeSnapshotRecorded, p.host, "Snapshot recorded").
		WithData(snapshot)
	p.publish(event)
}

func (p *Publisher) AlertRaised(alert *models.Alert) {
	if p == nil {
		return
	}
	event := models.NewEvent(models.EventTypeAlertRaised, p.host, alert.Message).
		WithSeverity(alert.Severity).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) SamplingFailed(err error) {
	if p == nil {
		return
	}
	event := models.NewEvent(models.EventTypeSamplingFailed, p.host, "Sampling failed").
		WithSeverity(models.SeverityDanger).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) PersistenceFailed(record string, err error) {
	if p == nil {
		return
	}
	event := models.NewEvent(models.EventTypePersistenceFailed, p.host, "Failed to persist "+record).
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"record": record,
			"error":  err.Error(),
		})
	p.publish(event)
}
