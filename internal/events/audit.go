package events

import (
	"context"
	"sync"
	"time"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
	"github.com/serviceops/fleet-autoscaler/pkg/models"
)

// Sink persists events; the Postgres audit repository implements it.
type Sink interface {
	SaveEvent(ctx context.Context, event *models.Event) error
}

// AuditLogger drains a bus subscription into a sink. Persist failures
// are logged and dropped; the audit trail is best effort by design.
type AuditLogger struct {
	sink   Sink
	events <-chan *models.Event
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewAuditLogger(sink Sink, events <-chan *models.Event) *AuditLogger {
	return &AuditLogger{
		sink:   sink,
		events: events,
		done:   make(chan struct{}),
	}
}

func (a *AuditLogger) Start() {
	a.wg.Add(1)
	go a.run()
}

// Stop waits for the drain goroutine to exit. The subscription channel
// must be closed (bus.Close) before calling Stop.
func (a *AuditLogger) Stop() {
	close(a.done)
	a.wg.Wait()
}

func (a *AuditLogger) run() {
	defer a.wg.Done()

	for {
		select {
		case <-a.done:
			return
		case event, ok := <-a.events:
			if !ok {
				return
			}
			a.persist(event)
		}
	}
}

func (a *AuditLogger) persist(event *models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.sink.SaveEvent(ctx, event); err != nil {
		logger.Warnf("Failed to persist event %s: %v", event.Type, err)
	}
}
