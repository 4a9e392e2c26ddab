// Package auditlog records extraction lifecycle events (run started,
// completed, replayed) asynchronously, adapted from
// pkg/audit/logger.go's AsyncClickHouseLogger: a buffered channel feeding
// a single worker goroutine that batches and flushes on a ticker or on
// Close.
package auditlog

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType categorizes an extraction lifecycle event.
type EventType string

const (
	EventRunStarted   EventType = "RUN_STARTED"
	EventRunCompleted EventType = "RUN_COMPLETED"
	EventRunFailed    EventType = "RUN_FAILED"
	EventRunReplayed  EventType = "RUN_REPLAYED"
)

// Event is one immutable audit entry.
type Event struct {
	EventID   uuid.UUID
	RunID     uuid.UUID
	Timestamp time.Time
	Action    EventType
	Detail    string
}

// Logger buffers events and flushes them in batches on a ticker.
type Logger struct {
	eventCh chan Event
	doneCh  chan struct{}
	wg      sync.WaitGroup
}

// New starts a Logger with a buffered channel of the given capacity and
// a background flush worker.
func New(bufferSize int) *Logger {
	l := &Logger{
		eventCh: make(chan Event, bufferSize),
		doneCh:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.worker()
	return l
}

// Log records one event. It never blocks the caller: if the buffer is
// full, the event is dropped and a warning is logged.
func (l *Logger) Log(runID uuid.UUID, action EventType, detail string) {
	event := Event{EventID: uuid.New(), RunID: runID, Timestamp: time.Now().UTC(), Action: action, Detail: detail}
	select {
	case l.eventCh <- event:
	default:
		log.Printf("auditlog: buffer full, dropped event %s for run %s", event.EventID, runID)
	}
}

func (l *Logger) worker() {
	defer l.wg.Done()

	batch := make([]Event, 0, 100)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case event := <-l.eventCh:
			batch = append(batch, event)
			if len(batch) >= 100 {
				l.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				l.flush(batch)
				batch = batch[:0]
			}
		case <-l.doneCh:
			for drained := false; !drained; {
				select {
				case event := <-l.eventCh:
					batch = append(batch, event)
				default:
					drained = true
				}
			}
			if len(batch) > 0 {
				l.flush(batch)
			}
			return
		}
	}
}

func (l *Logger) flush(events []Event) {
	for _, e := range events {
		log.Printf("[audit] run=%s action=%s detail=%s", e.RunID, e.Action, e.Detail)
	}
}

// Close stops the worker, flushing any buffered events first.
func (l *Logger) Close() error {
	close(l.doneCh)
	l.wg.Wait()
	return nil
}
