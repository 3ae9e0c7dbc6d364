// Package progress defines the lifecycle and process events emitted by crawl
// tasks, plus the hub that fans them out to sinks.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// EventType tags an Event with the milestone it represents.
type EventType string

// Lifecycle events: one per task state transition.
const (
	TypeTaskCreated   EventType = "TASK_CREATED"
	TypeTaskStarted   EventType = "TASK_STARTED"
	TypeTaskPaused    EventType = "TASK_PAUSED"
	TypeTaskResumed   EventType = "TASK_RESUMED"
	TypeTaskStopped   EventType = "TASK_STOPPED"
	TypeTaskCompleted EventType = "TASK_COMPLETED"
	TypeTaskFailed    EventType = "TASK_FAILED"
)

// Process events: emitted during the crawl loop.
const (
	TypePageCrawled  EventType = "PAGE_CRAWLED"
	TypePdfFound     EventType = "PDF_FOUND"
	TypeCrawlError   EventType = "CRAWL_ERROR"
	TypeLinkFiltered EventType = "LINK_FILTERED"
)

// Error kinds carried in the "error_type" payload field of CRAWL_ERROR events.
const (
	ErrDomainNotAllowed  = "DomainNotAllowed"
	ErrRequestFailed     = "RequestFailed"
	ErrMetadataExtract   = "MetadataExtractionFailed"
	ErrLinkDiscovery     = "LinkDiscoveryFailed"
	ErrPdfIdentification = "PdfIdentificationFailed"
)

var knownTypes = map[EventType]struct{}{
	TypeTaskCreated:   {},
	TypeTaskStarted:   {},
	TypeTaskPaused:    {},
	TypeTaskResumed:   {},
	TypeTaskStopped:   {},
	TypeTaskCompleted: {},
	TypeTaskFailed:    {},
	TypePageCrawled:   {},
	TypePdfFound:      {},
	TypeCrawlError:    {},
	TypeLinkFiltered:  {},
}

// Event is a single crawl milestone. Payload carries type-specific fields
// (titles, counts, error text); the hub guarantees per-task ordering only.
type Event struct {
	Type    EventType      `json:"type"`
	TaskID  string         `json:"task_id"`
	TS      time.Time      `json:"ts"`
	Payload map[string]any `json:"payload,omitempty"`
}

// New builds an Event stamped with the given time.
func New(eventType EventType, taskID string, ts time.Time, payload map[string]any) Event {
	return Event{Type: eventType, TaskID: taskID, TS: ts, Payload: payload}
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TaskID == "" {
		return errors.New("task id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	if _, ok := knownTypes[e.Type]; !ok {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.Type == TypeCrawlError {
		if _, ok := e.Payload["error_type"]; !ok {
			return errors.New("crawl error event requires error_type")
		}
	}
	return nil
}

// Lifecycle reports whether the event marks a task state transition.
func (e Event) Lifecycle() bool {
	switch e.Type {
	case TypeTaskCreated, TypeTaskStarted, TypeTaskPaused, TypeTaskResumed,
		TypeTaskStopped, TypeTaskCompleted, TypeTaskFailed:
		return true
	default:
		return false
	}
}
