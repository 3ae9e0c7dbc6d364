package sinks

import (
	"context"
	"sync"

	"github.com/JakeFAU/frontier-crawler/internal/progress"
)

// DefaultHistoryLimit bounds the retained events per task when no limit is
// given to NewHistorySink.
const DefaultHistoryLimit = 1000

// HistorySink retains a bounded window of recent events per task so clients
// can poll crawl progress without tailing logs. Oldest events are dropped
// first once a task reaches the limit.
type HistorySink struct {
	mu     sync.RWMutex
	limit  int
	byTask map[string][]progress.Event
}

// NewHistorySink builds a sink retaining up to limit events per task.
// A non-positive limit selects DefaultHistoryLimit.
func NewHistorySink(limit int) *HistorySink {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistorySink{
		limit:  limit,
		byTask: make(map[string][]progress.Event),
	}
}

// Consume appends the batch to each task's window, trimming from the front.
func (s *HistorySink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		if evt.TaskID == "" {
			continue
		}
		events := append(s.byTask[evt.TaskID], evt)
		if overflow := len(events) - s.limit; overflow > 0 {
			events = events[overflow:]
		}
		s.byTask[evt.TaskID] = events
	}
	return nil
}

// Events returns a copy of the retained window for a task, oldest first.
func (s *HistorySink) Events(taskID string) []progress.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.byTask[taskID]
	out := make([]progress.Event, len(events))
	copy(out, events)
	return out
}

// Close implements the Sink interface; it performs no action.
func (s *HistorySink) Close(context.Context) error {
	return nil
}
