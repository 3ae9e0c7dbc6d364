package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/frontier-crawler/internal/progress"
)

// PrometheusSink exports crawl progress metrics via Prometheus. It owns all
// collectors for task lifecycle transitions and per-task page counters.
type PrometheusSink struct {
	tasksStarted  prometheus.Counter
	tasksFinished *prometheus.CounterVec
	tasksRunning  prometheus.Gauge

	pagesCrawled prometheus.Counter
	pdfsFound    prometheus.Counter
	crawlErrors  *prometheus.CounterVec
	linksDropped prometheus.Counter

	tracker *taskTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		tasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawler_tasks_started_total",
			Help: "Total tasks that have started.",
		}),
		tasksFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_tasks_finished_total",
			Help: "Total tasks finished partitioned by outcome.",
		}, []string{"outcome"}),
		tasksRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crawler_tasks_running",
			Help: "Current number of running tasks.",
		}),
		pagesCrawled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawler_pages_crawled_total",
			Help: "Total pages fetched and parsed successfully.",
		}),
		pdfsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawler_pdfs_found_total",
			Help: "Total pages on which PDF links were identified.",
		}),
		crawlErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_errors_total",
			Help: "Crawl errors partitioned by error type.",
		}, []string{"error_type"}),
		linksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawler_links_filtered_total",
			Help: "Discovered links rejected by domain or blacklist filters.",
		}),
		tracker: newTaskTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.tasksStarted,
		s.tasksFinished,
		s.tasksRunning,
		s.pagesCrawled,
		s.pdfsFound,
		s.crawlErrors,
		s.linksDropped,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Type {
	case progress.TypeTaskStarted, progress.TypeTaskResumed:
		s.tasksStarted.Inc()
		if s.tracker.start(evt.TaskID) {
			s.tasksRunning.Inc()
		}
	case progress.TypeTaskCompleted:
		s.finishTask(evt, "completed")
	case progress.TypeTaskStopped:
		s.finishTask(evt, "stopped")
	case progress.TypeTaskFailed:
		s.finishTask(evt, "failed")
	case progress.TypeTaskPaused:
		if s.tracker.complete(evt.TaskID) {
			s.tasksRunning.Dec()
		}
	case progress.TypePageCrawled:
		s.pagesCrawled.Inc()
	case progress.TypePdfFound:
		s.pdfsFound.Inc()
	case progress.TypeCrawlError:
		s.crawlErrors.WithLabelValues(errorType(evt)).Inc()
	case progress.TypeLinkFiltered:
		s.linksDropped.Inc()
	}
}

func (s *PrometheusSink) finishTask(evt progress.Event, outcome string) {
	s.tasksFinished.WithLabelValues(outcome).Inc()
	if s.tracker.complete(evt.TaskID) {
		s.tasksRunning.Dec()
	}
}

func errorType(evt progress.Event) string {
	if v, ok := evt.Payload["error_type"].(string); ok && v != "" {
		return v
	}
	return "Unknown"
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type taskTracker struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newTaskTracker() *taskTracker {
	return &taskTracker{running: make(map[string]struct{})}
}

func (t *taskTracker) start(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *taskTracker) complete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
