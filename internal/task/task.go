// Package task implements the crawl task aggregate: configuration, visited
// set, result list, lifecycle state machine, and the buffered events each
// mutation produces.
package task

import (
	"sync"
	"time"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
	"github.com/JakeFAU/frontier-crawler/internal/frontier"
	"github.com/JakeFAU/frontier-crawler/internal/progress"
)

// Task is the aggregate root for one crawl. It owns its frontier and visited
// set exclusively; control calls mutate status only, never the frontier
// directly. All methods are safe for concurrent use.
type Task struct {
	mu sync.Mutex

	id     string
	name   string
	config crawler.CrawlConfig
	status crawler.TaskStatus

	visited map[string]struct{}
	results []crawler.CrawlResult
	events  []progress.Event

	frontier *frontier.Frontier

	createdAt time.Time
	updatedAt time.Time
	startedAt time.Time

	clock crawler.Clock
}

// New builds a PENDING task with an empty frontier and buffers the
// TASK_CREATED event.
func New(id, name string, cfg crawler.CrawlConfig, clock crawler.Clock) *Task {
	now := clock.Now()
	fr := frontier.New()
	// The config's strategy was validated at construction; resolving the
	// backend here lets injected URLs respect it before the first start.
	_ = fr.Prepare(cfg.Strategy, cfg.MaxDepth)
	t := &Task{
		id:        id,
		name:      name,
		config:    cfg,
		status:    crawler.TaskStatusPending,
		visited:   make(map[string]struct{}),
		frontier:  fr,
		createdAt: now,
		updatedAt: now,
		clock:     clock,
	}
	t.emit(progress.TypeTaskCreated, map[string]any{
		"name":      name,
		"start_url": cfg.StartURL,
		"strategy":  string(cfg.Strategy),
	})
	return t
}

// ID returns the task identifier.
func (t *Task) ID() string { return t.id }

// Name returns the human-readable task name.
func (t *Task) Name() string { return t.name }

// Frontier exposes the task's URL frontier. The frontier carries its own
// lock, so callers may use it without holding the task.
func (t *Task) Frontier() *frontier.Frontier { return t.frontier }

// Status returns the current lifecycle status.
func (t *Task) Status() crawler.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Config returns a copy of the task configuration.
func (t *Task) Config() crawler.CrawlConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config
}

// UpdateConfig adjusts tunable fields while the task runs. Nil fields are
// left unchanged. The worker reads the config every iteration, so writes go
// through the task lock.
func (t *Task) UpdateConfig(interval *time.Duration, maxDepth, maxPages *int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if interval != nil && *interval >= 0 {
		t.config.RequestInterval = *interval
	}
	if maxDepth != nil && *maxDepth >= 0 {
		t.config.MaxDepth = *maxDepth
	}
	if maxPages != nil && *maxPages > 0 {
		t.config.MaxPages = *maxPages
	}
	t.updatedAt = t.clock.Now()
}

// Start transitions PENDING to RUNNING. Any other current status is a silent
// no-op so racy duplicate signals are tolerated.
func (t *Task) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != crawler.TaskStatusPending {
		return false
	}
	t.status = crawler.TaskStatusRunning
	t.startedAt = t.clock.Now()
	t.updatedAt = t.startedAt
	t.emit(progress.TypeTaskStarted, map[string]any{"name": t.name})
	return true
}

// Pause transitions RUNNING to PAUSED.
func (t *Task) Pause() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != crawler.TaskStatusRunning {
		return false
	}
	t.status = crawler.TaskStatusPaused
	t.updatedAt = t.clock.Now()
	t.emit(progress.TypeTaskPaused, map[string]any{"visited_count": len(t.visited)})
	return true
}

// Resume transitions PAUSED back to RUNNING.
func (t *Task) Resume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != crawler.TaskStatusPaused {
		return false
	}
	t.status = crawler.TaskStatusRunning
	t.updatedAt = t.clock.Now()
	t.emit(progress.TypeTaskResumed, map[string]any{"visited_count": len(t.visited)})
	return true
}

// Stop transitions RUNNING or PAUSED to STOPPED and clears the frontier.
// Unvisited URLs are discarded; a stopped task cannot resume.
func (t *Task) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != crawler.TaskStatusRunning && t.status != crawler.TaskStatusPaused {
		return false
	}
	t.status = crawler.TaskStatusStopped
	t.updatedAt = t.clock.Now()
	t.frontier.Clear()
	t.emit(progress.TypeTaskStopped, map[string]any{
		"visited_count": len(t.visited),
		"result_count":  len(t.results),
	})
	return true
}

// Complete transitions RUNNING to COMPLETED. The event payload carries the
// crawl totals and elapsed wall time.
func (t *Task) Complete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != crawler.TaskStatusRunning {
		return false
	}
	t.status = crawler.TaskStatusCompleted
	now := t.clock.Now()
	t.updatedAt = now
	var elapsed time.Duration
	if !t.startedAt.IsZero() {
		elapsed = now.Sub(t.startedAt)
	}
	pdfs := 0
	for _, r := range t.results {
		pdfs += len(r.PDFLinks)
	}
	t.emit(progress.TypeTaskCompleted, map[string]any{
		"total_pages":   len(t.results),
		"total_visited": len(t.visited),
		"total_pdfs":    pdfs,
		"elapsed_secs":  elapsed.Seconds(),
	})
	return true
}

// Fail moves the task to FAILED from any non-terminal state. It is the one
// transition not gated on the current status.
func (t *Task) Fail(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return false
	}
	t.status = crawler.TaskStatusFailed
	t.updatedAt = t.clock.Now()
	t.emit(progress.TypeTaskFailed, map[string]any{"error": message})
	return true
}

// MarkVisited inserts the URL into the visited set. Idempotent.
func (t *Task) MarkVisited(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visited[url] = struct{}{}
	t.updatedAt = t.clock.Now()
}

// IsVisited reports whether the URL has already entered the pipeline.
func (t *Task) IsVisited(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.visited[url]
	return ok
}

// IsAllowedDomain reports whether the URL's host passes the allow list. An
// empty allow list permits everything. Matching is exact or subdomain suffix,
// so "evila.com" never matches an allow entry of "a.com".
func (t *Task) IsAllowedDomain(url string) bool {
	t.mu.Lock()
	allow := t.config.AllowDomains
	t.mu.Unlock()
	if len(allow) == 0 {
		return true
	}
	host := crawler.Host(url)
	if host == "" {
		return false
	}
	return crawler.HostMatchesAny(host, allow)
}

// IsBlacklisted reports whether the URL's host matches the blacklist.
func (t *Task) IsBlacklisted(url string) bool {
	t.mu.Lock()
	deny := t.config.Blacklist
	t.mu.Unlock()
	if len(deny) == 0 {
		return false
	}
	host := crawler.Host(url)
	if host == "" {
		return false
	}
	return crawler.HostMatchesAny(host, deny)
}

// AddResult appends the result and buffers a PAGE_CRAWLED event, plus a
// PDF_FOUND event when the page carried PDF links.
func (t *Task) AddResult(result crawler.CrawlResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results = append(t.results, result)
	t.updatedAt = t.clock.Now()
	t.emit(progress.TypePageCrawled, map[string]any{
		"url":       result.URL,
		"title":     result.Title,
		"author":    result.Author,
		"abstract":  result.Abstract,
		"keywords":  result.Keywords,
		"pdf_count": len(result.PDFLinks),
		"depth":     result.Depth,
	})
	if len(result.PDFLinks) > 0 {
		t.emit(progress.TypePdfFound, map[string]any{
			"url":       result.URL,
			"pdf_links": result.PDFLinks,
		})
	}
}

// RecordError buffers a CRAWL_ERROR event without touching the task status.
// Per-URL failures never abort the crawl.
func (t *Task) RecordError(url, message, kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit(progress.TypeCrawlError, map[string]any{
		"url":        url,
		"error":      message,
		"error_type": kind,
	})
}

// RecordLinkFiltered buffers a LINK_FILTERED event for a dequeued link the
// loop rejected before fetching, with the rejection reason.
func (t *Task) RecordLinkFiltered(url, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit(progress.TypeLinkFiltered, map[string]any{
		"url":    url,
		"reason": reason,
	})
}

// Results returns a copy of the accumulated results in completion order.
func (t *Task) Results() []crawler.CrawlResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]crawler.CrawlResult(nil), t.results...)
}

// ResultCount returns the number of results without copying them.
func (t *Task) ResultCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.results)
}

// VisitedCount returns the size of the visited set.
func (t *Task) VisitedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.visited)
}

// DrainEvents returns the buffered events since the last drain and clears
// the buffer. The caller owns publishing; draining twice without new
// mutations yields nil.
func (t *Task) DrainEvents() []progress.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.events) == 0 {
		return nil
	}
	out := t.events
	t.events = nil
	return out
}

// Snapshot returns a point-in-time view for status queries.
func (t *Task) Snapshot() crawler.TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return crawler.TaskSnapshot{
		TaskID:       t.id,
		Name:         t.name,
		Status:       t.status,
		VisitedCount: len(t.visited),
		ResultCount:  len(t.results),
		QueueSize:    t.frontier.Size(),
		CurrentDepth: t.frontier.CurrentDepth(),
		CreatedAt:    t.createdAt,
		UpdatedAt:    t.updatedAt,
	}
}

// Record returns the persistable form of the task.
func (t *Task) Record() crawler.TaskRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	visited := make([]string, 0, len(t.visited))
	for url := range t.visited {
		visited = append(visited, url)
	}
	return crawler.TaskRecord{
		ID:        t.id,
		Name:      t.name,
		Status:    t.status,
		Config:    t.config,
		Visited:   visited,
		CreatedAt: t.createdAt,
		UpdatedAt: t.updatedAt,
	}
}

// emit appends an event to the buffer. Callers must hold t.mu.
func (t *Task) emit(eventType progress.EventType, payload map[string]any) {
	t.events = append(t.events, progress.New(eventType, t.id, t.clock.Now(), payload))
}
