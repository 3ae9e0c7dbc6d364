// Package orchestrator owns the per-task crawl workers and the control
// surface the API exposes: create, start, pause, resume, stop, status.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/clock/system"
	"github.com/JakeFAU/frontier-crawler/internal/crawler"
	"github.com/JakeFAU/frontier-crawler/internal/metrics"
	"github.com/JakeFAU/frontier-crawler/internal/policy/ratelimit"
	"github.com/JakeFAU/frontier-crawler/internal/progress"
	"github.com/JakeFAU/frontier-crawler/internal/score"
	"github.com/JakeFAU/frontier-crawler/internal/task"
)

// Collaborators are the external components the crawl loop drives.
type Collaborators struct {
	Fetcher    crawler.Fetcher
	Metadata   crawler.MetadataExtractor
	Links      crawler.LinkDiscoverer
	Pdfs       crawler.PdfIdentifier
	Politeness crawler.PolitenessProvider
	Store      crawler.TaskStore
	Events     progress.Emitter
	Limiter    *ratelimit.Limiter
	Clock      crawler.Clock
	IDs        crawler.IDGenerator
	Logger     *zap.Logger
}

// Config tunes loop behavior.
type Config struct {
	// PausePoll is how long a paused worker sleeps between signal checks.
	PausePoll time.Duration
	// SnapshotEvery persists the task record after this many visited URLs.
	SnapshotEvery int
	// RenderJS asks the fetcher for browser rendering on every page.
	RenderJS bool
	// FastResponse is the latency under which a fetch earns a score bonus.
	FastResponse time.Duration
}

const (
	defaultPausePoll     = time.Second
	defaultSnapshotEvery = 5
	defaultFastResponse  = 500 * time.Millisecond
)

// Orchestrator is the task registry plus the workers crawling on its behalf.
// At most one task runs at a time; starting a second is a conflict error.
type Orchestrator struct {
	cfg    Config
	deps   Collaborators
	logger *zap.Logger

	mu      sync.Mutex
	runners map[string]*runner
}

// runner pairs a task with its control signals and score manager. The pause
// and stop flags are the only state control calls share with the worker
// goroutine; the frontier and visited set stay worker-owned.
type runner struct {
	task   *task.Task
	scores *score.Manager

	pause atomic.Bool
	stop  atomic.Bool

	mu   sync.Mutex
	done chan struct{}
}

// alive reports whether the worker goroutine is still running, including
// merely sleeping on the pause poll.
func (r *runner) alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

func (r *runner) arm() chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = make(chan struct{})
	return r.done
}

// New builds an Orchestrator.
func New(cfg Config, deps Collaborators) *Orchestrator {
	if cfg.PausePoll <= 0 {
		cfg.PausePoll = defaultPausePoll
	}
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = defaultSnapshotEvery
	}
	if cfg.FastResponse <= 0 {
		cfg.FastResponse = defaultFastResponse
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = system.New()
	}
	return &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		logger:  logger,
		runners: make(map[string]*runner),
	}
}

// CreateTask allocates a fresh PENDING task with its own frontier and score
// manager. Execution does not start until StartTask.
func (o *Orchestrator) CreateTask(ctx context.Context, cfg crawler.CrawlConfig, name string) (string, error) {
	id, err := o.deps.IDs.NewID()
	if err != nil {
		return "", fmt.Errorf("allocate task id: %w", err)
	}
	if name == "" {
		name = "crawl-" + id
	}
	t := task.New(id, name, cfg, o.deps.Clock)
	r := &runner{
		task:   t,
		scores: score.NewManager(id, cfg.PriorityDomains, cfg.Blacklist, o.logger),
	}

	o.mu.Lock()
	o.runners[id] = r
	o.mu.Unlock()

	o.sync(ctx, r)
	o.logger.Info("task created",
		zap.String("task_id", id),
		zap.String("name", name),
		zap.String("strategy", string(cfg.Strategy)),
		zap.String("start_url", cfg.StartURL),
	)
	return id, nil
}

// StartTask transitions PENDING or PAUSED to RUNNING and spawns the worker
// goroutine. Only one task may run per service instance; starting while
// another runs fails with a conflict error.
func (o *Orchestrator) StartTask(ctx context.Context, taskID string) error {
	r, err := o.runner(taskID)
	if err != nil {
		return err
	}

	o.mu.Lock()
	for id, other := range o.runners {
		if id != taskID && other.task.Status() == crawler.TaskStatusRunning {
			o.mu.Unlock()
			return fmt.Errorf("task %s is already running: %w", id, crawler.ErrTaskConflict)
		}
	}

	switch status := r.task.Status(); status {
	case crawler.TaskStatusPending:
		cfg := r.task.Config()
		fr := r.task.Frontier()
		if fr.IsEmpty() && r.task.VisitedCount() == 0 {
			if err := fr.Initialize(cfg.StartURL, cfg.Strategy, cfg.MaxDepth); err != nil {
				o.mu.Unlock()
				return fmt.Errorf("initialize frontier: %w", err)
			}
		}
		r.task.Start()
	case crawler.TaskStatusPaused:
		r.task.Resume()
	default:
		o.mu.Unlock()
		return fmt.Errorf("cannot start task in status %s: %w", status, crawler.ErrTaskConflict)
	}

	r.pause.Store(false)
	r.stop.Store(false)
	spawn := !r.alive()
	var done chan struct{}
	if spawn {
		done = r.arm()
	}
	o.mu.Unlock()

	o.sync(ctx, r)
	if spawn {
		go o.runLoop(r, done)
	}
	return nil
}

// PauseTask signals the worker to suspend. The loop keeps polling so the
// in-memory frontier and visited set survive for a later resume.
func (o *Orchestrator) PauseTask(ctx context.Context, taskID string) error {
	r, err := o.runner(taskID)
	if err != nil {
		return err
	}
	if r.task.Pause() {
		r.pause.Store(true)
		o.logger.Info("task paused", zap.String("task_id", taskID))
	}
	o.sync(ctx, r)
	return nil
}

// ResumeTask lifts the pause signal. A still-alive worker is left alone so
// two goroutines never race on the same frontier; a dead one is respawned.
func (o *Orchestrator) ResumeTask(ctx context.Context, taskID string) error {
	r, err := o.runner(taskID)
	if err != nil {
		return err
	}

	o.mu.Lock()
	for id, other := range o.runners {
		if id != taskID && other.task.Status() == crawler.TaskStatusRunning {
			o.mu.Unlock()
			return fmt.Errorf("task %s is already running: %w", id, crawler.ErrTaskConflict)
		}
	}
	resumed := r.task.Resume()
	if resumed {
		r.pause.Store(false)
	}
	spawn := resumed && !r.alive()
	var done chan struct{}
	if spawn {
		done = r.arm()
	}
	o.mu.Unlock()

	o.sync(ctx, r)
	if spawn {
		go o.runLoop(r, done)
	}
	if resumed {
		o.logger.Info("task resumed", zap.String("task_id", taskID))
	}
	return nil
}

// StopTask hard-stops the task: the frontier is cleared and unvisited URLs
// are discarded. Stopped tasks cannot resume.
func (o *Orchestrator) StopTask(ctx context.Context, taskID string) error {
	r, err := o.runner(taskID)
	if err != nil {
		return err
	}
	r.stop.Store(true)
	if r.task.Stop() {
		o.logger.Info("task stopped", zap.String("task_id", taskID))
	}
	o.sync(ctx, r)
	return nil
}

// TaskStatus returns a point-in-time snapshot for status queries.
func (o *Orchestrator) TaskStatus(taskID string) (crawler.TaskSnapshot, error) {
	r, err := o.runner(taskID)
	if err != nil {
		return crawler.TaskSnapshot{}, err
	}
	return r.task.Snapshot(), nil
}

// TaskResults returns the persisted results for a task.
func (o *Orchestrator) TaskResults(ctx context.Context, taskID string) ([]crawler.CrawlResult, error) {
	if _, err := o.runner(taskID); err != nil {
		return nil, err
	}
	results, err := o.deps.Store.GetResults(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load results for task %s: %w", taskID, err)
	}
	return results, nil
}

// Tasks lists every known task record from the store.
func (o *Orchestrator) Tasks(ctx context.Context) ([]crawler.TaskRecord, error) {
	records, err := o.deps.Store.GetAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return records, nil
}

// AddURL injects a URL into the task's frontier. The frontier drops it
// silently when depth exceeds the task's bound.
func (o *Orchestrator) AddURL(taskID, url string, depth, priority int) error {
	r, err := o.runner(taskID)
	if err != nil {
		return err
	}
	normalized, err := crawler.NormalizeURL(url)
	if err != nil {
		return fmt.Errorf("normalize url: %w", err)
	}
	r.task.Frontier().Enqueue(normalized, depth, priority)
	return nil
}

// UpdateConfig adjusts tunable config fields on a live task. Nil fields are
// left unchanged.
func (o *Orchestrator) UpdateConfig(ctx context.Context, taskID string, interval *time.Duration, maxDepth, maxPages *int) error {
	r, err := o.runner(taskID)
	if err != nil {
		return err
	}
	r.task.UpdateConfig(interval, maxDepth, maxPages)
	if maxDepth != nil && *maxDepth >= 0 {
		r.task.Frontier().SetMaxDepth(*maxDepth)
	}
	o.persist(ctx, r)
	return nil
}

func (o *Orchestrator) runner(taskID string) (*runner, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.runners[taskID]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, crawler.ErrTaskNotFound)
	}
	return r, nil
}

// sync drains the task's buffered events into the hub and persists the task
// record. Called after every state-affecting operation so events are not
// lost.
func (o *Orchestrator) sync(ctx context.Context, r *runner) {
	o.publish(r)
	o.persist(ctx, r)
}

func (o *Orchestrator) publish(r *runner) {
	for _, evt := range r.task.DrainEvents() {
		if evt.Lifecycle() {
			metrics.ObserveTask(string(evt.Type))
		}
		if o.deps.Events != nil {
			o.deps.Events.Emit(evt)
		}
	}
}

func (o *Orchestrator) persist(ctx context.Context, r *runner) {
	if err := o.deps.Store.SaveTask(ctx, r.task.Record()); err != nil {
		o.logger.Warn("persist task failed",
			zap.String("task_id", r.task.ID()), zap.Error(err))
	}
}
