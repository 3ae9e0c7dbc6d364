// Package frontier holds the not-yet-fetched URLs of one crawl task and
// yields them in the order the task's traversal strategy dictates.
package frontier

import (
	"container/list"
	"sync"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

// StartPriority is assigned to the seed URL so it always leads under the
// priority strategies.
const StartPriority = 100

// Frontier is a strategy-selectable URL queue. It performs no deduplication;
// the task's visited set is the dedupe authority. Safe for concurrent use:
// the worker goroutine dequeues while API calls query size or clear on stop.
type Frontier struct {
	mu           sync.Mutex
	backend      backend
	maxDepth     int
	currentDepth int
}

// backend is the per-strategy ordering structure, resolved once at
// Initialize so no strategy comparison happens on the hot path.
type backend interface {
	push(item crawler.QueuedURL)
	pop() (crawler.QueuedURL, bool)
	len() int
	clear()
}

// New returns an uninitialized Frontier; Initialize must be called before use.
func New() *Frontier {
	return &Frontier{backend: &fifoQueue{entries: list.New()}}
}

// Prepare clears internal storage and resolves the strategy backend without
// seeding a start URL, for frontiers populated through Enqueue alone.
func (f *Frontier) Prepare(strategy crawler.Strategy, maxDepth int) error {
	resolved, err := newBackend(strategy)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.backend = resolved
	f.maxDepth = maxDepth
	f.currentDepth = 0
	return nil
}

// Initialize clears internal storage, resolves the strategy, and enqueues the
// start URL at depth 0 with maximal priority.
func (f *Frontier) Initialize(startURL string, strategy crawler.Strategy, maxDepth int) error {
	if err := f.Prepare(strategy, maxDepth); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.backend.push(crawler.QueuedURL{URL: startURL, Depth: 0, Priority: StartPriority})
	return nil
}

func newBackend(strategy crawler.Strategy) (backend, error) {
	switch strategy {
	case crawler.StrategyBFS:
		return &fifoQueue{entries: list.New()}, nil
	case crawler.StrategyDFS:
		return &lifoStack{}, nil
	case crawler.StrategyPriority, crawler.StrategyBigSiteFirst:
		return newPriorityQueue(), nil
	default:
		return nil, crawler.ErrInvalidStrategy
	}
}

// Enqueue appends a URL per the resolved strategy. Items beyond the depth
// bound are silently dropped.
func (f *Frontier) Enqueue(url string, depth, priority int) {
	if depth > f.MaxDepth() {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backend.push(crawler.QueuedURL{URL: url, Depth: depth, Priority: priority})
}

// Dequeue returns the next QueuedURL per strategy, recording its depth as the
// frontier's current depth for progress reporting.
func (f *Frontier) Dequeue() (crawler.QueuedURL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.backend.pop()
	if ok {
		f.currentDepth = item.Depth
	}
	return item, ok
}

// IsEmpty reports whether the frontier holds no URLs.
func (f *Frontier) IsEmpty() bool {
	return f.Size() == 0
}

// Size returns the number of queued URLs.
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.len()
}

// Clear discards all queued URLs and resets the current depth.
func (f *Frontier) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backend.clear()
	f.currentDepth = 0
}

// CurrentDepth returns the depth of the most recently dequeued URL.
func (f *Frontier) CurrentDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentDepth
}

// SetMaxDepth adjusts the depth bound applied to future enqueues.
func (f *Frontier) SetMaxDepth(maxDepth int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxDepth = maxDepth
}

// MaxDepth returns the configured depth bound.
func (f *Frontier) MaxDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxDepth
}

// fifoQueue backs BFS: enqueue at the tail, dequeue from the head.
type fifoQueue struct {
	entries *list.List
}

func (q *fifoQueue) push(item crawler.QueuedURL) {
	q.entries.PushBack(item)
}

func (q *fifoQueue) pop() (crawler.QueuedURL, bool) {
	front := q.entries.Front()
	if front == nil {
		return crawler.QueuedURL{}, false
	}
	item, ok := q.entries.Remove(front).(crawler.QueuedURL)
	return item, ok
}

func (q *fifoQueue) len() int { return q.entries.Len() }

func (q *fifoQueue) clear() { q.entries.Init() }

// lifoStack backs DFS: newest enqueued URL is dequeued first.
type lifoStack struct {
	entries []crawler.QueuedURL
}

func (s *lifoStack) push(item crawler.QueuedURL) {
	s.entries = append(s.entries, item)
}

func (s *lifoStack) pop() (crawler.QueuedURL, bool) {
	if len(s.entries) == 0 {
		return crawler.QueuedURL{}, false
	}
	item := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return item, true
}

func (s *lifoStack) len() int { return len(s.entries) }

func (s *lifoStack) clear() { s.entries = nil }
