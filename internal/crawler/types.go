// Package crawler defines core types shared across subsystems.
package crawler

import (
	"fmt"
	"net/http"
	"time"
)

// Strategy selects the frontier traversal order for a task.
type Strategy string

// Supported traversal strategies.
const (
	StrategyBFS          Strategy = "BFS"
	StrategyDFS          Strategy = "DFS"
	StrategyPriority     Strategy = "PRIORITY"
	StrategyBigSiteFirst Strategy = "BIG_SITE_FIRST"
)

// ParseStrategy validates a raw strategy string.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyBFS, StrategyDFS, StrategyPriority, StrategyBigSiteFirst:
		return Strategy(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, raw)
	}
}

// TaskStatus represents the lifecycle state of a crawl task.
type TaskStatus string

// Task status values persisted in the task store.
const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusRunning   TaskStatus = "RUNNING"
	TaskStatusPaused    TaskStatus = "PAUSED"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusStopped   TaskStatus = "STOPPED"
	TaskStatusFailed    TaskStatus = "FAILED"
)

// Terminal reports whether no further transitions are expected from a status,
// FAILED excepted since it is reachable from anywhere.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusStopped, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// CrawlConfig captures the per-task configuration knobs requested by the client.
// Domain lists are normalized at construction: scheme and path are stripped so
// only bare hostnames remain.
type CrawlConfig struct {
	StartURL        string        `json:"start_url"`
	Strategy        Strategy      `json:"strategy"`
	MaxDepth        int           `json:"max_depth"`
	MaxPages        int           `json:"max_pages"`
	RequestInterval time.Duration `json:"request_interval"`
	AllowDomains    []string      `json:"allow_domains"`
	PriorityDomains []string      `json:"priority_domains"`
	Blacklist       []string      `json:"blacklist"`
}

// NewCrawlConfig builds a validated CrawlConfig with normalized domain lists.
func NewCrawlConfig(
	startURL string,
	strategy Strategy,
	maxDepth, maxPages int,
	interval time.Duration,
	allowDomains, priorityDomains, blacklist []string,
) (CrawlConfig, error) {
	if startURL == "" {
		return CrawlConfig{}, ErrMissingStartURL
	}
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return CrawlConfig{}, err
	}
	if maxDepth < 0 {
		return CrawlConfig{}, fmt.Errorf("max depth must be >= 0, got %d", maxDepth)
	}
	if interval < 0 {
		return CrawlConfig{}, fmt.Errorf("request interval must be >= 0, got %s", interval)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return CrawlConfig{
		StartURL:        startURL,
		Strategy:        strategy,
		MaxDepth:        maxDepth,
		MaxPages:        maxPages,
		RequestInterval: interval,
		AllowDomains:    NormalizeDomains(allowDomains),
		PriorityDomains: NormalizeDomains(priorityDomains),
		Blacklist:       NormalizeDomains(blacklist),
	}, nil
}

// DefaultMaxPages bounds a task whose config left max_pages unset.
const DefaultMaxPages = 100

// QueuedURL is a frontier entry. Immutable once enqueued.
type QueuedURL struct {
	URL      string `json:"url"`
	Depth    int    `json:"depth"`
	Priority int    `json:"priority"`
}

// PageMetadata is what the metadata extractor recovers from a page body.
type PageMetadata struct {
	Title       string   `json:"title"`
	Author      string   `json:"author,omitempty"`
	Abstract    string   `json:"abstract,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	PublishDate string   `json:"publish_date,omitempty"`
}

// CrawlResult is produced exactly once per successfully processed URL.
type CrawlResult struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Abstract    string    `json:"abstract,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	PublishDate string    `json:"publish_date,omitempty"`
	PDFLinks    []string  `json:"pdf_links,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Depth       int       `json:"depth"`
	CrawledAt   time.Time `json:"crawled_at"`
}

// TagBigSite marks results whose host matched a priority domain under the
// BIG_SITE_FIRST strategy.
const TagBigSite = "big_site"

// FetchResponse is the result returned by a Fetcher implementation. A non-OK
// response is a per-URL failure, never fatal to the task.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	ContentType  string
	OK           bool
	ErrorMessage string
	Duration     time.Duration
	UsedHeadless bool
}

// TaskSnapshot is the status-query view of a task.
type TaskSnapshot struct {
	TaskID       string     `json:"task_id"`
	Name         string     `json:"name,omitempty"`
	Status       TaskStatus `json:"status"`
	VisitedCount int        `json:"visited_count"`
	ResultCount  int        `json:"result_count"`
	QueueSize    int        `json:"queue_size"`
	CurrentDepth int        `json:"current_depth"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskRecord is the persisted form of a task written to the result sink.
type TaskRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name,omitempty"`
	Status    TaskStatus  `json:"status"`
	Config    CrawlConfig `json:"config"`
	Visited   []string    `json:"visited,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
