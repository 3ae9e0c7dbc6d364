package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata. Implementations
// may retry and handle encoding internally; renderJS requests a full browser
// render when a headless collaborator is available.
type Fetcher interface {
	Fetch(ctx context.Context, url string, renderJS bool) (FetchResponse, error)
}

// MetadataExtractor recovers page metadata from an HTML body.
type MetadataExtractor interface {
	ExtractMetadata(body []byte, url string) (PageMetadata, error)
}

// TaskContext is the view of a task's state the link discoverer filters
// against. Implemented by the task aggregate.
type TaskContext interface {
	IsVisited(url string) bool
	IsAllowedDomain(url string) bool
}

// LinkDiscoverer extracts candidate links from an HTML body, already filtered
// against the task's visited set, allow-domains, and robots rules.
type LinkDiscoverer interface {
	DiscoverLinks(ctx context.Context, body []byte, baseURL string, task TaskContext) ([]string, error)
}

// PdfIdentifier selects the PDF documents among candidate links.
type PdfIdentifier interface {
	IdentifyPdfLinks(links []string) []string
}

// PolitenessProvider reports the robots.txt Crawl-delay for a URL's host, if
// any is declared.
type PolitenessProvider interface {
	CrawlDelay(ctx context.Context, url string) (time.Duration, bool)
}

// TaskStore persists tasks and their results.
type TaskStore interface {
	SaveTask(ctx context.Context, task TaskRecord) error
	SaveResult(ctx context.Context, taskID string, result CrawlResult) error
	GetResults(ctx context.Context, taskID string) ([]CrawlResult, error)
	GetAllTasks(ctx context.Context) ([]TaskRecord, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces task IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
