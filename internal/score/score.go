// Package score maintains per-domain trust weights used to bias
// priority-based traversal, independent of frontier ordering.
package score

import (
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

// Score bounds. Whitelisted hosts pin to WhitelistScore and blacklisted hosts
// to BlacklistScore regardless of accumulated deltas.
const (
	DefaultScore   = 1.0
	MaxScore       = 5.0
	MinScore       = 0.1
	WhitelistScore = 10.0
	BlacklistScore = 0.0
)

// Event identifies what happened on a domain; each maps to a signed delta.
type Event string

// Score-adjusting events and their deltas.
const (
	EventResourceFound      Event = "RESOURCE_FOUND"       // +0.2
	EventHighQualityContent Event = "HIGH_QUALITY_CONTENT" // +0.05
	EventFastResponse       Event = "FAST_RESPONSE"        // +0.02
	EventError4xx5xx        Event = "ERROR_4XX_5XX"        // -0.5
	EventDuplicateContent   Event = "DUPLICATE_CONTENT"    // -0.1
)

var deltas = map[Event]float64{
	EventResourceFound:      0.2,
	EventHighQualityContent: 0.05,
	EventFastResponse:       0.02,
	EventError4xx5xx:        -0.5,
	EventDuplicateContent:   -0.1,
}

// Manager tracks dynamic per-domain scores for one task run. Scores are never
// persisted; each run rebuilds them from scratch.
type Manager struct {
	mu        sync.Mutex
	taskID    string
	scores    map[string]float64
	whitelist []string
	blacklist []string
	logger    *zap.Logger
}

// NewManager builds a Manager scoped to one task. Whitelist and blacklist
// entries must already be normalized hostnames.
func NewManager(taskID string, whitelist, blacklist []string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		taskID:    taskID,
		scores:    make(map[string]float64),
		whitelist: whitelist,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Score returns the current weight for a URL's domain. Whitelist and
// blacklist matches (exact or subdomain) take absolute precedence.
func (m *Manager) Score(url string) float64 {
	domain := crawler.Host(url)
	if crawler.HostMatchesAny(domain, m.whitelist) {
		return WhitelistScore
	}
	if crawler.HostMatchesAny(domain, m.blacklist) {
		return BlacklistScore
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.scores[domain]; ok {
		return current
	}
	return DefaultScore
}

// Update applies the event's delta to the URL's domain, clamped to
// [MinScore, MaxScore]. Whitelisted and blacklisted domains are never
// adjusted.
func (m *Manager) Update(url string, event Event) {
	domain := crawler.Host(url)
	if domain == "" {
		return
	}
	if crawler.HostMatchesAny(domain, m.whitelist) || crawler.HostMatchesAny(domain, m.blacklist) {
		return
	}
	delta, known := deltas[event]
	if !known {
		return
	}

	m.mu.Lock()
	current, ok := m.scores[domain]
	if !ok {
		current = DefaultScore
	}
	next := current + delta
	if next > MaxScore {
		next = MaxScore
	}
	if next < MinScore {
		next = MinScore
	}
	m.scores[domain] = next
	m.mu.Unlock()

	if delta != 0 {
		m.logger.Info("domain score updated",
			zap.String("task_id", m.taskID),
			zap.String("domain", domain),
			zap.Float64("from", current),
			zap.Float64("to", next),
			zap.String("event", string(event)),
		)
	}
}
