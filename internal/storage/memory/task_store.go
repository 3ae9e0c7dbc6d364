package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

// TaskStore provides an in-memory implementation for development/testing.
type TaskStore struct {
	mu      sync.RWMutex
	tasks   map[string]crawler.TaskRecord
	order   []string
	results map[string][]crawler.CrawlResult
}

// NewTaskStore constructs a TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:   make(map[string]crawler.TaskRecord),
		results: make(map[string][]crawler.CrawlResult),
	}
}

// SaveTask upserts the task record.
func (s *TaskStore) SaveTask(_ context.Context, record crawler.TaskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.tasks[record.ID] = record
	return nil
}

// SaveResult appends a result row for a task.
func (s *TaskStore) SaveResult(_ context.Context, taskID string, result crawler.CrawlResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[taskID] = append(s.results[taskID], result)
	return nil
}

// GetResults returns all recorded results for a task in insertion order.
func (s *TaskStore) GetResults(_ context.Context, taskID string) ([]crawler.CrawlResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.results[taskID]
	out := make([]crawler.CrawlResult, len(results))
	copy(out, results)
	return out, nil
}

// GetAllTasks returns every stored task record in save order.
func (s *TaskStore) GetAllTasks(_ context.Context) ([]crawler.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.TaskRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out, nil
}
