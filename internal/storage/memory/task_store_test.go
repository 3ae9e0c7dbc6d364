package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

func TestTaskStoreSaveAndList(t *testing.T) {
	t.Parallel()

	store := NewTaskStore()
	ctx := context.Background()

	rec := crawler.TaskRecord{
		ID:        "task-1",
		Name:      "first",
		Status:    crawler.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveTask(ctx, rec))

	rec.Status = crawler.TaskStatusRunning
	require.NoError(t, store.SaveTask(ctx, rec))

	require.NoError(t, store.SaveTask(ctx, crawler.TaskRecord{ID: "task-2", Name: "second"}))

	tasks, err := store.GetAllTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "task-1", tasks[0].ID)
	require.Equal(t, crawler.TaskStatusRunning, tasks[0].Status)
	require.Equal(t, "task-2", tasks[1].ID)
}

func TestTaskStoreResultsInsertionOrder(t *testing.T) {
	t.Parallel()

	store := NewTaskStore()
	ctx := context.Background()

	require.NoError(t, store.SaveResult(ctx, "task-1", crawler.CrawlResult{URL: "https://a.test/"}))
	require.NoError(t, store.SaveResult(ctx, "task-1", crawler.CrawlResult{URL: "https://a.test/b"}))

	results, err := store.GetResults(ctx, "task-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "https://a.test/", results[0].URL)
	require.Equal(t, "https://a.test/b", results[1].URL)

	empty, err := store.GetResults(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestTaskStoreResultsAreCopies(t *testing.T) {
	t.Parallel()

	store := NewTaskStore()
	ctx := context.Background()

	require.NoError(t, store.SaveResult(ctx, "task-1", crawler.CrawlResult{URL: "https://a.test/"}))
	results, err := store.GetResults(ctx, "task-1")
	require.NoError(t, err)
	results[0].URL = "mutated"

	again, err := store.GetResults(ctx, "task-1")
	require.NoError(t, err)
	require.Equal(t, "https://a.test/", again[0].URL)
}
