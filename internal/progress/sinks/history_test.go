package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/frontier-crawler/internal/progress"
)

func TestHistorySinkRetainsPerTaskWindows(t *testing.T) {
	t.Parallel()

	sink := NewHistorySink(0)
	now := time.Now().UTC()

	batch := []progress.Event{
		progress.New(progress.TypeTaskStarted, "task-a", now, nil),
		progress.New(progress.TypePageCrawled, "task-a", now, map[string]any{"url": "https://a.test/"}),
		progress.New(progress.TypeTaskStarted, "task-b", now, nil),
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	a := sink.Events("task-a")
	require.Len(t, a, 2)
	require.Equal(t, progress.TypeTaskStarted, a[0].Type)
	require.Equal(t, progress.TypePageCrawled, a[1].Type)

	require.Len(t, sink.Events("task-b"), 1)
	require.Empty(t, sink.Events("unknown"))
}

func TestHistorySinkTrimsOldestBeyondLimit(t *testing.T) {
	t.Parallel()

	sink := NewHistorySink(3)
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		evt := progress.New(progress.TypePageCrawled, "task-a", now, map[string]any{"seq": i})
		require.NoError(t, sink.Consume(context.Background(), []progress.Event{evt}))
	}

	events := sink.Events("task-a")
	require.Len(t, events, 3)
	require.Equal(t, 2, events[0].Payload["seq"])
	require.Equal(t, 4, events[2].Payload["seq"])
}

func TestHistorySinkEventsReturnsCopy(t *testing.T) {
	t.Parallel()

	sink := NewHistorySink(10)
	evt := progress.New(progress.TypeTaskStarted, "task-a", time.Now().UTC(), nil)
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{evt}))

	first := sink.Events("task-a")
	first[0].TaskID = "mutated"
	require.Equal(t, "task-a", sink.Events("task-a")[0].TaskID)
}
