package frontier

import (
	"container/heap"

	"github.com/JakeFAU/frontier-crawler/internal/crawler"
)

// priorityQueue backs PRIORITY and BIG_SITE_FIRST: a max-heap keyed by
// priority descending, with insertion order as a stable tie-break so earlier
// enqueues win among equal priorities.
type priorityQueue struct {
	items *heapItems
	seq   uint64
}

func newPriorityQueue() *priorityQueue {
	items := &heapItems{}
	heap.Init(items)
	return &priorityQueue{items: items}
}

func (q *priorityQueue) push(item crawler.QueuedURL) {
	heap.Push(q.items, heapEntry{item: item, seq: q.seq})
	q.seq++
}

func (q *priorityQueue) pop() (crawler.QueuedURL, bool) {
	if q.items.Len() == 0 {
		return crawler.QueuedURL{}, false
	}
	entry, ok := heap.Pop(q.items).(heapEntry)
	return entry.item, ok
}

func (q *priorityQueue) len() int { return q.items.Len() }

func (q *priorityQueue) clear() {
	*q.items = (*q.items)[:0]
	q.seq = 0
}

type heapEntry struct {
	item crawler.QueuedURL
	seq  uint64
}

type heapItems []heapEntry

func (h heapItems) Len() int { return len(h) }

func (h heapItems) Less(i, j int) bool {
	if h[i].item.Priority != h[j].item.Priority {
		return h[i].item.Priority > h[j].item.Priority
	}
	return h[i].seq < h[j].seq
}

func (h heapItems) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *heapItems) Push(x any) {
	*h = append(*h, x.(heapEntry))
}

func (h *heapItems) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}
