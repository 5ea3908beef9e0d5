package workflow

import (
	"container/heap"

	"mailflow/internal/types"
)

// =============================================================================
// PRIORITY QUEUE
// =============================================================================
//
// The queue is an explicit binary heap keyed on (priorityRank, sequence).
// Rank 0 (urgent) dequeues before rank 1; within a rank the strictly
// increasing sequence number gives FIFO order and guarantees no two entries
// ever compare equal, so ordering never depends on comparison stability.

// queueEntry is the internal (rank, sequence, item) tuple governing dequeue
// order.
type queueEntry struct {
	rank int
	seq  uint64
	item *types.Item
}

// entryHeap implements heap.Interface over queue entries.
type entryHeap []*queueEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(*queueEntry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// push inserts an entry. O(log n). Caller holds the queue lock.
func (h *entryHeap) push(entry *queueEntry) {
	heap.Push(h, entry)
}

// pop removes and returns the minimum entry, or nil when empty. Caller
// holds the queue lock.
func (h *entryHeap) pop() *queueEntry {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*queueEntry)
}
