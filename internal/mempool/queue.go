// Package mempool implements the per-validator transaction mempools: the
// new_tx/ready_prepared/ready_precommitted priority queues ordered by
// (fee, id), and the waiting_prepared/waiting_precommitted partial-evidence
// sets that promote into them once every involved shard has checked in.
package mempool

import (
	"container/heap"

	"github.com/stringhandler/dansim/internal/shardtx"
)

// maxHeap is a container/heap.Interface backing PriorityQueue; it orders
// transactions so the maximum under (fee, id) ascending sits at index 0.
type maxHeap []*shardtx.Transaction

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	// shardtx.Less is the ascending (fee,id) comparator; a max-heap wants
	// the largest element on top, so invert it here.
	return shardtx.Less(h[j], h[i])
}
func (h maxHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)   { *h = append(*h, x.(*shardtx.Transaction)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// PriorityQueue is a priority queue over transactions ordered by (fee, id)
// ascending, popping the maximum. It backs new_tx, ready_prepared and
// ready_precommitted: every mempool position that holds transactions
// eligible for inclusion in a leader's next proposal.
type PriorityQueue struct {
	h maxHeap
}

// NewPriorityQueue returns an empty queue.
func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{}
}

// Push adds tx to the queue.
func (q *PriorityQueue) Push(tx *shardtx.Transaction) {
	heap.Push(&q.h, tx)
}

// PopMax removes and returns the transaction with the greatest (fee, id);
// ok is false if the queue is empty.
func (q *PriorityQueue) PopMax() (tx *shardtx.Transaction, ok bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.h).(*shardtx.Transaction), true
}

// Remove deletes the transaction with the given id, if present, reporting
// whether one was found. Used to prevent double-prepare when a tx gets
// prepared via apply_qc before the local leader ever popped it.
func (q *PriorityQueue) Remove(id uint64) (ok bool) {
	for i, tx := range q.h {
		if tx.ID == id {
			heap.Remove(&q.h, i)
			return true
		}
	}
	return false
}

// Len returns the number of transactions queued.
func (q *PriorityQueue) Len() int {
	return q.h.Len()
}

// Snapshot returns every queued transaction in no particular order; it does
// not drain the queue. Intended for tests and stats.
func (q *PriorityQueue) Snapshot() []*shardtx.Transaction {
	out := make([]*shardtx.Transaction, len(q.h))
	copy(out, q.h)
	return out
}
