package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stringhandler/dansim/internal/shardtx"
)

func TestPriorityQueuePopsMaxFeeThenID(t *testing.T) {
	q := NewPriorityQueue()
	fees := []uint64{1, 5, 3, 5, 2}
	for i, fee := range fees {
		q.Push(shardtx.New(uint64(i+1), []shardtx.Shard{0}, fee))
	}

	first, ok := q.PopMax()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), first.Fee)
	// two txs tie at fee=5 (ids 2 and 4); ascending tie-break means the
	// higher id is the maximum of the pair.
	assert.Equal(t, uint64(4), first.ID)

	second, ok := q.PopMax()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), second.Fee)
	assert.Equal(t, uint64(2), second.ID)

	third, _ := q.PopMax()
	assert.Equal(t, uint64(3), third.Fee)
}

func TestPriorityQueueRemove(t *testing.T) {
	q := NewPriorityQueue()
	q.Push(shardtx.New(1, []shardtx.Shard{0}, 10))
	q.Push(shardtx.New(2, []shardtx.Shard{0}, 20))

	assert.True(t, q.Remove(1))
	assert.False(t, q.Remove(1), "removing an already-removed id should report false")
	assert.Equal(t, 1, q.Len())
}

func TestPriorityQueuePopEmpty(t *testing.T) {
	q := NewPriorityQueue()
	_, ok := q.PopMax()
	assert.False(t, ok)
}

func TestWaitingSetPromotesOnlyWhenAllShardsReport(t *testing.T) {
	w := NewWaitingSet()
	tx := shardtx.New(1, []shardtx.Shard{0, 1, 2}, 10)

	ready := w.Register(tx, 0, 100)
	assert.False(t, ready)
	ready = w.Register(tx, 1, 101)
	assert.False(t, ready)
	assert.True(t, w.Has(1))

	ready = w.Register(tx, 2, 102)
	assert.True(t, ready, "registering the last missing shard's evidence should promote")

	entry, ok := w.Remove(1)
	assert.True(t, ok)
	assert.Len(t, entry.JustifyingBlock, 3)
}

func TestWaitingSetSingleShardNeedsOneReport(t *testing.T) {
	w := NewWaitingSet()
	tx := shardtx.New(1, []shardtx.Shard{0}, 10)
	ready := w.Register(tx, 0, 5)
	assert.True(t, ready)
}
