package mempool

import "github.com/stringhandler/dansim/internal/shardtx"

// WaitingEntry is the partial evidence accumulated for one transaction:
// which of its shards have reported (via a foreign-committee QC) that the
// transaction reached this phase there, and which block justified each
// report.
type WaitingEntry struct {
	Tx              *shardtx.Transaction
	JustifyingBlock map[shardtx.Shard]uint64
}

// WaitingSet holds the waiting_prepared or waiting_precommitted mempool
// position: one WaitingEntry per transaction id, keyed by transaction id.
type WaitingSet struct {
	entries map[uint64]*WaitingEntry
}

// NewWaitingSet returns an empty set.
func NewWaitingSet() *WaitingSet {
	return &WaitingSet{entries: make(map[uint64]*WaitingEntry)}
}

// Register records that shard justified tx (via justifyingBlock) reaching
// this lifecycle phase. ready is true once every shard in tx.Shards has
// reported, meaning the entry should be removed (via Remove) and promoted
// to the corresponding ready mempool.
func (w *WaitingSet) Register(tx *shardtx.Transaction, shard shardtx.Shard, justifyingBlock uint64) (ready bool) {
	e, ok := w.entries[tx.ID]
	if !ok {
		e = &WaitingEntry{Tx: tx, JustifyingBlock: make(map[shardtx.Shard]uint64)}
		w.entries[tx.ID] = e
	}
	e.JustifyingBlock[shard] = justifyingBlock
	return len(e.JustifyingBlock) == len(tx.Shards)
}

// Remove deletes and returns the entry for txID, if present.
func (w *WaitingSet) Remove(txID uint64) (*WaitingEntry, bool) {
	e, ok := w.entries[txID]
	if ok {
		delete(w.entries, txID)
	}
	return e, ok
}

// Has reports whether txID currently has a waiting entry.
func (w *WaitingSet) Has(txID uint64) bool {
	_, ok := w.entries[txID]
	return ok
}

// Len returns the number of transactions with partial evidence.
func (w *WaitingSet) Len() int {
	return len(w.entries)
}
