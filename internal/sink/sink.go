// Package sink defines the observability event vocabulary the consensus
// core publishes to, and provides two implementations: an in-memory
// Recorder for tests and a Prometheus-backed Collector for real runs. A
// faithful deployment persists these events to a graph database for
// post-hoc analysis; that persistence layer is an external collaborator
// and out of scope here (see SPEC_FULL.md).
package sink

import (
	"github.com/stringhandler/dansim/internal/blockdag"
	"github.com/stringhandler/dansim/internal/shardtx"
)

// Counters is the per-validator aggregate the sink must expose on demand.
type Counters struct {
	LeavesCreated     int64
	RequestBlockCount int64
	LeaderFailures    int64
}

// Sink is implemented once per method by every lifecycle event a validator
// or the driver emits. Publication must complete before the tick boundary
// (no suspension points are modeled); implementations that need real async
// I/O are expected to buffer internally rather than block the caller.
type Sink interface {
	CreateShard(shardID uint64)
	CreateVN(vnID uint64, shard uint64, latencyMillis uint64)
	CreateIndexer(id uint64)

	OnCreateLeaf(block *blockdag.Block, t uint64)
	OnVote(vnID, blockID, t uint64)
	OnQCCreated(qcID, t, blockID uint64)

	OnTransactionQueued(txID, t uint64, tx *shardtx.Transaction)

	OnTransactionPreparedReady(txID uint64, shard uint64, qc, t uint64)
	OnTransactionPreparedWaiting(txID uint64, shard uint64, qc, t uint64)
	OnTransactionPrecommitReady(txID uint64, shard uint64, qc, t uint64)
	OnTransactionPrecommitWaiting(txID uint64, shard uint64, qc, t uint64)
	OnTransactionCommitted(txID uint64, shard uint64, qc, t uint64)

	OnTransactionMovedToPrepareReady(txID uint64, inVN uint64, t uint64, inBlock uint64)

	OnMessageSent(from, to, messageID uint64, messageStr string, t uint64)

	OnRequestBlock(vnID uint64)
	OnLeaderFailure(vnID uint64)

	PrintStats()

	// CountersFor returns the aggregate counters for vnID.
	CountersFor(vnID uint64) Counters
}
