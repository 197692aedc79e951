package sink

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stringhandler/dansim/internal/blockdag"
	"github.com/stringhandler/dansim/internal/shardtx"
)

// Event is a single recorded publication, kept for test assertions. Fields
// not relevant to a given Kind are left zero.
type Event struct {
	Kind    string
	VNID    uint64
	BlockID uint64
	TxID    uint64
	Shard   uint64
	QC      uint64
	T       uint64
}

// Recorder is an in-memory Sink: every publication is appended to Events
// and folded into per-validator Counters. It substitutes for a real
// persistence layer in tests (see spec §9 design notes).
type Recorder struct {
	mu       sync.Mutex
	Events   []Event
	counters map[uint64]*Counters
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{counters: make(map[uint64]*Counters)}
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

func (r *Recorder) counterFor(vnID uint64) *Counters {
	c, ok := r.counters[vnID]
	if !ok {
		c = &Counters{}
		r.counters[vnID] = c
	}
	return c
}

func (r *Recorder) CreateShard(shardID uint64) {
	r.record(Event{Kind: "create_shard", Shard: shardID})
}

func (r *Recorder) CreateVN(vnID uint64, shard uint64, latencyMillis uint64) {
	r.record(Event{Kind: "create_vn", VNID: vnID, Shard: shard})
}

func (r *Recorder) CreateIndexer(id uint64) {
	r.record(Event{Kind: "create_indexer", VNID: id})
}

func (r *Recorder) OnCreateLeaf(block *blockdag.Block, t uint64) {
	r.mu.Lock()
	r.counterFor(block.ProposedBy).LeavesCreated++
	r.mu.Unlock()
	r.record(Event{Kind: "on_create_leaf", VNID: block.ProposedBy, BlockID: block.ID, T: t})
}

func (r *Recorder) OnVote(vnID, blockID, t uint64) {
	r.record(Event{Kind: "on_vote", VNID: vnID, BlockID: blockID, T: t})
}

func (r *Recorder) OnQCCreated(qcID, t, blockID uint64) {
	r.record(Event{Kind: "on_qc_created", QC: qcID, BlockID: blockID, T: t})
}

func (r *Recorder) OnTransactionQueued(txID, t uint64, tx *shardtx.Transaction) {
	r.record(Event{Kind: "on_transaction_queued", TxID: txID, T: t})
}

func (r *Recorder) OnTransactionPreparedReady(txID uint64, shard uint64, qc, t uint64) {
	r.record(Event{Kind: "on_transaction_prepared_ready", TxID: txID, Shard: shard, QC: qc, T: t})
}

func (r *Recorder) OnTransactionPreparedWaiting(txID uint64, shard uint64, qc, t uint64) {
	r.record(Event{Kind: "on_transaction_prepared_waiting", TxID: txID, Shard: shard, QC: qc, T: t})
}

func (r *Recorder) OnTransactionPrecommitReady(txID uint64, shard uint64, qc, t uint64) {
	r.record(Event{Kind: "on_transaction_precommit_ready", TxID: txID, Shard: shard, QC: qc, T: t})
}

func (r *Recorder) OnTransactionPrecommitWaiting(txID uint64, shard uint64, qc, t uint64) {
	r.record(Event{Kind: "on_transaction_precommit_waiting", TxID: txID, Shard: shard, QC: qc, T: t})
}

func (r *Recorder) OnTransactionCommitted(txID uint64, shard uint64, qc, t uint64) {
	r.record(Event{Kind: "on_transaction_committed", TxID: txID, Shard: shard, QC: qc, T: t})
}

func (r *Recorder) OnTransactionMovedToPrepareReady(txID uint64, inVN uint64, t uint64, inBlock uint64) {
	r.record(Event{Kind: "on_transaction_moved_to_prepare_ready", TxID: txID, VNID: inVN, BlockID: inBlock, T: t})
}

func (r *Recorder) OnMessageSent(from, to, messageID uint64, messageStr string, t uint64) {
	r.record(Event{Kind: "on_message_sent:" + messageStr, VNID: from, TxID: messageID, T: t})
}

func (r *Recorder) OnRequestBlock(vnID uint64) {
	r.mu.Lock()
	r.counterFor(vnID).RequestBlockCount++
	r.mu.Unlock()
	r.record(Event{Kind: "on_request_block", VNID: vnID})
}

func (r *Recorder) OnLeaderFailure(vnID uint64) {
	r.mu.Lock()
	r.counterFor(vnID).LeaderFailures++
	r.mu.Unlock()
	r.record(Event{Kind: "on_leader_failure", VNID: vnID})
}

func (r *Recorder) PrintStats() {
	r.record(Event{Kind: "print_stats"})

	r.mu.Lock()
	defer r.mu.Unlock()
	vnIDs := make([]uint64, 0, len(r.counters))
	for id := range r.counters {
		vnIDs = append(vnIDs, id)
	}
	sort.Slice(vnIDs, func(i, j int) bool { return vnIDs[i] < vnIDs[j] })
	for _, id := range vnIDs {
		c := r.counters[id]
		fmt.Printf("vn %d: leaves_created=%d request_block_count=%d leader_failures=%d\n", id, c.LeavesCreated, c.RequestBlockCount, c.LeaderFailures)
	}
}

func (r *Recorder) CountersFor(vnID uint64) Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[vnID]
	if !ok {
		return Counters{}
	}
	return *c
}
