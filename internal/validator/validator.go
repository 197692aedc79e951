// Package validator implements the per-node consensus state machine: the
// 55%-share core of the simulation. A Validator owns its own block graph
// and mempools and is driven sequentially by the caller (the driver
// package); two Validators never run concurrently, so no internal locking
// is needed (see spec §9 design notes).
package validator

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/stringhandler/dansim/internal/blockdag"
	"github.com/stringhandler/dansim/internal/committee"
	"github.com/stringhandler/dansim/internal/ids"
	"github.com/stringhandler/dansim/internal/mempool"
	"github.com/stringhandler/dansim/internal/message"
	"github.com/stringhandler/dansim/internal/qcset"
	"github.com/stringhandler/dansim/internal/shardtx"
	"github.com/stringhandler/dansim/internal/sink"
)

// Config is the subset of the simulation's configuration a single
// Validator needs.
type Config struct {
	MaxTxPerStepPerBlock int
	MaxBlockSize         int // total prepare+precommit+commit txs a single block may carry; 0 means unbounded
	Delta                uint64 // leader timeout budget, milliseconds
}

// Outbound pairs a message with the validator id it is addressed to. The
// driver is responsible for handing these to the network simulator.
type Outbound struct {
	To  uint64
	Msg message.Message
}

type snoozedEntry struct {
	arrivalTime uint64
	proposal    message.BlockProposal
}

// Validator is the per-node HotStuff-with-cross-shard-lifecycle state
// machine described in spec §4.3. It is not safe for concurrent use.
type Validator struct {
	id    uint64
	shard shardtx.Shard

	committee *committee.Manager
	config    Config
	sink      sink.Sink
	logger    *log.Logger

	blockIDs *ids.Provider
	msgIDs   *ids.Provider
	qcIDs    *ids.Provider

	inbox []message.Message

	graph           *blockdag.Graph
	bLeaf           *blockdag.Block
	lockedNode      *blockdag.Block
	bExec           *blockdag.Block
	highQC          qcset.QC
	lastVotedHeight uint64
	currentHeight   uint64
	currentLeader   uint64
	lastProposedRound uint64

	votes        *qcset.Collector
	newViewVotes *qcset.Collector
	canPropose   bool

	snoozed map[uint64][]snoozedEntry

	timeLastProposalReceived uint64

	mempools *mempool.Mempools

	// executedBlocks records, in commit order, the ids on_commit has
	// walked over. Non-goal: no execution semantics beyond this count
	// (spec §1).
	executedBlocks []uint64
}

// New constructs a Validator for id in shard. blockIDs, msgIDs and qcIDs
// must be shared across every validator in the simulation so that block,
// message and QC ids are globally unique. committeeMgr must likewise be
// shared: a validator needs to resolve leaders and sizes for shards other
// than its own when observing foreign proposals.
func New(id uint64, shard shardtx.Shard, committeeMgr *committee.Manager, cfg Config, blockIDs, msgIDs, qcIDs *ids.Provider, s sink.Sink) *Validator {
	genesis := blockdag.Genesis(shard)
	graph := blockdag.NewGraph(shard)

	return &Validator{
		id:           id,
		shard:        shard,
		committee:    committeeMgr,
		config:       cfg,
		sink:         s,
		logger:       log.New(os.Stdout, "VALIDATOR-"+strconv.FormatUint(id, 10)+": ", log.Ldate|log.Ltime|log.Lshortfile),
		blockIDs:     blockIDs,
		msgIDs:       msgIDs,
		qcIDs:        qcIDs,
		graph:        graph,
		bLeaf:        genesis,
		lockedNode:   genesis,
		bExec:        genesis,
		highQC:       qcset.Genesis(),
		votes:        qcset.NewCollector(),
		newViewVotes: qcset.NewCollector(),
		snoozed:      make(map[uint64][]snoozedEntry),
		mempools:     mempool.New(),
	}
}

// ID returns the validator's id.
func (v *Validator) ID() uint64 { return v.id }

// Shard returns the validator's committee.
func (v *Validator) Shard() shardtx.Shard { return v.shard }

// BExec returns the highest executed block.
func (v *Validator) BExec() *blockdag.Block { return v.bExec }

// LockedNode returns the highest locked block.
func (v *Validator) LockedNode() *blockdag.Block { return v.lockedNode }

// HighQC returns the highest-height QC known to this validator.
func (v *Validator) HighQC() qcset.QC { return v.highQC }

// Mempools exposes the five lifecycle mempool positions, mainly for tests
// and stats.
func (v *Validator) Mempools() *mempool.Mempools { return v.mempools }

// Deliver enqueues msg for processing on this validator's next Tick. The
// network simulator and the driver's direct transaction injection both call
// this.
func (v *Validator) Deliver(msg message.Message) {
	v.inbox = append(v.inbox, msg)
}

func (v *Validator) nextMessageID() uint64 {
	return v.msgIDs.Next()
}

func (v *Validator) mustGet(id uint64) *blockdag.Block {
	b, ok := v.graph.Get(id)
	if !ok {
		panic("validator " + strconv.FormatUint(v.id, 10) + ": block " + strconv.FormatUint(id, 10) + " missing from graph")
	}
	return b
}

// isLeader reports whether this validator is the leader for the view that
// extends the current leaf. b_leaf.proposed_by is the re-derivable source
// of truth for the "current leader" of the chain (spec §9 design notes).
func (v *Validator) isLeader() bool {
	return v.committee.NextLeader(v.shard, v.bLeaf.ProposedBy) == v.id
}

func (v *Validator) updateHighQC(qc qcset.QC) {
	if qc.BlockHeight >= v.highQC.BlockHeight {
		v.highQC = qc
	}
}

// dispatch routes one message to its handler, returning any outbound
// messages it produces and whether processing it formed a new QC (the
// on_beat trigger, spec §4.8/§4.10).
func (v *Validator) dispatch(msg message.Message, now uint64) (out []Outbound, formedQC bool) {
	switch m := msg.(type) {
	case message.Transaction:
		v.onReceiveTransaction(m, now)
	case message.BlockProposal:
		out = v.onReceiveProposal(m, now)
	case message.Vote:
		formedQC = v.onReceiveVote(m, now)
	case message.NewView:
		v.onReceiveNewView(m, now)
	case message.RequestBlock:
		out = v.onReceiveRequestBlock(m, now)
	case message.RequestBlockResponse:
		out = v.onReceiveRequestBlockResponse(m, now)
	default:
		v.logger.Printf("unrecognized message type %T dropped", msg)
	}
	return out, formedQC
}

// Tick drains the inbox and runs the per-step dispatch described in spec
// §4.10, returning every outbound message produced this tick.
func (v *Validator) Tick(now uint64) []Outbound {
	var out []Outbound
	newQC := false

	pending := v.inbox
	v.inbox = nil
	for _, msg := range pending {
		o, formed := v.dispatch(msg, now)
		out = append(out, o...)
		if formed {
			newQC = true
		}
	}

	leader := v.isLeader()
	switch {
	case (newQC || v.canPropose) && leader:
		v.canPropose = false
		out = append(out, v.onPropose(now)...)
	case now >= v.timeLastProposalReceived+v.config.Delta/2 && leader:
		out = append(out, v.onPropose(now)...)
	case v.currentHeight == 0 || now >= v.timeLastProposalReceived+v.config.Delta:
		out = append(out, v.onNextSyncView(now)...)
		v.timeLastProposalReceived = now
	}
	return out
}

func (v *Validator) onReceiveTransaction(m message.Transaction, now uint64) {
	tx := m.Tx
	if !tx.InvolvesShard(v.shard) {
		v.logger.Printf("%v", fmt.Errorf("%w: tx %d, shard %d", ErrWrongShard, tx.ID, v.shard))
		return
	}
	v.mempools.NewTx.Push(tx)
	v.sink.OnTransactionQueued(tx.ID, now, tx)
}
