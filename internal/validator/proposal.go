package validator

import (
	"fmt"

	"github.com/stringhandler/dansim/internal/blockdag"
	"github.com/stringhandler/dansim/internal/message"
	"github.com/stringhandler/dansim/internal/qcset"
	"github.com/stringhandler/dansim/internal/shardtx"
)

// onReceiveProposal implements spec §4.5.
func (v *Validator) onReceiveProposal(m message.BlockProposal, now uint64) []Outbound {
	block := m.Block

	if v.graph.Has(block.ID) {
		return nil // duplicate proposal: the first wins (§4.12)
	}

	if !v.graph.Has(block.Justify.BlockID) {
		v.logger.Printf("%v", fmt.Errorf("%w: block %d justify %d", ErrJustifyMissing, block.ID, block.Justify.BlockID))
		v.snoozed[block.Justify.BlockID] = append(v.snoozed[block.Justify.BlockID], snoozedEntry{
			arrivalTime: now,
			proposal:    m,
		})
		req := message.RequestBlock{ID: v.nextMessageID(), BlockID: block.Justify.BlockID, RequestBy: v.id}
		v.sink.OnRequestBlock(v.id)
		v.sink.OnMessageSent(v.id, block.ProposedBy, req.ID, "RequestBlock", now)
		return []Outbound{{To: block.ProposedBy, Msg: req}}
	}

	v.graph.Insert(block)
	v.timeLastProposalReceived = now

	if block.Shard == v.shard {
		return v.onOwnShardProposal(block, now)
	}
	v.onForeignShardProposal(block, now)
	return nil
}

func (v *Validator) onOwnShardProposal(block *blockdag.Block, now uint64) []Outbound {
	justifyNode := v.mustGet(block.Justify.BlockID)

	shouldVote := block.Height > v.lastVotedHeight &&
		(block.ParentID == v.lockedNode.ID || justifyNode.Height > v.lockedNode.Height)
	if !shouldVote {
		return nil
	}

	v.lastVotedHeight = block.Height
	v.bLeaf = block

	nextLeader := v.committee.NextLeader(v.shard, block.ProposedBy)
	vote := message.Vote{ID: v.nextMessageID(), BlockID: block.ID, BlockHeight: block.Height, VoteBy: v.id}
	v.sink.OnVote(v.id, block.ID, now)
	v.sink.OnMessageSent(v.id, nextLeader, vote.ID, "Vote", now)

	out := []Outbound{{To: nextLeader, Msg: vote}}
	out = append(out, v.updateBlocks(block, now)...)
	return out
}

// onForeignShardProposal implements spec §4.5.3, generalized to extract
// precommit evidence symmetrically to prepare
// evidence: the vocabulary (§6) has no distinct "moved to precommit ready"
// event, so a foreign block's precommit_txs feed the same
// on_transaction_precommit_ready|waiting events apply_qc uses, with qc=0
// signaling "observed directly, not via a local QC." Without this, a
// cross-shard tx's precommit phase would have no path to learn foreign
// committees' precommit state at all, since apply_qc only ever runs over
// this validator's own shard's blocks.
func (v *Validator) onForeignShardProposal(block *blockdag.Block, now uint64) {
	for _, tx := range block.PrepareTxs {
		ready := v.mempools.WaitingPrepared.Register(tx, block.Shard, block.ID)
		if ready {
			v.mempools.WaitingPrepared.Remove(tx.ID)
			v.mempools.ReadyPrepared.Push(tx)
		}
		v.sink.OnTransactionMovedToPrepareReady(tx.ID, v.id, now, block.ID)
	}

	for _, tx := range block.PrecommitTxs {
		ready := v.mempools.WaitingPrecommitted.Register(tx, block.Shard, block.ID)
		if ready {
			v.mempools.WaitingPrecommitted.Remove(tx.ID)
			v.mempools.ReadyPrecommitted.Push(tx)
			v.sink.OnTransactionPrecommitReady(tx.ID, uint64(block.Shard), 0, now)
		} else {
			v.sink.OnTransactionPrecommitWaiting(tx.ID, uint64(block.Shard), 0, now)
		}
	}
}

// updateBlocks implements the three-chain commit rule of spec §4.6.
func (v *Validator) updateBlocks(block *blockdag.Block, now uint64) []Outbound {
	bDoublePrime := v.mustGet(block.Justify.BlockID) // b''
	bPrime := v.mustGet(bDoublePrime.Justify.BlockID) // b'
	b := v.mustGet(bPrime.Justify.BlockID)             // b

	v.applyQC(block.Justify, bDoublePrime, now)
	v.updateHighQC(block.Justify)

	if bPrime.Height > v.lockedNode.Height {
		v.lockedNode = bPrime
	}

	if bDoublePrime.ParentID == bPrime.ID && bPrime.ParentID == b.ID {
		v.onCommit(b)
		v.bExec = b
	}
	return nil
}

// onCommit walks parent_id from x up to the currently-executed tip and
// executes bottom-up (spec §4.6). "Execution" here is limited to counting
// commits (spec §1 non-goal: no execution semantics beyond that).
func (v *Validator) onCommit(x *blockdag.Block) {
	var chain []*blockdag.Block
	cur := x
	for {
		chain = append(chain, cur)
		if cur.ID == v.bExec.ID || cur.ID == 0 {
			break
		}
		cur = v.mustGet(cur.ParentID)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	start := 0
	if len(chain) > 0 && chain[0].ID == v.bExec.ID {
		start = 1
	}
	v.executedBlocks = append(v.executedBlocks, blockIDsOf(chain[start:])...)
}

func blockIDsOf(blocks []*blockdag.Block) []uint64 {
	out := make([]uint64, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

// applyQC implements the transaction lifecycle transitions of spec §4.7.
func (v *Validator) applyQC(qc qcset.QC, justified *blockdag.Block, now uint64) {
	for _, tx := range justified.PrepareTxs {
		v.applyPrepareTx(tx, qc, now)
		v.mempools.NewTx.Remove(tx.ID)
	}
	for _, tx := range justified.PrecommitTxs {
		v.applyPrecommitTx(tx, qc, now)
		v.mempools.WaitingPrepared.Remove(tx.ID)
		v.mempools.ReadyPrepared.Remove(tx.ID)
	}
	for _, tx := range justified.CommitTxs {
		v.sink.OnTransactionCommitted(tx.ID, uint64(justified.Shard), qc.ID, now)
		v.mempools.WaitingPrecommitted.Remove(tx.ID)
		v.mempools.ReadyPrecommitted.Remove(tx.ID)
	}
}

func (v *Validator) applyPrepareTx(tx *shardtx.Transaction, qc qcset.QC, now uint64) {
	if len(tx.Shards) == 1 && tx.Shards[0] == v.shard {
		v.mempools.ReadyPrepared.Push(tx)
		v.sink.OnTransactionPreparedReady(tx.ID, uint64(v.shard), qc.ID, now)
		return
	}
	ready := v.mempools.WaitingPrepared.Register(tx, v.shard, qc.BlockID)
	if ready {
		v.mempools.WaitingPrepared.Remove(tx.ID)
		v.mempools.ReadyPrepared.Push(tx)
		v.sink.OnTransactionPreparedReady(tx.ID, uint64(v.shard), qc.ID, now)
	} else {
		v.sink.OnTransactionPreparedWaiting(tx.ID, uint64(v.shard), qc.ID, now)
	}
}

func (v *Validator) applyPrecommitTx(tx *shardtx.Transaction, qc qcset.QC, now uint64) {
	if len(tx.Shards) == 1 && tx.Shards[0] == v.shard {
		v.mempools.ReadyPrecommitted.Push(tx)
		v.sink.OnTransactionPrecommitReady(tx.ID, uint64(v.shard), qc.ID, now)
		return
	}
	ready := v.mempools.WaitingPrecommitted.Register(tx, v.shard, qc.BlockID)
	if ready {
		v.mempools.WaitingPrecommitted.Remove(tx.ID)
		v.mempools.ReadyPrecommitted.Push(tx)
		v.sink.OnTransactionPrecommitReady(tx.ID, uint64(v.shard), qc.ID, now)
	} else {
		v.sink.OnTransactionPrecommitWaiting(tx.ID, uint64(v.shard), qc.ID, now)
	}
}
