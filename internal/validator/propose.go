package validator

import (
	"github.com/stringhandler/dansim/internal/blockdag"
	"github.com/stringhandler/dansim/internal/mempool"
	"github.com/stringhandler/dansim/internal/message"
	"github.com/stringhandler/dansim/internal/shardtx"
)

// onPropose implements create_leaf / on_propose (spec §4.11).
func (v *Validator) onPropose(now uint64) []Outbound {
	maxPerBin := v.config.MaxTxPerStepPerBlock

	prepare := popUpTo(v.mempools.NewTx, maxPerBin)
	precommit := popUpTo(v.mempools.ReadyPrepared, maxPerBin)
	commit := popUpTo(v.mempools.ReadyPrecommitted, maxPerBin)

	prepare, precommit, commit = v.capToBlockSize(prepare, precommit, commit)

	block := &blockdag.Block{
		ID:           v.blockIDs.Next(),
		ParentID:     v.bLeaf.ID,
		Shard:        v.shard,
		Justify:      v.highQC,
		Height:       v.bLeaf.Height + 1,
		ProposedBy:   v.id,
		PrepareTxs:   prepare,
		PrecommitTxs: precommit,
		CommitTxs:    commit,
	}

	v.graph.Insert(block)
	v.sink.OnCreateLeaf(block, now)

	targets := make(map[uint64]struct{})
	for _, id := range v.committee.Get(v.shard) {
		targets[id] = struct{}{}
	}
	for _, s := range block.InvolvedShards() {
		for _, id := range v.committee.Get(s) {
			targets[id] = struct{}{}
		}
	}

	var out []Outbound
	for id := range targets {
		msg := message.BlockProposal{ID: v.nextMessageID(), Block: block}
		v.sink.OnMessageSent(v.id, id, msg.ID, "BlockProposal", now)
		out = append(out, Outbound{To: id, Msg: msg})
	}

	v.bLeaf = block
	v.lastProposedRound = v.currentHeight
	return out
}

// capToBlockSize enforces max_block_size across the three bins combined,
// pushing any overflow back onto the mempool position it was popped from
// rather than dropping it. commit is kept first, then precommit, then
// prepare, so a full block favors finalizing in-flight transactions over
// admitting new ones.
func (v *Validator) capToBlockSize(prepare, precommit, commit []*shardtx.Transaction) ([]*shardtx.Transaction, []*shardtx.Transaction, []*shardtx.Transaction) {
	if v.config.MaxBlockSize <= 0 {
		return prepare, precommit, commit
	}
	budget := v.config.MaxBlockSize

	take := func(txs []*shardtx.Transaction, returnTo *mempool.PriorityQueue) []*shardtx.Transaction {
		if len(txs) <= budget {
			budget -= len(txs)
			return txs
		}
		kept := txs[:budget]
		for _, tx := range txs[budget:] {
			returnTo.Push(tx)
		}
		budget = 0
		return kept
	}

	commit = take(commit, v.mempools.ReadyPrecommitted)
	precommit = take(precommit, v.mempools.ReadyPrepared)
	prepare = take(prepare, v.mempools.NewTx)
	return prepare, precommit, commit
}

func popUpTo(q interface {
	PopMax() (*shardtx.Transaction, bool)
}, n int) []*shardtx.Transaction {
	var out []*shardtx.Transaction
	for i := 0; i < n; i++ {
		tx, ok := q.PopMax()
		if !ok {
			break
		}
		out = append(out, tx)
	}
	return out
}
