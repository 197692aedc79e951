// Package blockdag holds the append-only block graph each validator
// maintains: the genesis block plus every block the validator has received,
// addressed by id.
package blockdag

import (
	"github.com/stringhandler/dansim/internal/qcset"
	"github.com/stringhandler/dansim/internal/shardtx"
)

// Block is immutable once constructed. ProposedBy is the validator id of
// the leader that authored it.
type Block struct {
	ID          uint64
	ParentID    uint64
	Shard       shardtx.Shard
	Justify     qcset.QC
	Height      uint64
	ProposedBy  uint64
	PrepareTxs  []*shardtx.Transaction
	PrecommitTxs []*shardtx.Transaction
	CommitTxs   []*shardtx.Transaction
}

// Genesis returns the well-known id-0 block every validator's graph starts
// with. It is its own justify target.
func Genesis(shard shardtx.Shard) *Block {
	return &Block{
		ID:         0,
		ParentID:   0,
		Shard:      shard,
		Justify:    qcset.Genesis(),
		Height:     0,
		ProposedBy: 0,
	}
}

// InvolvedShards returns the deduplicated union of shards touched by the
// block's prepare and precommit transactions.
func (b *Block) InvolvedShards() []shardtx.Shard {
	seen := make(map[shardtx.Shard]struct{})
	var out []shardtx.Shard
	add := func(txs []*shardtx.Transaction) {
		for _, tx := range txs {
			for _, s := range tx.Shards {
				if _, ok := seen[s]; ok {
					continue
				}
				seen[s] = struct{}{}
				out = append(out, s)
			}
		}
	}
	add(b.PrepareTxs)
	add(b.PrecommitTxs)
	return out
}
