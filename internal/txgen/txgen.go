// Package txgen generates the transactions a driver injects into the
// simulation. spec.md leaves the generation policy as an external
// collaborator's concern; original_source/src/transaction_generator.rs
// ships a hardcoded two-transaction fixture. This package generalizes that
// into a real, if simple, probability-distribution-driven generator so the
// driver has something to inject for arbitrary num_transactions.
package txgen

import (
	"math/rand"

	"github.com/stringhandler/dansim/internal/shardtx"
)

// Generator produces transactions on demand. Next returns ok=false once
// exhausted.
type Generator interface {
	Next() (*shardtx.Transaction, bool)
}

// Distribution is the §6 cross-shardedness distribution: the probability a
// generated transaction touches exactly 2, 3, 4 or 5 shards. The remaining
// probability mass (1 - sum) goes to single-shard transactions.
type Distribution struct {
	Probability2Shards float64
	Probability3Shards float64
	Probability4Shards float64
	Probability5Shards float64
}

// Default is the shape that, when NumShards is too small to honor a given
// fan-out, clamps it down rather than erroring: a two-shard probability is
// meaningless with only one shard configured.
type Default struct {
	NumTransactions int
	NumShards       int
	Dist            Distribution
	Rng             *rand.Rand
	IDs             idSource

	emitted int
	nextFee uint64
}

type idSource interface {
	Next() uint64
}

// NewDefault returns a generator that will emit exactly numTransactions
// transactions, each with a monotonically increasing id drawn from ids and
// a shard set sampled from dist, clamped to [1, numShards].
func NewDefault(numTransactions, numShards int, dist Distribution, rng *rand.Rand, ids idSource) *Default {
	return &Default{
		NumTransactions: numTransactions,
		NumShards:       numShards,
		Dist:            dist,
		Rng:             rng,
		IDs:             ids,
	}
}

// Next implements Generator.
func (d *Default) Next() (*shardtx.Transaction, bool) {
	if d.emitted >= d.NumTransactions {
		return nil, false
	}
	d.emitted++
	d.nextFee++

	k := d.sampleShardCount()
	shards := d.sampleDistinctShards(k)
	id := d.IDs.Next()
	return shardtx.New(id, shards, d.nextFee), true
}

// sampleShardCount picks how many shards the next transaction touches,
// per Dist, clamped to the configured committee count.
func (d *Default) sampleShardCount() int {
	r := d.Rng.Float64()
	var k int
	switch {
	case r < d.Dist.Probability2Shards:
		k = 2
	case r < d.Dist.Probability2Shards+d.Dist.Probability3Shards:
		k = 3
	case r < d.Dist.Probability2Shards+d.Dist.Probability3Shards+d.Dist.Probability4Shards:
		k = 4
	case r < d.Dist.Probability2Shards+d.Dist.Probability3Shards+d.Dist.Probability4Shards+d.Dist.Probability5Shards:
		k = 5
	default:
		k = 1
	}
	if k > d.NumShards {
		k = d.NumShards
	}
	if k < 1 {
		k = 1
	}
	return k
}

func (d *Default) sampleDistinctShards(k int) []shardtx.Shard {
	if k >= d.NumShards {
		all := make([]shardtx.Shard, d.NumShards)
		for i := range all {
			all[i] = shardtx.Shard(i)
		}
		return all
	}
	perm := d.Rng.Perm(d.NumShards)
	out := make([]shardtx.Shard, k)
	for i := 0; i < k; i++ {
		out[i] = shardtx.Shard(perm[i])
	}
	return out
}
