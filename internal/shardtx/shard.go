// Package shardtx models shards and the transactions that touch them.
package shardtx

import "sort"

// Shard is an opaque committee identifier. A validator belongs to exactly
// one shard for its lifetime.
type Shard uint32

// SortShards returns a sorted copy of shards with duplicates removed.
func SortShards(shards []Shard) []Shard {
	seen := make(map[Shard]struct{}, len(shards))
	out := make([]Shard, 0, len(shards))
	for _, s := range shards {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
