package txgen

import (
	"math/rand"
	"testing"

	"github.com/stringhandler/dansim/internal/ids"
	"github.com/stringhandler/dansim/internal/shardtx"
)

func TestDefaultEmitsExactlyNumTransactions(t *testing.T) {
	g := NewDefault(5, 3, Distribution{Probability2Shards: 0.5}, rand.New(rand.NewSource(1)), ids.NewProvider())

	count := 0
	for {
		_, ok := g.Next()
		if !ok {
			break
		}
		count++
	}
	if count != 5 {
		t.Fatalf("Default emitted %d transactions; want 5", count)
	}
}

func TestDefaultClampsShardCountToNumShards(t *testing.T) {
	g := NewDefault(20, 1, Distribution{Probability5Shards: 1.0}, rand.New(rand.NewSource(2)), ids.NewProvider())
	for {
		tx, ok := g.Next()
		if !ok {
			break
		}
		if len(tx.Shards) != 1 {
			t.Fatalf("tx.Shards = %v; want exactly 1 shard when NumShards=1", tx.Shards)
		}
	}
}

func TestFixedEmitsInOrderThenExhausts(t *testing.T) {
	tx1 := shardtx.New(1, []shardtx.Shard{0}, 1)
	tx2 := shardtx.New(2, []shardtx.Shard{0}, 2)
	f := NewFixed(tx1, tx2)

	got1, ok := f.Next()
	if !ok || got1.ID != 1 {
		t.Fatalf("first Next() = %v, %v; want tx1, true", got1, ok)
	}
	got2, ok := f.Next()
	if !ok || got2.ID != 2 {
		t.Fatalf("second Next() = %v, %v; want tx2, true", got2, ok)
	}
	if _, ok := f.Next(); ok {
		t.Errorf("Next() after exhaustion returned ok=true")
	}
}
