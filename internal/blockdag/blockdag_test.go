package blockdag

import (
	"testing"

	"github.com/stringhandler/dansim/internal/shardtx"
)

func TestGenesisIsIDZero(t *testing.T) {
	g := Genesis(shardtx.Shard(0))
	if g.ID != 0 || g.Height != 0 || g.ParentID != 0 {
		t.Errorf("Genesis() = %+v; want id=0 height=0 parent=0", g)
	}
}

func TestInvolvedShardsDedups(t *testing.T) {
	tx1 := shardtx.New(1, []shardtx.Shard{0, 1}, 5)
	tx2 := shardtx.New(2, []shardtx.Shard{1, 2}, 5)
	b := &Block{PrepareTxs: []*shardtx.Transaction{tx1}, PrecommitTxs: []*shardtx.Transaction{tx2}}

	got := b.InvolvedShards()
	seen := make(map[shardtx.Shard]bool)
	for _, s := range got {
		if seen[s] {
			t.Fatalf("InvolvedShards() contains duplicate shard %d", s)
		}
		seen[s] = true
	}
	for _, want := range []shardtx.Shard{0, 1, 2} {
		if !seen[want] {
			t.Errorf("InvolvedShards() missing shard %d, got %v", want, got)
		}
	}
}

func TestGraphInsertAndGet(t *testing.T) {
	g := NewGraph(shardtx.Shard(0))
	if !g.Has(0) {
		t.Fatalf("new graph missing genesis")
	}
	b := &Block{ID: 1, ParentID: 0, Height: 1}
	g.Insert(b)
	got, ok := g.Get(1)
	if !ok || got.ID != 1 {
		t.Errorf("Get(1) = %v, %v; want block 1, true", got, ok)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d; want 2", g.Len())
	}
}
