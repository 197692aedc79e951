package blockdag

import "github.com/stringhandler/dansim/internal/shardtx"

// Graph is a single validator's view of the block graph: the genesis block
// at id 0 plus every block received since. It is not safe for concurrent
// use; each Validator owns its own Graph and the driver serializes access.
type Graph struct {
	blocks map[uint64]*Block
}

// NewGraph returns a Graph seeded with the genesis block for shard.
func NewGraph(shard shardtx.Shard) *Graph {
	g := &Graph{blocks: make(map[uint64]*Block)}
	g.Insert(Genesis(shard))
	return g
}

// Insert adds b to the graph, replacing any block already stored under b.ID
// (callers check Has first when duplicate-proposal detection matters).
func (g *Graph) Insert(b *Block) {
	g.blocks[b.ID] = b
}

// Get returns the block for id, if present.
func (g *Graph) Get(id uint64) (*Block, bool) {
	b, ok := g.blocks[id]
	return b, ok
}

// Has reports whether id is already present in the graph.
func (g *Graph) Has(id uint64) bool {
	_, ok := g.blocks[id]
	return ok
}

// Len returns the number of blocks stored, genesis included.
func (g *Graph) Len() int {
	return len(g.blocks)
}
