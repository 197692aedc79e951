package txgen

import "github.com/stringhandler/dansim/internal/shardtx"

// Fixed emits a predetermined slice of transactions, one per Next call, in
// order. It implements Generator and is what the boundary-scenario tests in
// §8 substitute in place of Default.
type Fixed struct {
	Txs []*shardtx.Transaction
	idx int
}

// NewFixed returns a Fixed generator over txs.
func NewFixed(txs ...*shardtx.Transaction) *Fixed {
	return &Fixed{Txs: txs}
}

// Next implements Generator.
func (f *Fixed) Next() (*shardtx.Transaction, bool) {
	if f.idx >= len(f.Txs) {
		return nil, false
	}
	tx := f.Txs[f.idx]
	f.idx++
	return tx, true
}
