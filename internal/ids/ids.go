// Package ids provides monotonically increasing identifiers shared by
// transactions, blocks, QCs and messages.
package ids

import "sync/atomic"

// Provider hands out strictly increasing, 1-based ids. The zero value is
// ready to use; 0 is reserved as the genesis/sentinel id and is never
// returned by Next.
type Provider struct {
	next atomic.Uint64
}

// NewProvider returns a Provider whose first Next() call yields 1.
func NewProvider() *Provider {
	return &Provider{}
}

// Next returns the next unused id.
func (p *Provider) Next() uint64 {
	return p.next.Add(1)
}
