package mempool

// Mempools bundles the five positions a transaction moves through, per
// validator: accepted-but-unprepared (new_tx), partially-prepared,
// fully-prepared, partially-precommitted, fully-precommitted.
type Mempools struct {
	NewTx               *PriorityQueue
	WaitingPrepared     *WaitingSet
	ReadyPrepared       *PriorityQueue
	WaitingPrecommitted *WaitingSet
	ReadyPrecommitted   *PriorityQueue
}

// New returns an empty set of mempools.
func New() *Mempools {
	return &Mempools{
		NewTx:               NewPriorityQueue(),
		WaitingPrepared:     NewWaitingSet(),
		ReadyPrepared:       NewPriorityQueue(),
		WaitingPrecommitted: NewWaitingSet(),
		ReadyPrecommitted:   NewPriorityQueue(),
	}
}
