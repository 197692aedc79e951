package validator

import "errors"

// Sentinel errors for the recoverable conditions spec §7 enumerates. None
// of these are panics: each is logged at the point of detection and the
// handler that detected it degrades gracefully (snoozing a message,
// discarding a vote, dropping a misrouted transaction) rather than
// propagating failure up through Tick.
var (
	ErrJustifyMissing = errors.New("validator: proposal references a justify block not yet in the graph")
	ErrStaleVote      = errors.New("validator: vote height below current height")
	ErrWrongShard     = errors.New("validator: transaction injected to a shard it does not involve")
)
