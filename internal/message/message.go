// Package message defines the wire vocabulary validators and the network
// simulator exchange: one struct per variant behind a sealed interface, the
// idiom the rest of the retrieval pack uses for typed inter-component
// messages rather than a tagged union.
package message

import (
	"github.com/stringhandler/dansim/internal/blockdag"
	"github.com/stringhandler/dansim/internal/qcset"
	"github.com/stringhandler/dansim/internal/shardtx"
)

// Message is implemented only by the variants in this package; the
// unexported method seals the set.
type Message interface {
	isMessage()
	// MessageID returns the id assigned at construction, used for sink
	// event publication (on_message_sent) and logging.
	MessageID() uint64
}

// Transaction carries an externally-produced transaction into a validator's
// inbox.
type Transaction struct {
	ID uint64
	Tx *shardtx.Transaction
}

func (Transaction) isMessage()          {}
func (m Transaction) MessageID() uint64 { return m.ID }

// BlockProposal is a leader broadcasting a new leaf.
type BlockProposal struct {
	ID    uint64
	Block *blockdag.Block
}

func (BlockProposal) isMessage()          {}
func (m BlockProposal) MessageID() uint64 { return m.ID }

// Vote is cast by a committee member for a proposal, addressed to the next
// leader.
type Vote struct {
	ID          uint64
	BlockID     uint64
	BlockHeight uint64
	VoteBy      uint64
}

func (Vote) isMessage()          {}
func (m Vote) MessageID() uint64 { return m.ID }

// NewView is a timeout vote to advance the view, addressed to the new
// leader.
type NewView struct {
	ID     uint64
	Height uint64
	HighQC qcset.QC
	From   uint64
}

func (NewView) isMessage()          {}
func (m NewView) MessageID() uint64 { return m.ID }

// RequestBlock asks the proposer for a missing justify ancestor.
type RequestBlock struct {
	ID        uint64
	BlockID   uint64
	RequestBy uint64
}

func (RequestBlock) isMessage()          {}
func (m RequestBlock) MessageID() uint64 { return m.ID }

// RequestBlockResponse answers a RequestBlock.
type RequestBlockResponse struct {
	ID    uint64
	Block *blockdag.Block
}

func (RequestBlockResponse) isMessage()          {}
func (m RequestBlockResponse) MessageID() uint64 { return m.ID }
