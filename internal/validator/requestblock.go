package validator

import "github.com/stringhandler/dansim/internal/message"

// onReceiveRequestBlock answers a RequestBlock with the block if this
// validator has it. A validator that doesn't have the block either (it
// can happen transiently) silently drops the request; the requester's
// RequestBlock remains outstanding and the original proposal stays
// snoozed, matching spec §4.12's "no true cancellation" ordering guarantee.
func (v *Validator) onReceiveRequestBlock(m message.RequestBlock, now uint64) []Outbound {
	block, ok := v.graph.Get(m.BlockID)
	if !ok {
		return nil
	}
	resp := message.RequestBlockResponse{ID: v.nextMessageID(), Block: block}
	v.sink.OnMessageSent(v.id, m.RequestBy, resp.ID, "RequestBlockResponse", now)
	return []Outbound{{To: m.RequestBy, Msg: resp}}
}

// onReceiveRequestBlockResponse ingests the missing ancestor and replays
// every proposal that had been snoozed waiting on it (spec §4.12).
func (v *Validator) onReceiveRequestBlockResponse(m message.RequestBlockResponse, now uint64) []Outbound {
	block := m.Block
	if !v.graph.Has(block.ID) {
		v.graph.Insert(block)
	}

	waiting := v.snoozed[block.ID]
	delete(v.snoozed, block.ID)

	var out []Outbound
	for _, entry := range waiting {
		out = append(out, v.onReceiveProposal(entry.proposal, now)...)
	}
	return out
}
