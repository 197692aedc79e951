package validator

import "github.com/stringhandler/dansim/internal/message"

// onNextSyncView implements spec §4.9: the timeout-driven view change.
func (v *Validator) onNextSyncView(now uint64) []Outbound {
	if v.currentLeader != 0 {
		v.sink.OnLeaderFailure(v.id)
	}

	v.currentLeader = v.committee.NextLeader(v.shard, v.currentLeader)
	v.currentHeight++

	msg := message.NewView{ID: v.nextMessageID(), Height: v.currentHeight, HighQC: v.highQC, From: v.id}
	v.sink.OnMessageSent(v.id, v.currentLeader, msg.ID, "NewView", now)
	return []Outbound{{To: v.currentLeader, Msg: msg}}
}

// onReceiveNewView implements the new-leader side of spec §4.9: ingest the
// sender's high_qc and, once enough NewView votes for a height have
// arrived, set the can-propose flag consumed by the next Tick.
func (v *Validator) onReceiveNewView(m message.NewView, now uint64) {
	v.updateHighQC(m.HighQC)

	if m.Height < v.currentHeight {
		return
	}
	n := v.committee.Size(v.shard)
	_, crossed := v.newViewVotes.Add(m.Height, m.From, n)
	if crossed {
		v.canPropose = true
	}
}
