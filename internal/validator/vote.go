package validator

import (
	"fmt"

	"github.com/stringhandler/dansim/internal/message"
	"github.com/stringhandler/dansim/internal/qcset"
)

// onReceiveVote implements spec §4.8. It returns whether processing this
// vote formed a new QC, driving the on_beat trigger evaluated in Tick.
func (v *Validator) onReceiveVote(m message.Vote, now uint64) (formedQC bool) {
	if m.BlockHeight < v.currentHeight {
		v.logger.Printf("%v", fmt.Errorf("%w: from %d, height %d < current height %d", ErrStaleVote, m.VoteBy, m.BlockHeight, v.currentHeight))
		return false
	}

	n := v.committee.Size(v.shard)
	_, crossed := v.votes.Add(m.BlockID, m.VoteBy, n)
	if !crossed {
		return false
	}

	qc := qcset.QC{
		ID:          v.qcIDs.Next(),
		BlockID:     m.BlockID,
		BlockHeight: m.BlockHeight,
		Votes:       v.votes.Voters(m.BlockID),
	}
	v.sink.OnQCCreated(qc.ID, now, qc.BlockID)

	justified := v.mustGet(qc.BlockID)
	v.applyQC(qc, justified, now)
	v.updateHighQC(qc)
	return true
}
