package replay

import (
	"github.com/yanun0323/errors"

	"volgrader/internal/answer"
	"volgrader/pkg/exception"
)

// Entry is one encoded message of the replay.
// RowIndex is the recording row the message was built from, -1 for the header.
type Entry struct {
	NeedResponse bool
	Payload      []byte
	RowIndex     int
}

// Plan is the ordered message sequence shared read-only by every session.
type Plan struct {
	Entries    []Entry
	OrderBooks int
	Responses  int
}

// Len returns the number of entries.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// Verify checks that response-required entries correspond one to one, in order,
// with the ground truth points.
func (p *Plan) Verify(truth answer.GroundTruth) error {
	if p.Responses != len(truth) {
		return errors.Wrapf(exception.ErrPlanMismatch, "%d predict-now messages, %d ground truth points", p.Responses, len(truth))
	}
	i := 0
	for idx, e := range p.Entries {
		if !e.NeedResponse {
			continue
		}
		if e.RowIndex != truth[i].RowIndex {
			return errors.Wrapf(exception.ErrPlanMismatch, "entry %d follows row %d, ground truth %d is row %d", idx, e.RowIndex, i, truth[i].RowIndex)
		}
		i++
	}
	return nil
}
