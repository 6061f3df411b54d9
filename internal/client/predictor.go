package client

import (
	"volgrader/internal/answer"
	"volgrader/internal/codec"
)

// RollingStd predicts the sample std of the last Window mid-prices of Instrument.
// It is a naive baseline, good enough to exercise a grader end to end.
type RollingStd struct {
	Instrument string
	Window     int

	mids []float64
}

// NewRollingStd creates a predictor for instrument.
func NewRollingStd(instrument string, window int) *RollingStd {
	if window < 2 {
		window = 2
	}
	return &RollingStd{Instrument: instrument, Window: window}
}

func (r *RollingStd) Header([]string) {}

// Observe keeps the mid-price of the best level. Fields are bid price, bid
// volume, ask price, ask volume for each level.
func (r *RollingStd) Observe(book codec.OrderBook) {
	if book.Instrument != r.Instrument || len(book.Fields) < 4 {
		return
	}
	mid := (book.Fields[0] + book.Fields[2]) / 2
	r.mids = append(r.mids, mid)
	if len(r.mids) > r.Window {
		r.mids = r.mids[len(r.mids)-r.Window:]
	}
}

func (r *RollingStd) Predict() float64 {
	if len(r.mids) < 2 {
		return 0
	}
	return answer.SampleStd(r.mids)
}
