// Package answer derives the forward-looking realized volatility that graded
// predictions are compared against.
package answer

import (
	"math"

	"github.com/yanun0323/errors"

	"volgrader/internal/dataset"
	"volgrader/pkg/exception"
)

// Point is the correct answer for the response point at RowIndex.
type Point struct {
	RowIndex int
	Value    float64
}

// GroundTruth is ordered by RowIndex. It is read-only after Extract returns.
type GroundTruth []Point

// Values returns the answers in order.
func (g GroundTruth) Values() []float64 {
	values := make([]float64, len(g))
	for i, p := range g {
		values[i] = p.Value
	}
	return values
}

// Result is the truncated recording and its aligned ground truth.
type Result struct {
	Rows        []dataset.MarketRow
	GroundTruth GroundTruth
}

// Extract computes the volatility labels for target and cuts rows after the last labelled one.
//
// Rows before warmup are not eligible. For the K eligible target rows the label of
// the j-th one is the sample standard deviation of mid price over target rows
// j..j+horizon-1, so only the first K-horizon+1 rows receive a label.
func Extract(rows []dataset.MarketRow, target string, warmup, horizon int) (Result, error) {
	if horizon < 2 {
		return Result{}, errors.Wrapf(exception.ErrInvalidHorizon, "horizon %d, need at least 2", horizon)
	}
	if warmup < 0 {
		warmup = 0
	}

	var (
		eligible []int
		mids     []float64
	)
	for i := range rows {
		if rows[i].Index < warmup || rows[i].Instrument != target {
			continue
		}
		eligible = append(eligible, i)
		mids = append(mids, rows[i].MidPrice().InexactFloat64())
	}
	if len(eligible) == 0 {
		return Result{}, errors.Wrapf(exception.ErrInstrumentNotFound, "instrument %q after %d warm-up rows", target, warmup)
	}

	labels := forwardStd(mids, horizon)
	if len(labels) == 0 {
		// Not enough target rows for one window: keep only rows that cannot be response points.
		return Result{Rows: rows[:eligible[0]]}, nil
	}

	truth := make(GroundTruth, len(labels))
	for j, v := range labels {
		truth[j] = Point{RowIndex: rows[eligible[j]].Index, Value: v}
	}
	cutoff := eligible[len(labels)-1]

	return Result{Rows: rows[:cutoff+1], GroundTruth: truth}, nil
}

// forwardStd returns std(values[j:j+window]) for every j with a complete window.
func forwardStd(values []float64, window int) []float64 {
	if len(values) < window {
		return nil
	}
	out := make([]float64, len(values)-window+1)
	for j := range out {
		out[j] = SampleStd(values[j : j+window])
	}
	return out
}

// SampleStd is the standard deviation with an N-1 denominator.
func SampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}
