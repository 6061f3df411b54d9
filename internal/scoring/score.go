package scoring

import (
	"fmt"
	"math"
)

const (
	// Tolerance is the answer count mismatch at which a run is disqualified.
	Tolerance = 10
	// Scale is the numerator of the score.
	Scale = 10.0
)

// Result is the outcome of Score. Reason is set whenever the score is forced to zero.
type Result struct {
	Score    float64
	RMSE     float64
	Compared int
	Reason   string
}

// Score compares answers with truth pairwise in order and returns Scale / RMSE.
//
// A count mismatch of Tolerance or more scores zero. Otherwise both sequences are
// cut to the shorter length. An RMSE of exactly zero also scores zero.
func Score(answers, truth []float64) Result {
	n, m := len(answers), len(truth)
	if abs(n-m) >= Tolerance {
		return Result{Reason: fmt.Sprintf("Incorrect number of user answers %d (expected: %d). Score=0", n, m)}
	}

	k := min(n, m)
	if k == 0 {
		return Result{Reason: "No answers to compare. Score=0"}
	}

	rmse := RMSE(answers[:k], truth[:k])
	if rmse == 0 {
		return Result{Compared: k, Reason: "Degenerate perfect match, RMSE is zero. Score=0"}
	}
	if math.IsNaN(rmse) {
		return Result{Compared: k, RMSE: rmse, Reason: "RMSE is not a number. Score=0"}
	}
	return Result{Score: Scale / rmse, RMSE: rmse, Compared: k}
}

// RMSE returns the root mean squared error of two equally long sequences.
func RMSE(predicted, actual []float64) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return math.NaN()
	}
	var sum float64
	for i := range predicted {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
