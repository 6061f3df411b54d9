package client

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"volgrader/internal/codec"
)

func TestRollingStdKeepsWindowOfTarget(t *testing.T) {
	p := NewRollingStd("TEA", 2)
	assert.Zero(t, p.Predict())

	p.Observe(codec.OrderBook{Instrument: "TEA", Fields: []float64{99.5, 1, 100.5, 1}})
	p.Observe(codec.OrderBook{Instrument: "COFFEE", Fields: []float64{1, 1, 1000, 1}})
	assert.Zero(t, p.Predict())

	p.Observe(codec.OrderBook{Instrument: "TEA", Fields: []float64{100.5, 1, 101.5, 1}})
	assert.InDelta(t, math.Sqrt(0.5), p.Predict(), 1e-12)

	p.Observe(codec.OrderBook{Instrument: "TEA", Fields: []float64{100.5, 1, 101.5, 1}})
	assert.Zero(t, p.Predict())
}
