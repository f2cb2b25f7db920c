package indicator

import (
	"math"
	"testing"

	"github.com/nullstrategy/backlab/internal/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossOver_DetectsUpAndDownCrosses(t *testing.T) {
	a := line.New()
	b := line.New()
	input := newFakeInput(1)
	cross := NewCrossOver(input, a, b)
	require.Equal(t, 2, cross.MinPeriod())

	// a: 9, 11, 9   b: constant 10 -> crosses up at bar 2, down at bar 3
	aVals := []float64{9, 11, 9}
	bVals := []float64{10, 10, 10}

	for i := range aVals {
		a.Append(aVals[i])
		b.Append(bVals[i])
		switch {
		case i+1 < cross.MinPeriod():
			cross.PreNext()
		case i+1 == cross.MinPeriod():
			cross.NextStart()
		default:
			cross.Next()
		}
	}

	out := cross.Lines().At(0)
	assert.True(t, math.IsNaN(out.Get(-2)))
	assert.Equal(t, 1.0, out.Get(-1))
	assert.Equal(t, -1.0, out.Get(0))
}

func TestCrossOver_NoCrossStaysZero(t *testing.T) {
	a := line.New()
	b := line.New()
	input := newFakeInput(1)
	cross := NewCrossOver(input, a, b)

	aVals := []float64{5, 6, 7}
	bVals := []float64{10, 10, 10}
	for i := range aVals {
		a.Append(aVals[i])
		b.Append(bVals[i])
		if i+1 < cross.MinPeriod() {
			cross.PreNext()
		} else {
			cross.Next()
		}
	}
	assert.Equal(t, 0.0, cross.Lines().At(0).Get(0))
}
