package indicator

import (
	"math"
	"testing"

	"github.com/nullstrategy/backlab/internal/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA_Streaming_WarmupThenAverages(t *testing.T) {
	src := line.New()
	input := newFakeInput(1)
	sma := NewSMA(input, src, 3)
	require.Equal(t, 3, sma.MinPeriod())

	values := []float64{10, 20, 30, 40, 50}
	for i, v := range values {
		src.Append(v)
		switch {
		case i+1 < sma.MinPeriod():
			sma.PreNext()
		case i+1 == sma.MinPeriod():
			sma.NextStart()
		default:
			sma.Next()
		}
	}

	out := sma.Lines().At(0)
	assert.True(t, math.IsNaN(out.Get(-4)))
	assert.True(t, math.IsNaN(out.Get(-3)))
	assert.InDelta(t, 20.0, out.Get(-2), 0.0001) // mean(10,20,30)
	assert.InDelta(t, 30.0, out.Get(-1), 0.0001) // mean(20,30,40)
	assert.InDelta(t, 40.0, out.Get(0), 0.0001)  // mean(30,40,50)
}

func TestSMA_Once_MatchesStreamingOutput(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	src := line.New()
	for _, v := range values {
		src.Append(v)
	}
	input := newFakeInput(1)
	sma := NewSMA(input, src, 3)
	sma.Lines().Prealloc(len(values))
	sma.Once(0, len(values))

	out := sma.Lines().At(0)
	assert.True(t, math.IsNaN(out.GetAbs(0)))
	assert.True(t, math.IsNaN(out.GetAbs(1)))
	assert.InDelta(t, 20.0, out.GetAbs(2), 0.0001)
	assert.InDelta(t, 30.0, out.GetAbs(3), 0.0001)
	assert.InDelta(t, 40.0, out.GetAbs(4), 0.0001)
}
