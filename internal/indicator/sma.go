package indicator

import (
	"math"

	"github.com/nullstrategy/backlab/internal/line"
)

// SMA is the simple moving average over Period samples of an upstream
// line. It ships as a conformance fixture for LineIterator (the spec
// treats the indicator library itself as out of scope) and is the
// indicator scenarios S1/S2/S4/S5 are built around.
type SMA struct {
	*Base
	Period int
	src    *line.Buffer
}

// NewSMA builds an SMA reading src (e.g. a DataSeries' close line, or
// another indicator's single output line) over the given window.
func NewSMA(input Input, src *line.Buffer, period int) *SMA {
	s := &SMA{Period: period, src: src}
	s.Base = NewBase([]Input{input}, period, "sma")
	return s
}

// Next implements LineIterator: streaming, one bar at a time.
func (s *SMA) Next() {
	s.Lines().At(0).Append(s.average(0))
}

// PreNext emits NaN during warm-up, matching spec invariant I2.
func (s *SMA) PreNext() {
	s.Lines().At(0).Append(math.NaN())
}

// NextStart computes the same way as Next: the boundary bar has a full
// window available.
func (s *SMA) NextStart() { s.Next() }

// Once implements LineIterator: the vectorized fast path over absolute
// indices into a preloaded source/output buffer. It produces the same
// per-index output as repeated Next calls (invariant I3).
func (s *SMA) Once(start, end int) {
	out := s.Lines().At(0)
	for i := start; i < end; i++ {
		if i < s.MinPeriod()-1 {
			out.SetAbs(i, math.NaN())
			continue
		}
		out.SetAbs(i, s.averageAt(i))
	}
}

// average computes the window mean anchored ago bars from the source
// cursor, for the streaming path.
func (s *SMA) average(ago int) float64 {
	sum := 0.0
	for i := 0; i < s.Period; i++ {
		sum += s.src.Get(ago - i)
	}
	return sum / float64(s.Period)
}

// averageAt computes the window mean anchored at absolute source index
// i, for the vectorized path over a preloaded buffer.
func (s *SMA) averageAt(i int) float64 {
	sum := 0.0
	for k := 0; k < s.Period; k++ {
		sum += s.src.GetAbs(i - k)
	}
	return sum / float64(s.Period)
}
