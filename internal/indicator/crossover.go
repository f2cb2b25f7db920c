package indicator

import (
	"math"

	"github.com/nullstrategy/backlab/internal/line"
)

// CrossOver emits +1 the bar a rises above b, -1 the bar a falls below
// b, and 0 otherwise. It is the building block the SMA-crossover
// strategy in scenarios S1/S2 is built on.
type CrossOver struct {
	*Base
	a, b *line.Buffer
}

// NewCrossOver builds a CrossOver of two same-clock lines.
func NewCrossOver(input Input, a, b *line.Buffer) *CrossOver {
	c := &CrossOver{a: a, b: b}
	c.Base = NewBase([]Input{input}, 2, "cross") // needs one bar of lookback to detect a cross
	return c
}

// Next implements LineIterator.
func (c *CrossOver) Next() {
	c.Lines().At(0).Append(c.at(0))
}

// PreNext emits NaN during warm-up.
func (c *CrossOver) PreNext() {
	c.Lines().At(0).Append(math.NaN())
}

// NextStart computes the same way as Next: the boundary bar already
// has the one bar of lookback a cross needs.
func (c *CrossOver) NextStart() { c.Next() }

// Once implements LineIterator.
func (c *CrossOver) Once(start, end int) {
	out := c.Lines().At(0)
	for i := start; i < end; i++ {
		if i < c.MinPeriod()-1 {
			out.SetAbs(i, math.NaN())
			continue
		}
		out.SetAbs(i, c.atAbs(i))
	}
}

func (c *CrossOver) at(ago int) float64 {
	curA, curB := c.a.Get(ago), c.b.Get(ago)
	prevA, prevB := c.a.Get(ago-1), c.b.Get(ago-1)
	return sign(curA, curB, prevA, prevB)
}

func (c *CrossOver) atAbs(i int) float64 {
	curA, curB := c.a.GetAbs(i), c.b.GetAbs(i)
	prevA, prevB := c.a.GetAbs(i-1), c.b.GetAbs(i-1)
	return sign(curA, curB, prevA, prevB)
}

func sign(curA, curB, prevA, prevB float64) float64 {
	if math.IsNaN(curA) || math.IsNaN(curB) || math.IsNaN(prevA) || math.IsNaN(prevB) {
		return 0
	}
	wasBelow := prevA < prevB
	isAbove := curA > curB
	wasAbove := prevA > prevB
	isBelow := curA < curB
	switch {
	case wasBelow && isAbove:
		return 1
	case wasAbove && isBelow:
		return -1
	default:
		return 0
	}
}
