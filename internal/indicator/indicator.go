// Package indicator implements LineIterator, the per-bar transform
// contract every indicator obeys: minperiod propagation, the
// prenext/nextstart/next warm-up life cycle, and the once(start,end)
// vectorized fast path (spec §4.4).
package indicator

import (
	"fmt"

	"github.com/nullstrategy/backlab/internal/errs"
	"github.com/nullstrategy/backlab/internal/lines"
)

// Input is anything a LineIterator can read from: a DataSeries or
// another indicator. Both expose MinPeriod and a Lines collection.
type Input interface {
	MinPeriod() int
	LineSet() *lines.Lines
}

// LineIterator is the base contract for every indicator. Exactly one
// of Next or Once is called per bar/range by the engine, never both in
// the same run.
type LineIterator interface {
	// Datas returns the indicator's upstream inputs.
	Datas() []Input
	// MinPeriod returns the first absolute bar index (1-based count of
	// bars seen) at which this indicator's output is defined.
	MinPeriod() int
	// Lines returns this indicator's own output lines.
	Lines() *lines.Lines

	// PreNext is called while the engine's 0-based bar index is below
	// MinPeriod-1 (warm-up): output stays NaN.
	PreNext()
	// NextStart is called exactly once, at 0-based bar index ==
	// MinPeriod-1.
	NextStart()
	// Next is called for every 0-based bar index > MinPeriod-1.
	Next()
	// Once computes the indicator in bulk over [start, end) for the
	// vectorized execution path. Must produce the same per-index
	// output as repeated Next calls would (spec invariant I3).
	Once(start, end int)
}

// Base implements the minperiod propagation rule of spec §4.4 and the
// default PreNext/NextStart no-ops, so a concrete indicator only needs
// to implement Next/Once (and optionally override PreNext/NextStart).
type Base struct {
	datas   []Input
	out     *lines.Lines
	period  int // the indicator's own declared window, 0 if none
	minp    int
	fixed   bool // true once minperiod was explicitly declared
}

// NewBase creates a Base over the given inputs, with own output
// aliases and an optional declared window period (0 = inherit only).
func NewBase(datas []Input, period int, outputAliases ...string) *Base {
	b := &Base{
		datas:  datas,
		out:    lines.New(outputAliases...),
		period: period,
	}
	b.Recompute()
	return b
}

// Datas implements LineIterator.
func (b *Base) Datas() []Input { return b.datas }

// Lines implements LineIterator.
func (b *Base) Lines() *lines.Lines { return b.out }

// LineSet implements indicator.Input, so one indicator's output can
// serve as another indicator's upstream dependency.
func (b *Base) LineSet() *lines.Lines { return b.out }

// MinPeriod implements LineIterator.
func (b *Base) MinPeriod() int { return b.minp }

// SetMinPeriod overrides the propagated minperiod explicitly. Once
// set, Recompute is a no-op (the explicit declaration wins per §4.4).
func (b *Base) SetMinPeriod(n int) {
	b.minp = n
	b.fixed = true
}

// Recompute re-derives minperiod from the current inputs: the
// indicator inherits max(child minperiod), then adds its own window
// (period-1) on top, unless a value was explicitly declared via
// SetMinPeriod. NewBase calls it once; nothing calls it again, so a
// caller that changes the inputs afterward must call it itself.
func (b *Base) Recompute() {
	if b.fixed {
		return
	}
	inherited := 1
	for _, d := range b.datas {
		if d.MinPeriod() > inherited {
			inherited = d.MinPeriod()
		}
	}
	if b.period > 0 {
		b.minp = inherited + b.period - 1
	} else {
		b.minp = inherited
	}
}

// PreNext is a no-op by default.
func (b *Base) PreNext() {}

// NextStart is a no-op by default. Go has no virtual dispatch from
// Base up to the embedding indicator, so an indicator whose boundary
// bar computes the same way as any later one (the common case) must
// override NextStart itself and call its own Next.
func (b *Base) NextStart() {}

// Sort topologically orders a set of LineIterator by dependency using
// Kahn's algorithm, so each indicator's children have already been
// computed by the time it runs. Returns errs.ErrConfiguration wrapped
// with detail if the dependency graph contains a cycle.
func Sort(nodes []LineIterator) ([]LineIterator, error) {
	index := make(map[LineIterator]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	indeg := make([]int, len(nodes))
	adj := make([][]int, len(nodes))
	for i, n := range nodes {
		for _, d := range n.Datas() {
			if parent, ok := d.(LineIterator); ok {
				if pi, ok := index[parent]; ok {
					adj[pi] = append(adj[pi], i)
					indeg[i]++
				}
			}
		}
	}

	queue := make([]int, 0, len(nodes))
	for i, deg := range indeg {
		if deg == 0 {
			queue = append(queue, i)
		}
	}

	out := make([]LineIterator, 0, len(nodes))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		out = append(out, nodes[i])
		for _, j := range adj[i] {
			indeg[j]--
			if indeg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(out) != len(nodes) {
		return nil, fmt.Errorf("indicator.Sort: %w: cyclic indicator dependency", errs.ErrConfiguration)
	}
	return out, nil
}
