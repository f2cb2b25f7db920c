package resample

import (
	"fmt"
	"math"

	"github.com/nullstrategy/backlab/internal/errs"
	"github.com/nullstrategy/backlab/internal/series"
)

// Aggregator folds source bars into a partial bar and reports when a
// period boundary is crossed, per the per-field folding rule of spec
// §4.3: datetime/close = last source value, open = first, high/low =
// running max/min, volume = running sum, openinterest = last.
type Aggregator struct {
	Boundary BoundaryFunc
	AutoSkip bool

	partial    series.Bar
	hasPartial bool
	lastAt     float64 // last accepted datetime, as series.ToNum
	hasLast    bool
}

// NewAggregator builds an Aggregator for the given (timeframe,
// compression) bucket rule.
func NewAggregator(tf series.TimeFrame, compression int) *Aggregator {
	return &Aggregator{Boundary: NewBoundary(tf, compression)}
}

// Add feeds one source bar in.
//
//   - sealed reports whether this call began a brand-new partial (the
//     very first bar ever, or a boundary crossing) — Replayer uses this
//     to decide append vs. update-in-place.
//   - hasCompleted reports whether a previously accumulating partial
//     was just sealed by this tick, in which case completed holds it —
//     Resampler uses this to decide when to emit a row.
//   - current is always the up-to-date partial after folding this tick.
func (a *Aggregator) Add(bar series.Bar) (completed series.Bar, hasCompleted bool, sealed bool, current series.Bar, err error) {
	num := series.ToNum(bar.Datetime)
	if a.hasLast && num < a.lastAt {
		if a.AutoSkip {
			return series.Bar{}, false, false, a.partial, nil
		}
		return series.Bar{}, false, false, series.Bar{}, fmt.Errorf(
			"resample: %w: bar datetime %s before last accepted datetime", errs.ErrDataOrdering, bar.Datetime)
	}
	a.lastAt = num
	a.hasLast = true

	if !a.hasPartial {
		a.partial = bar
		a.hasPartial = true
		return series.Bar{}, false, true, a.partial, nil
	}

	if a.Boundary(a.partial.Datetime, bar.Datetime) {
		completed = a.partial
		a.partial = bar
		return completed, true, true, a.partial, nil
	}

	a.partial.High = math.Max(a.partial.High, bar.High)
	a.partial.Low = math.Min(a.partial.Low, bar.Low)
	a.partial.Close = bar.Close
	a.partial.Volume += bar.Volume
	a.partial.OpenInterest = bar.OpenInterest
	a.partial.Datetime = bar.Datetime
	return series.Bar{}, false, false, a.partial, nil
}

// Flush returns the current partial (if any) as a completed bar, for
// use once the underlying source is exhausted.
func (a *Aggregator) Flush() (series.Bar, bool) {
	if !a.hasPartial {
		return series.Bar{}, false
	}
	out := a.partial
	a.hasPartial = false
	return out, true
}
