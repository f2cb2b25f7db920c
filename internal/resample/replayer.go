package resample

import (
	"fmt"

	"github.com/nullstrategy/backlab/internal/series"
)

// Replayer wraps a series.Source and updates the current higher-
// timeframe bar in place on every source tick, sealing it (starting a
// fresh output bar) when a period boundary is crossed, per spec §4.3.
// Downstream consumers see the same output bar repeatedly; a strategy
// that only cares about completed bars gates on the Sealed flag it
// gets via NextBar's sealed return.
type Replayer struct {
	source series.Source
	agg    *Aggregator
}

// NewReplayer wraps src, aggregating into the given timeframe and
// compression.
func NewReplayer(src series.Source, tf series.TimeFrame, compression int) *Replayer {
	return &Replayer{source: src, agg: NewAggregator(tf, compression)}
}

// AutoSkip configures the aggregator to silently drop out-of-order
// source bars instead of failing the run.
func (r *Replayer) AutoSkip(v bool) *Replayer {
	r.agg.AutoSkip = v
	return r
}

// Start implements series.Source.
func (r *Replayer) Start() error { return r.source.Start() }

// Stop implements series.Source.
func (r *Replayer) Stop() error { return r.source.Stop() }

// NextBar implements series.Source: every underlying sealed source
// tick produces one replay tick. sealed is true exactly when this tick
// starts a fresh output bar (the first tick ever, or a boundary
// crossing); DataSeries uses sealed to decide append vs. overwrite.
func (r *Replayer) NextBar() (series.Bar, bool, bool, error) {
	bar, srcSealed, ok, err := r.source.NextBar()
	if err != nil {
		return series.Bar{}, false, false, fmt.Errorf("resample.Replayer: %w", err)
	}
	if !ok {
		return series.Bar{}, false, false, nil
	}
	if !srcSealed {
		// Replaying a replay: only finished upstream rows feed the
		// coarser aggregation; forward the upstream's own in-place
		// update untouched.
		return bar, false, true, nil
	}
	_, _, sealed, current, err := r.agg.Add(bar)
	if err != nil {
		return series.Bar{}, false, false, fmt.Errorf("resample.Replayer: %w", err)
	}
	return current, sealed, true, nil
}
