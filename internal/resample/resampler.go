package resample

import (
	"fmt"

	"github.com/nullstrategy/backlab/internal/series"
)

// Resampler wraps a series.Source and emits exactly one output bar per
// completed (timeframe, compression) period, per spec §4.3. It
// implements series.Source itself, so a resampled series can in turn
// be resampled again (associativity law, spec §8).
type Resampler struct {
	source series.Source
	agg    *Aggregator
	done   bool
}

// NewResampler wraps src, aggregating into the given timeframe and
// compression.
func NewResampler(src series.Source, tf series.TimeFrame, compression int) *Resampler {
	return &Resampler{source: src, agg: NewAggregator(tf, compression)}
}

// AutoSkip configures the aggregator to silently drop out-of-order
// source bars instead of failing the run.
func (r *Resampler) AutoSkip(v bool) *Resampler {
	r.agg.AutoSkip = v
	return r
}

// Start implements series.Source.
func (r *Resampler) Start() error {
	r.done = false
	return r.source.Start()
}

// Stop implements series.Source.
func (r *Resampler) Stop() error { return r.source.Stop() }

// NextBar implements series.Source: pulls source bars until a period
// boundary completes one, or the source is exhausted (flushing the
// final partial exactly once).
func (r *Resampler) NextBar() (series.Bar, bool, bool, error) {
	if r.done {
		return series.Bar{}, false, false, nil
	}
	for {
		bar, sealed, ok, err := r.source.NextBar()
		if err != nil {
			return series.Bar{}, false, false, fmt.Errorf("resample.Resampler: %w", err)
		}
		if !ok {
			if out, had := r.agg.Flush(); had {
				r.done = true
				return out, true, true, nil
			}
			r.done = true
			return series.Bar{}, false, false, nil
		}
		if !sealed {
			// A replayed upstream source only hands us finished rows
			// to resample further; an update-in-place tick carries no
			// new information for a coarser aggregation.
			continue
		}
		completed, hasCompleted, _, _, err := r.agg.Add(bar)
		if err != nil {
			return series.Bar{}, false, false, fmt.Errorf("resample.Resampler: %w", err)
		}
		if hasCompleted {
			return completed, true, true, nil
		}
	}
}
