package analyzer

import (
	"time"

	"github.com/nullstrategy/backlab/internal/resample"
	"github.com/nullstrategy/backlab/internal/series"
)

// TimeFrameAnalyzer buckets the bars an analyzer observes into
// (TimeFrame, Compression) periods, reusing the resample package's
// boundary rule (spec §4.7). It has no hooks of its own — a concrete
// analyzer embeds it and calls Observe from its own Next, acting on
// the bucket-crossed flag it returns.
type TimeFrameAnalyzer struct {
	boundary resample.BoundaryFunc
	lastDT   time.Time
	have     bool
}

// NewTimeFrameAnalyzer builds a bucket detector for the given
// timeframe and compression.
func NewTimeFrameAnalyzer(tf series.TimeFrame, compression int) *TimeFrameAnalyzer {
	return &TimeFrameAnalyzer{boundary: resample.NewBoundary(tf, compression)}
}

// Observe feeds in the current bar's datetime and reports whether this
// call crossed a bucket boundary relative to the last one observed.
func (t *TimeFrameAnalyzer) Observe(cur time.Time) bool {
	crossed := t.have && t.boundary(t.lastDT, cur)
	t.lastDT = cur
	t.have = true
	return crossed
}
