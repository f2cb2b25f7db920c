// Package resample implements Resampler and Replayer, the two
// higher-timeframe bar aggregation modes of spec §4.3: both wrap a
// series.Source and fold lower-timeframe bars into a coarser
// (timeframe, compression) partial bar.
package resample

import (
	"time"

	"github.com/nullstrategy/backlab/internal/series"
)

// BoundaryFunc reports whether cur belongs to a new period relative to
// prev, per the bucketing rules of spec §4.3. A bar exactly on a
// boundary belongs to the new period (tie-break rule).
type BoundaryFunc func(prev, cur time.Time) bool

// NewBoundary builds the boundary function for a (timeframe,
// compression) pair.
func NewBoundary(tf series.TimeFrame, compression int) BoundaryFunc {
	if compression <= 0 {
		compression = 1
	}
	switch tf {
	case series.Seconds:
		return unitBoundary(time.Second, compression)
	case series.Minutes:
		return unitBoundary(time.Minute, compression)
	case series.Hours:
		return unitBoundary(time.Hour, compression)
	case series.Days:
		return dayBoundary
	case series.Weeks:
		return weekBoundary
	case series.Months:
		return monthBoundary
	case series.Years:
		return yearBoundary
	default:
		return dayBoundary
	}
}

// unitBoundary buckets by floor(unixSeconds / (unit*compression)).
func unitBoundary(unit time.Duration, compression int) BoundaryFunc {
	span := int64(unit.Seconds()) * int64(compression)
	if span <= 0 {
		span = 1
	}
	return func(prev, cur time.Time) bool {
		return prev.Unix()/span != cur.Unix()/span
	}
}

func dayBoundary(prev, cur time.Time) bool {
	py, pm, pd := prev.UTC().Date()
	cy, cm, cd := cur.UTC().Date()
	return py != cy || pm != cm || pd != cd
}

func weekBoundary(prev, cur time.Time) bool {
	py, pw := prev.UTC().ISOWeek()
	cy, cw := cur.UTC().ISOWeek()
	return py != cy || pw != cw
}

func monthBoundary(prev, cur time.Time) bool {
	py, pm, _ := prev.UTC().Date()
	cy, cm, _ := cur.UTC().Date()
	return py != cy || pm != cm
}

func yearBoundary(prev, cur time.Time) bool {
	return prev.UTC().Year() != cur.UTC().Year()
}
