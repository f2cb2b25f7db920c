package series

import "time"

// Bar is one OHLCV+open-interest row of market activity.
type Bar struct {
	Datetime    time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	OpenInterest float64
}

// Source is the feed-to-engine contract of spec §4.2/§6: it must
// deliver bars in non-decreasing datetime order and must not repeat a
// datetime. Concrete feeds (CSV, database, HTTP, DataFrame adapters)
// are external collaborators per spec §1; internal/feed ships the one
// minimal implementation this repo needs to be testable end-to-end.
//
// sealed distinguishes a brand-new completed row (append) from an
// in-place update of the most recently delivered row (overwrite). A
// plain feed always reports sealed=true: every NextBar call is a new,
// finished bar. internal/resample's Replayer is the one source that
// reports sealed=false on intra-period ticks, per spec §4.3's
// update-in-place replay semantics.
type Source interface {
	// Start opens any resource the source needs.
	Start() error
	// NextBar attempts to read the next bar. ok is false on clean
	// exhaustion; err is non-nil on an I/O or ordering failure.
	NextBar() (bar Bar, sealed bool, ok bool, err error)
	// Stop releases any resource opened by Start.
	Stop() error
}
