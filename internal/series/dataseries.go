package series

import (
	"fmt"

	"github.com/nullstrategy/backlab/internal/errs"
	"github.com/nullstrategy/backlab/internal/line"
	"github.com/nullstrategy/backlab/internal/lines"
)

// Line aliases for the fixed DataSeries schema, in declaration order.
const (
	LineDatetime     = "datetime"
	LineOpen         = "open"
	LineHigh         = "high"
	LineLow          = "low"
	LineClose        = "close"
	LineVolume       = "volume"
	LineOpenInterest = "openinterest"
)

var schema = []string{LineDatetime, LineOpen, LineHigh, LineLow, LineClose, LineVolume, LineOpenInterest}

// Meta carries a DataSeries' descriptive, non-line state.
type Meta struct {
	Name         string
	TimeFrame    TimeFrame
	Compression  int
	SessionStart string // "HH:MM", empty = unset
	SessionEnd   string
}

// DataSeries is a Lines collection with the fixed OHLCV+datetime+OI
// schema of spec §3, backed by a pluggable Source.
type DataSeries struct {
	ls   *lines.Lines
	Meta Meta

	source  Source
	lastDT  float64
	hasLast bool
	live    bool
	minp    int
}

// New creates a DataSeries reading from src.
func New(src Source, meta Meta) *DataSeries {
	if meta.Compression <= 0 {
		meta.Compression = 1
	}
	return &DataSeries{
		ls:     lines.New(schema...),
		Meta:   meta,
		source: src,
		minp:   1,
	}
}

// LineSet implements indicator.Input: it exposes the underlying Lines
// collection so indicators can read from (and topologically depend
// on) a raw data feed the same way they depend on another indicator.
func (d *DataSeries) LineSet() *lines.Lines { return d.ls }

// Line returns the buffer registered under alias, or nil if absent.
func (d *DataSeries) Line(alias string) *line.Buffer { return d.ls.Line(alias) }

// Home resets every line's cursor to its first retained index.
func (d *DataSeries) Home() { d.ls.Home() }

// Forward advances every line's cursor by n.
func (d *DataSeries) Forward(n int) { d.ls.Forward(n) }

// MinPeriod returns the minimum bars this data itself needs before it
// is considered "warm" — always 1 for a raw feed (it has no lookback).
func (d *DataSeries) MinPeriod() int { return d.minp }

// IsLive reports whether this data feed should be treated as live,
// which the engine uses to force the streaming execution path and
// disable preload (spec §6 `live`).
func (d *DataSeries) IsLive() bool { return d.live }

// SetLive marks the feed as live.
func (d *DataSeries) SetLive(v bool) { d.live = v }

// Start opens the underlying source.
func (d *DataSeries) Start() error {
	d.hasLast = false
	if err := d.source.Start(); err != nil {
		return fmt.Errorf("series: start %q: %w", d.Meta.Name, err)
	}
	return nil
}

// Stop releases the underlying source.
func (d *DataSeries) Stop() error {
	if err := d.source.Stop(); err != nil {
		return fmt.Errorf("series: stop %q: %w", d.Meta.Name, err)
	}
	return nil
}

// Next loads the next bar from the source. A sealed bar is appended as
// a new row; an unsealed bar (Replayer's update-in-place ticks, spec
// §4.3) overwrites the most recently appended row. Returns false on
// clean exhaustion.
func (d *DataSeries) Next() (bool, error) {
	bar, sealed, ok, err := d.source.NextBar()
	if err != nil {
		return false, fmt.Errorf("series: next %q: %w", d.Meta.Name, err)
	}
	if !ok {
		return false, nil
	}
	if err := d.validateOrder(bar); err != nil {
		return false, err
	}
	if sealed || d.ls.At(0).Size() == 0 {
		d.append(bar)
	} else {
		d.overwrite(bar)
	}
	return true, nil
}

// Preload loads every bar up front, then homes the cursor to 0 for the
// vectorized execution path.
func (d *DataSeries) Preload() error {
	for {
		ok, err := d.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	d.ls.Home()
	return nil
}

func (d *DataSeries) append(bar Bar) {
	num := ToNum(bar.Datetime)
	d.lastDT = num
	d.hasLast = true
	d.ls.AppendAll(num, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.OpenInterest)
}

func (d *DataSeries) overwrite(bar Bar) {
	num := ToNum(bar.Datetime)
	d.lastDT = num
	d.hasLast = true
	vals := []float64{num, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.OpenInterest}
	for i, v := range vals {
		d.ls.At(i).Set(0, v)
	}
}

func (d *DataSeries) validateOrder(bar Bar) error {
	if !d.hasLast {
		return nil
	}
	if ToNum(bar.Datetime) < d.lastDT {
		return fmt.Errorf("series %q: %w: bar datetime %s before last accepted datetime",
			d.Meta.Name, errs.ErrDataOrdering, bar.Datetime)
	}
	return nil
}

// Datetime returns the numeric datetime value ago bars relative to the
// cursor (see series.ToTime to decode it back to a time.Time).
func (d *DataSeries) Datetime(ago int) float64 { return d.Line(LineDatetime).Get(ago) }

func (d *DataSeries) Open(ago int) float64  { return d.Line(LineOpen).Get(ago) }
func (d *DataSeries) High(ago int) float64  { return d.Line(LineHigh).Get(ago) }
func (d *DataSeries) Low(ago int) float64   { return d.Line(LineLow).Get(ago) }
func (d *DataSeries) Close(ago int) float64 { return d.Line(LineClose).Get(ago) }
func (d *DataSeries) Volume(ago int) float64 { return d.Line(LineVolume).Get(ago) }
func (d *DataSeries) OpenInterest(ago int) float64 { return d.Line(LineOpenInterest).Get(ago) }
