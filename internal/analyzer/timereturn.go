package analyzer

import (
	"fmt"
	"time"

	"github.com/nullstrategy/backlab/internal/series"
)

// TimeReturn computes per-calendar-year portfolio returns, the
// analyzer scenario S6 is built around. A bucket's return is
// (endValue-startValue)/startValue; a bucket whose value never moved
// still gets its zero entry recorded rather than being left out of the
// result, so a caller can plot a continuous return series with no
// gaps.
type TimeReturn struct {
	*Base
	tf *TimeFrameAnalyzer

	returns map[string]float64

	haveBucket  bool
	bucketStart float64
	bucketDT    time.Time
	curValue    float64 // latest value, set by NotifyCashValue ahead of Next
	prevValue   float64 // curValue as of the previous bar's Next call
}

// NewTimeReturn builds a TimeReturn bucketing by the given timeframe
// (series.Years, compression 1 is the common case). Results are keyed
// by calendar year only, so with a timeframe shorter than a year each
// bucket overwrites the earlier buckets of the same year.
func NewTimeReturn(tf series.TimeFrame, compression int) *TimeReturn {
	return &TimeReturn{
		Base:    &Base{},
		tf:      NewTimeFrameAnalyzer(tf, compression),
		returns: make(map[string]float64),
	}
}

// NotifyCashValue implements Analyzer: tracks the latest portfolio
// value, sampled once per bar ahead of this analyzer's own Next.
func (t *TimeReturn) NotifyCashValue(_ float64, value float64) {
	t.curValue = value
}

// Next implements Analyzer. A bucket boundary is detected on the first
// bar of the new period, but that bar's value already belongs to the
// new bucket: the old bucket must close on prevValue, the value as of
// the prior bar, not curValue, which NotifyCashValue has already
// advanced to the boundary-crossing bar.
func (t *TimeReturn) Next() {
	if len(t.Env.Datas) == 0 {
		return
	}
	cur := series.ToTime(t.Env.Datas[0].Datetime(0))

	if !t.haveBucket {
		t.bucketStart = t.curValue
		t.bucketDT = cur
		t.haveBucket = true
		t.tf.Observe(cur)
		t.prevValue = t.curValue
		return
	}

	prevDT := t.bucketDT
	if t.tf.Observe(cur) {
		t.returns[bucketLabel(prevDT)] = t.bucketReturn(t.prevValue)
		t.bucketStart = t.curValue
	}
	t.bucketDT = cur
	t.prevValue = t.curValue
}

// Stop implements Analyzer: flushes the final, possibly partial bucket.
func (t *TimeReturn) Stop() {
	if !t.haveBucket {
		return
	}
	t.returns[bucketLabel(t.bucketDT)] = t.bucketReturn(t.curValue)
}

func (t *TimeReturn) bucketReturn(endValue float64) float64 {
	if t.bucketStart == 0 {
		return 0
	}
	return (endValue - t.bucketStart) / t.bucketStart
}

// GetAnalysis returns {"returns": map[string]float64} keyed by
// calendar year.
func (t *TimeReturn) GetAnalysis() map[string]any {
	out := make(map[string]float64, len(t.returns))
	for k, v := range t.returns {
		out[k] = v
	}
	return map[string]any{"returns": out}
}

func bucketLabel(t time.Time) string {
	return fmt.Sprintf("%d", t.Year())
}
