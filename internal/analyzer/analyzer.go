// Package analyzer implements the post-hoc statistics collectors of
// spec §4.7: a hook-mirroring interface driven by Cerebro the same way
// a strategy is, plus a timeframe-bucketing helper concrete analyzers
// compose into their own Next.
package analyzer

import (
	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/nullstrategy/backlab/internal/series"
)

// Env is the handle an analyzer gets at Init time: the data feeds the
// owning strategy is attached to.
type Env struct {
	Datas []*series.DataSeries
}

// Analyzer mirrors Strategy's lifecycle hooks (spec §4.8), plus a
// terminal accessor for whatever statistics it collected. Cerebro calls
// Next on every bar, warm-up included; it does not call PreNext or
// NextStart on an analyzer.
type Analyzer interface {
	Init(env *Env)
	Start()
	PreNext()
	NextStart()
	Next()
	Stop()

	NotifyOrder(o *broker.Order)
	NotifyTrade(t *broker.Trade)
	NotifyCashValue(cash, value float64)

	GetAnalysis() map[string]any
}

// Base implements every Analyzer hook as a no-op. Concrete analyzers
// embed *Base and override only what they observe.
type Base struct {
	Env *Env
}

func (b *Base) Init(env *Env) { b.Env = env }
func (b *Base) Start()        {}
func (b *Base) PreNext()      {}
func (b *Base) NextStart()    {}
func (b *Base) Next()         {}
func (b *Base) Stop()         {}

func (b *Base) NotifyOrder(*broker.Order)           {}
func (b *Base) NotifyTrade(*broker.Trade)           {}
func (b *Base) NotifyCashValue(cash, value float64) {}

func (b *Base) GetAnalysis() map[string]any { return map[string]any{} }
