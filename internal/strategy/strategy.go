// Package strategy defines the trading-logic contract Cerebro drives
// bar by bar, and the order-submission API strategies use against an
// attached broker (spec §4.6/§9).
package strategy

import (
	"time"

	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/nullstrategy/backlab/internal/indicator"
	"github.com/nullstrategy/backlab/internal/series"
)

// Strategy is the capability-flattened shape spec §9 calls for: every
// hook Cerebro may call, with no optional/dynamic dispatch. Embedding
// Base satisfies all of them with no-ops, so a concrete strategy only
// overrides what it needs.
type Strategy interface {
	Datas() []indicator.Input
	MinPeriod() int
	Indicators() []indicator.LineIterator

	Init(env *Env)
	Start()
	PreNext()
	NextStart()
	Next()
	Stop()

	NotifyOrder(o *broker.Order)
	NotifyTrade(t *broker.Trade)
	NotifyCashValue(cash, value float64)
}

// Env is the handle a strategy gets at Init time: attached data feeds
// and the shared broker.
type Env struct {
	Datas  []*series.DataSeries
	Broker *broker.SimulatedBroker
}

// Data returns the i'th attached data feed, or nil if out of range.
func (e *Env) Data(i int) *series.DataSeries {
	if i < 0 || i >= len(e.Datas) {
		return nil
	}
	return e.Datas[i]
}

// Base embeds no-op implementations of every Strategy hook and the
// order API bound to the attached broker, per spec §4.6. Concrete
// strategies embed *Base and override PreNext/Next at minimum.
type Base struct {
	Env *Env

	datas []indicator.Input
	line  *indicator.Base
}

// NewBase wires Base against the strategy's data inputs. Strategies
// that add their own indicators pass them as extra children via
// AddIndicator so MinPeriod propagates correctly.
func NewBase(datas ...indicator.Input) *Base {
	return &Base{
		datas: datas,
		line:  indicator.NewBase(datas, 0),
	}
}

// AddIndicator registers a child indicator the strategy's MinPeriod
// must wait on.
func (b *Base) AddIndicator(child indicator.Input) {
	b.datas = append(b.datas, child)
	b.line = indicator.NewBase(b.datas, 0)
}

func (b *Base) Datas() []indicator.Input { return b.datas }
func (b *Base) MinPeriod() int           { return b.line.MinPeriod() }

// Indicators returns the subset of attached inputs that are themselves
// indicators, for Cerebro to build the dependency graph it sorts and
// drives ahead of this strategy.
func (b *Base) Indicators() []indicator.LineIterator {
	var out []indicator.LineIterator
	for _, d := range b.datas {
		if li, ok := d.(indicator.LineIterator); ok {
			out = append(out, li)
		}
	}
	return out
}

func (b *Base) Init(env *Env) { b.Env = env }
func (b *Base) Start()        {}
func (b *Base) PreNext()      {}

// NextStart is a no-op by default, same as indicator.Base: Go has no
// virtual dispatch from Base up to the embedding strategy, so a
// strategy whose boundary bar trades the same way as any later one
// must override NextStart itself and call its own Next.
func (b *Base) NextStart() {}
func (b *Base) Next()      {}
func (b *Base) Stop()      {}

func (b *Base) NotifyOrder(*broker.Order)           {}
func (b *Base) NotifyTrade(*broker.Trade)           {}
func (b *Base) NotifyCashValue(cash, value float64) {}

// Buy submits a market buy for size on the strategy's primary (first
// attached) data feed, at the current bar's datetime.
func (b *Base) Buy(size float64) *broker.Order {
	return b.order(broker.Buy, size, 0, 0, broker.Market, time.Time{})
}

// Sell submits a market sell, symmetric to Buy.
func (b *Base) Sell(size float64) *broker.Order {
	return b.order(broker.Sell, size, 0, 0, broker.Market, time.Time{})
}

// BuyLimit submits a limit buy at price.
func (b *Base) BuyLimit(size, price float64) *broker.Order {
	return b.order(broker.Buy, size, price, 0, broker.Limit, time.Time{})
}

// SellLimit submits a limit sell at price.
func (b *Base) SellLimit(size, price float64) *broker.Order {
	return b.order(broker.Sell, size, price, 0, broker.Limit, time.Time{})
}

// Close flattens the current position on the primary data feed.
func (b *Base) Close() *broker.Order {
	return b.Env.Broker.Close(b.dataName(), b.now())
}

// Cancel cancels o if it is still open.
func (b *Base) Cancel(o *broker.Order) bool {
	return b.Env.Broker.Cancel(o)
}

func (b *Base) order(side broker.Side, size, price, stopPrice float64, typ broker.Type, valid time.Time) *broker.Order {
	data, at := b.dataName(), b.now()
	if side == broker.Buy {
		return b.Env.Broker.Buy(data, size, price, stopPrice, typ, valid, at)
	}
	return b.Env.Broker.Sell(data, size, price, stopPrice, typ, valid, at)
}

func (b *Base) dataName() string {
	if len(b.Env.Datas) == 0 {
		return ""
	}
	return b.Env.Datas[0].Meta.Name
}

func (b *Base) now() time.Time {
	if len(b.Env.Datas) == 0 {
		return time.Time{}
	}
	return series.ToTime(b.Env.Datas[0].Datetime(0))
}
