package broker

import (
	"log/slog"
	"math"
	"time"

	"github.com/nullstrategy/backlab/internal/series"
)

// BarSet hands the broker the current bar for every data feed it must
// match orders against, keyed by feed name.
type BarSet map[string]series.Bar

// EventKind distinguishes the two notification streams Cerebro drains
// into a strategy's notify_order/notify_trade hooks (spec §4.5).
type EventKind int

const (
	OrderEvent EventKind = iota
	TradeEvent
)

// Notification is one broker event: either an order status change or
// a trade open/update/close, never both.
type Notification struct {
	Kind  EventKind
	Order *Order
	Trade *Trade
}

// SimulatedBroker implements the per-bar order matching, margin,
// commission, position, and trade bookkeeping of spec §4.5. It is not
// safe for concurrent use; OptRun gives every parameter tuple its own
// instance.
type SimulatedBroker struct {
	Mode        MarginMode
	Commission  CommissionScheme
	Margin      float64 // per-contract constant, FuturesMode only
	Multiplier  float64 // futures contract multiplier; 1.0 for stocks
	CheatOnOpen bool

	cash         float64
	positions    map[string]*Position
	openTrades   map[string]*Trade
	tradeHistory []*Trade
	openOrders   []*Order
	orderHistory []*Order
}

// NewSimulatedBroker creates a stock-mode, commission-free broker with
// the given starting cash. Use the exported fields or the mode setters
// to configure futures margin, commission, and cheat-on-open.
func NewSimulatedBroker(cash float64) *SimulatedBroker {
	return &SimulatedBroker{
		Mode:       StockMode,
		Commission: NoCommission{},
		Multiplier: 1.0,
		cash:       cash,
		positions:  make(map[string]*Position),
		openTrades: make(map[string]*Trade),
	}
}

// SetFuturesMode switches the broker to per-contract margin accounting
// with the given constant margin and price multiplier (spec §4.5b).
func (b *SimulatedBroker) SetFuturesMode(margin, multiplier float64) {
	b.Mode = FuturesMode
	b.Margin = margin
	b.Multiplier = multiplier
}

// Cash returns the current cash balance.
func (b *SimulatedBroker) Cash() float64 { return b.cash }

// TradeHistory returns every trade that has fully closed, in closing
// order.
func (b *SimulatedBroker) TradeHistory() []*Trade { return b.tradeHistory }

// OrderHistory returns every order that left the open queue (filled,
// canceled, margin-rejected, or expired), in that order.
func (b *SimulatedBroker) OrderHistory() []*Order { return b.orderHistory }

// Position returns the current position for data, the zero Position
// (flat) if none exists.
func (b *SimulatedBroker) Position(data string) Position {
	if p, ok := b.positions[data]; ok {
		return *p
	}
	return Position{Data: data}
}

// Value marks every open position against marks (feed name -> mark
// price, typically last close) and returns cash plus their valuation,
// per spec §4.5's stock/futures portfolio valuation rule.
func (b *SimulatedBroker) Value(marks map[string]float64) float64 {
	total := b.cash
	for data, pos := range b.positions {
		if pos.Size == 0 {
			continue
		}
		total += pos.Value(marks[data], b.Multiplier, b.Mode)
	}
	return total
}

// Buy submits a buy order. No sizer is applied here or in the strategy
// package: the broker queues whatever size it is given, including 0.
func (b *SimulatedBroker) Buy(data string, size, price, stopPrice float64, typ Type, valid, at time.Time) *Order {
	o := NewOrder(data, Buy, typ, size, price, stopPrice, at)
	o.Valid = valid
	o.Status = Accepted
	b.openOrders = append(b.openOrders, o)
	return o
}

// Sell submits a sell order, symmetric to Buy.
func (b *SimulatedBroker) Sell(data string, size, price, stopPrice float64, typ Type, valid, at time.Time) *Order {
	o := NewOrder(data, Sell, typ, size, price, stopPrice, at)
	o.Valid = valid
	o.Status = Accepted
	b.openOrders = append(b.openOrders, o)
	return o
}

// Close queues a market order that flattens the current position in
// data, per spec §4.5.
func (b *SimulatedBroker) Close(data string, at time.Time) *Order {
	pos := b.Position(data)
	side := Sell
	if pos.Size < 0 {
		side = Buy
	}
	o := NewOrder(data, side, CloseType, -pos.Size, 0, 0, at)
	o.Status = Accepted
	b.openOrders = append(b.openOrders, o)
	return o
}

// Cancel marks o Canceled and removes it from the open queue, if it is
// still open. Reports whether it did.
func (b *SimulatedBroker) Cancel(o *Order) bool {
	for i, open := range b.openOrders {
		if open == o {
			o.Status = Canceled
			b.openOrders = append(b.openOrders[:i], b.openOrders[i+1:]...)
			b.orderHistory = append(b.orderHistory, o)
			return true
		}
	}
	return false
}

// Match runs the per-bar fill algorithm of spec §4.5 against the given
// bars, in open-order submission order, and returns the notifications
// Cerebro drains into the strategy's notify_order/notify_trade hooks.
func (b *SimulatedBroker) Match(bars BarSet) []Notification {
	var notes []Notification
	stillOpen := b.openOrders[:0:0]

	for _, o := range b.openOrders {
		bar, have := bars[o.Data]
		if !have {
			stillOpen = append(stillOpen, o)
			continue
		}

		if o.Type == Market && !b.CheatOnOpen && o.Created.Equal(bar.Datetime) {
			// Submitted this bar: wait for the next bar's open unless
			// cheat-on-open is enabled.
			stillOpen = append(stillOpen, o)
			continue
		}

		price, filled := fillPrice(o, bar)
		if !filled {
			if !o.Valid.IsZero() && !bar.Datetime.Before(o.Valid) {
				o.Status = Expired
				b.orderHistory = append(b.orderHistory, o)
				notes = append(notes, Notification{Kind: OrderEvent, Order: o})
				slog.Info("broker: order expired", "data", o.Data, "side", o.Side, "type", o.Type, "size", o.Size)
				continue
			}
			stillOpen = append(stillOpen, o)
			continue
		}

		size := o.Size
		required := math.Abs(size) * price
		if b.Mode == FuturesMode {
			required = math.Abs(size) * b.Margin
		}
		if required > b.cash {
			o.Status = Margin
			b.orderHistory = append(b.orderHistory, o)
			notes = append(notes, Notification{Kind: OrderEvent, Order: o})
			slog.Warn("broker: order rejected, insufficient margin",
				"data", o.Data, "side", o.Side, "size", o.Size, "required", required, "cash", b.cash)
			continue
		}

		commission := b.Commission.Commission(size, price)
		if b.Mode == StockMode {
			b.cash -= size * price
		}
		b.cash -= commission

		trade := b.applyFill(o.Data, size, price, commission, bar.Datetime)

		o.Status = Completed
		o.ExecutedSize = size
		o.ExecutedPrice = price
		o.ExecutedValue = size * price
		o.Commission = commission
		o.ExecutedAt = bar.Datetime
		b.orderHistory = append(b.orderHistory, o)
		notes = append(notes, Notification{Kind: OrderEvent, Order: o})
		slog.Info("broker: order filled",
			"data", o.Data, "side", o.Side, "type", o.Type, "size", size, "price", price, "commission", commission)
		if trade != nil {
			notes = append(notes, Notification{Kind: TradeEvent, Trade: trade})
			if !trade.IsOpen {
				slog.Info("broker: trade closed",
					"data", trade.Data, "pnl", trade.PnL, "commission", trade.Commission,
					"opened", trade.Opened, "closed", trade.Closed)
			}
		}
	}

	b.openOrders = stillOpen
	return notes
}

// applyFill updates the position and the open trade for data with a
// signed fill, splitting it into closing and opening portions per
// spec §4.5d, and returns the trade touched (nil only if size is 0).
// When one fill both closes the old trade and opens a new one, the
// newly opened trade is the one returned.
func (b *SimulatedBroker) applyFill(data string, size, price, commission float64, at time.Time) *Trade {
	pos, ok := b.positions[data]
	if !ok {
		pos = &Position{Data: data}
		b.positions[data] = pos
	}

	closing, opening := splitFill(pos.Size, size)
	closeShare, openShare := commission, 0.0
	if closing != 0 && opening != 0 {
		closeShare = commission * math.Abs(closing) / math.Abs(size)
		openShare = commission - closeShare
	} else if opening != 0 {
		closeShare, openShare = 0, commission
	}

	trade := b.openTrades[data]
	var closed *Trade

	if closing != 0 {
		pos.Size += closing
		if trade != nil {
			realized := trade.closePortion(closing, price, b.Multiplier, closeShare, at)
			if b.Mode == FuturesMode {
				b.cash += realized
			}
			if !trade.IsOpen {
				b.tradeHistory = append(b.tradeHistory, trade)
				delete(b.openTrades, data)
				closed = trade
				trade = nil
			}
		}
	}

	if opening != 0 {
		pos.addOpening(opening, price)
		if trade == nil {
			trade = newTrade(data, opening, price, at)
			trade.Commission += openShare
			b.openTrades[data] = trade
		} else {
			trade.addOpen(opening, price)
			trade.Commission += openShare
		}
	}

	if trade == nil {
		// Closing-only fill: report the trade it just closed (nil if
		// there was no open trade to close).
		return closed
	}
	return trade
}

// fillPrice applies the per-type fill rule of spec §4.5a to bar's OHLC.
// Stop orders store their trigger in StopPrice; StopLimit stores the
// stop trigger in StopPrice and the limit leg in Price.
func fillPrice(o *Order, bar series.Bar) (price float64, ok bool) {
	switch o.Type {
	case Market:
		return bar.Open, true

	case Limit:
		if o.IsBuy() {
			if bar.Low <= o.Price {
				return math.Min(o.Price, bar.Low), true
			}
			return 0, false
		}
		if bar.High >= o.Price {
			return math.Max(o.Price, bar.High), true
		}
		return 0, false

	case Stop:
		if o.IsBuy() {
			if bar.High >= o.StopPrice {
				return math.Max(o.StopPrice, bar.Open), true
			}
			return 0, false
		}
		if bar.Low <= o.StopPrice {
			return math.Min(o.StopPrice, bar.Open), true
		}
		return 0, false

	case StopLimit:
		if o.IsBuy() {
			if bar.High >= o.StopPrice && bar.Low <= o.Price {
				return math.Min(o.Price, bar.Low), true
			}
			return 0, false
		}
		if bar.Low <= o.StopPrice && bar.High >= o.Price {
			return math.Max(o.Price, bar.High), true
		}
		return 0, false

	case CloseType:
		return bar.Close, true
	}
	return 0, false
}
