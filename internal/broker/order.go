// Package broker implements the simulated broker of spec §4.5: order
// admission, fill simulation, margin, commission, position accounting,
// trade aggregation, and cash/value bookkeeping.
package broker

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Type selects the fill rule an order is matched under (spec §4.5).
type Type int

const (
	Market Type = iota
	Limit
	Stop
	StopLimit
	CloseType
)

func (t Type) String() string {
	switch t {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Stop:
		return "STOP"
	case StopLimit:
		return "STOP_LIMIT"
	case CloseType:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Status is an order's lifecycle state. Terminal states are Completed,
// Canceled, Expired, Margin, and Rejected — the DAG roots at Created.
type Status int

const (
	Created Status = iota
	Submitted
	Accepted
	Partial
	Completed
	Canceled
	Expired
	Margin
	Rejected
)

func (s Status) String() string {
	switch s {
	case Created:
		return "CREATED"
	case Submitted:
		return "SUBMITTED"
	case Accepted:
		return "ACCEPTED"
	case Partial:
		return "PARTIAL"
	case Completed:
		return "COMPLETED"
	case Canceled:
		return "CANCELED"
	case Expired:
		return "EXPIRED"
	case Margin:
		return "MARGIN"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the status ends the order's lifecycle.
func (s Status) IsTerminal() bool {
	switch s {
	case Completed, Canceled, Expired, Margin, Rejected:
		return true
	default:
		return false
	}
}

// Order is the value object of spec §3: side, type, signed size,
// requested price(s), status, and execution info once filled.
type Order struct {
	ID     string
	Data   string // the data feed name this order targets
	Side   Side
	Type   Type
	Size   float64 // signed: positive for Buy, negative for Sell, set at creation
	Status Status

	Price     float64 // limit price (Limit, and the limit leg of StopLimit); 0 for Market
	StopPrice float64 // stop trigger price (Stop and StopLimit)

	Valid time.Time // zero = good-til-canceled
	Created time.Time

	ExecutedSize  float64
	ExecutedPrice float64
	ExecutedValue float64
	Commission    float64
	ExecutedAt    time.Time
}

// NewOrder creates an Order with a fresh ID and status Submitted.
func NewOrder(data string, side Side, typ Type, size float64, price, stopPrice float64, created time.Time) *Order {
	signed := size
	if side == Sell && signed > 0 {
		signed = -signed
	}
	if side == Buy && signed < 0 {
		signed = -signed
	}
	return &Order{
		ID:        uuid.New().String(),
		Data:      data,
		Side:      side,
		Type:      typ,
		Size:      signed,
		Status:    Submitted,
		Price:     price,
		StopPrice: stopPrice,
		Created:   created,
	}
}

// Remaining returns the signed size not yet executed.
func (o *Order) Remaining() float64 {
	exec := o.ExecutedSize
	if o.Size < 0 {
		exec = -exec
	}
	return o.Size - exec
}

// IsBuy reports whether the order is a buy.
func (o *Order) IsBuy() bool { return o.Side == Buy }
