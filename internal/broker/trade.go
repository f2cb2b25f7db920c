package broker

import (
	"time"

	"github.com/google/uuid"
)

// Trade aggregates a position's life from open to close, holding
// weighted-average entry composition and realized PnL (spec §3).
type Trade struct {
	ID     string
	Data   string
	Size   float64 // current open size, signed; 0 once closed
	Price  float64 // weighted average entry price while open
	Value  float64 // size * price, signed

	PnL        float64 // realized PnL, accumulates as the trade is (partially) closed
	Commission float64

	Opened time.Time
	Closed time.Time
	IsOpen bool
}

// newTrade opens a trade from flat with the given first fill.
func newTrade(data string, size, price float64, at time.Time) *Trade {
	return &Trade{
		ID:     uuid.New().String(),
		Data:   data,
		Size:   size,
		Price:  price,
		Value:  size * price,
		Opened: at,
		IsOpen: true,
	}
}

// addOpen extends a trade in the same direction: updates weighted
// average entry price and grows size.
func (t *Trade) addOpen(size, price float64) {
	totalValue := t.Price*t.Size + price*size
	t.Size += size
	if t.Size != 0 {
		t.Price = totalValue / t.Size
	}
	t.Value = t.Size * t.Price
}

// closePortion realizes PnL on closing `size` (signed opposite to the
// trade's open direction) at exitPrice, and reduces the open size.
// multiplier scales futures-like PnL; it is 1.0 for stock mode. The
// single formula below is sign-agnostic: it holds whether the trade is
// long or short, since size already carries the direction of the fill.
func (t *Trade) closePortion(size, exitPrice, multiplier float64, commission float64, at time.Time) float64 {
	realized := (exitPrice - t.Price) * (-size) * multiplier
	t.PnL += realized
	t.Commission += commission
	t.Size += size
	t.Value = t.Size * t.Price

	if t.Size == 0 {
		t.IsOpen = false
		t.Closed = at
	}
	return realized
}
