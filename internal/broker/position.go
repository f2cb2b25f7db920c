package broker

// MarginMode selects how Position.Value and order admission treat
// required cash: StockMode settles the full notional in cash;
// FuturesMode posts a fixed per-contract margin and marks PnL against
// a contract multiplier (spec §3/§4.5).
type MarginMode int

const (
	StockMode MarginMode = iota
	FuturesMode
)

// Position is the per-data net holding: signed size and the weighted
// average entry price of that size (spec §3).
type Position struct {
	Data  string
	Size  float64
	Price float64
}

// Value marks the position to markPrice. Stock mode values the full
// notional; futures mode values the unrealized PnL scaled by
// multiplier, since margin (not notional) was posted at entry.
func (p *Position) Value(markPrice, multiplier float64, mode MarginMode) float64 {
	if mode == FuturesMode {
		return (markPrice - p.Price) * p.Size * multiplier
	}
	return p.Size * markPrice
}

// splitFill divides a signed fill against the existing signed size
// into a closing portion (opposite sign, reduces/flattens exposure)
// and an opening portion (same sign as the resulting position), per
// the sign-change rule of spec §4.5d. A fill that flips the position
// (e.g. long 5 hit by a sell of 8) closes the old 5 and opens a new
// short 3 in the same step.
func splitFill(posSize, fillSize float64) (closing, opening float64) {
	if posSize == 0 || sameSign(posSize, fillSize) {
		return 0, fillSize
	}
	if absf(fillSize) <= absf(posSize) {
		return fillSize, 0
	}
	return -posSize, fillSize + posSize
}

// addOpening grows the position by an opening fill, updating the
// weighted average entry price.
func (p *Position) addOpening(size, price float64) {
	totalValue := p.Price*p.Size + price*size
	p.Size += size
	if p.Size != 0 {
		p.Price = totalValue / p.Size
	} else {
		p.Price = 0
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
