package strategy

import (
	"github.com/nullstrategy/backlab/internal/indicator"
	"github.com/nullstrategy/backlab/internal/line"
)

// SMACross is the reference strategy of scenarios S1/S2: go long when
// close crosses above its SMA, flat when it crosses back below. It
// carries no state beyond the two child indicators, matching the
// minimal shape the scenario fixtures exercise.
type SMACross struct {
	*Base

	Period int
	Size   float64

	sma   *indicator.SMA
	cross *indicator.CrossOver
}

// NewSMACross builds the strategy against data, computing SMA(period)
// of close and a crossover signal between close and that SMA.
func NewSMACross(data indicator.Input, close *line.Buffer, period int, size float64) *SMACross {
	s := &SMACross{Period: period, Size: size}
	s.Base = NewBase(data)
	s.sma = indicator.NewSMA(data, close, period)
	s.cross = indicator.NewCrossOver(s.sma, close, s.sma.Lines().Line("sma"))
	s.AddIndicator(s.sma)
	s.AddIndicator(s.cross)
	return s
}

// NextStart trades the same way as Next: the boundary bar already has
// a defined SMA and crossover value.
func (s *SMACross) NextStart() { s.Next() }

func (s *SMACross) Next() {
	signal := s.cross.Lines().Line("cross").Get(0)
	pos := s.Env.Broker.Position(s.dataName())
	switch {
	case signal > 0 && pos.Size == 0:
		s.Buy(s.Size)
	case signal < 0 && pos.Size != 0:
		s.Close()
	}
}
