package analyzer

import (
	"math"
	"testing"

	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/stretchr/testify/assert"
)

func closedTrade(pnl float64) *broker.Trade {
	return &broker.Trade{PnL: pnl, IsOpen: false}
}

func TestSQN_FewerThanTwoTrades_ReportsZero(t *testing.T) {
	s := NewSQN(0)
	s.NotifyTrade(closedTrade(100))
	got := s.GetAnalysis()
	assert.Equal(t, 0.0, got["sqn"])
	assert.Equal(t, 1, got["trades"])
}

func TestSQN_IgnoresOpenTrades(t *testing.T) {
	s := NewSQN(0)
	s.NotifyTrade(&broker.Trade{PnL: 100, IsOpen: true})
	got := s.GetAnalysis()
	assert.Equal(t, 0, got["trades"])
}

func TestSQN_ComputesSqrtNTimesMeanOverStdev(t *testing.T) {
	s := NewSQN(0)
	for _, pnl := range []float64{10, -5, 20, -10, 15} {
		s.NotifyTrade(closedTrade(pnl))
	}
	got := s.GetAnalysis()
	assert.Equal(t, 5, got["trades"])
	sqn := got["sqn"].(float64)
	assert.Greater(t, sqn, 0.0)
	assert.False(t, math.IsNaN(sqn))
	assert.False(t, math.IsInf(sqn, 0))
}

func TestSQN_RespectsMaxTradesCutoff(t *testing.T) {
	s := NewSQN(2)
	s.NotifyTrade(closedTrade(10))
	s.NotifyTrade(closedTrade(20))
	s.NotifyTrade(closedTrade(999))
	got := s.GetAnalysis()
	assert.Equal(t, 2, got["trades"])
}

func TestSQN_ZeroStdev_ReportsZero(t *testing.T) {
	s := NewSQN(0)
	s.NotifyTrade(closedTrade(10))
	s.NotifyTrade(closedTrade(10))
	got := s.GetAnalysis()
	assert.Equal(t, 0.0, got["sqn"])
}
