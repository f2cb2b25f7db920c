package analyzer

import (
	"math"

	"github.com/nullstrategy/backlab/internal/broker"
	"gonum.org/v1/gonum/stat"
)

// SQN implements the System Quality Number analyzer of scenario S3:
// sqrt(N) * mean(trade_pnl) / stdev(trade_pnl) over closed trades.
// MaxTrades caps how many closed trades are considered (0 = all); the
// degenerate N <= 1 case (e.g. MaxTrades 1) and a zero stdev both
// report 0 rather than an undefined ratio.
type SQN struct {
	*Base
	MaxTrades int

	pnls []float64
}

// NewSQN builds an SQN analyzer with the given trade-count cutoff.
func NewSQN(maxTrades int) *SQN {
	return &SQN{Base: &Base{}, MaxTrades: maxTrades}
}

// NotifyTrade implements Analyzer: only closed trades count toward SQN.
func (s *SQN) NotifyTrade(t *broker.Trade) {
	if t.IsOpen {
		return
	}
	if s.MaxTrades > 0 && len(s.pnls) >= s.MaxTrades {
		return
	}
	s.pnls = append(s.pnls, t.PnL)
}

// GetAnalysis returns {"sqn": float64, "trades": int}.
func (s *SQN) GetAnalysis() map[string]any {
	n := len(s.pnls)
	if n < 2 {
		return map[string]any{"sqn": 0.0, "trades": n}
	}
	mean, std := stat.MeanStdDev(s.pnls, nil)
	if std == 0 {
		return map[string]any{"sqn": 0.0, "trades": n}
	}
	sqn := math.Sqrt(float64(n)) * mean / std
	return map[string]any{"sqn": sqn, "trades": n}
}
