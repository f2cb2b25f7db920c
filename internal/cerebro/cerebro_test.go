package cerebro

import (
	"context"
	"time"

	"testing"

	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/nullstrategy/backlab/internal/feed"
	"github.com/nullstrategy/backlab/internal/series"
	"github.com/nullstrategy/backlab/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampBars(n int, start time.Time) []series.Bar {
	bars := make([]series.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		dt := start.AddDate(0, 0, i)
		if i < n/2 {
			price -= 0.5
		} else {
			price += 1
		}
		bars[i] = series.Bar{Datetime: dt, Open: price, High: price + 1, Low: price - 1, Close: price}
	}
	return bars
}

func smaCrossFactory(bars []series.Bar, period int, size float64) *Cerebro {
	dataFactory := func() []*series.DataSeries {
		return []*series.DataSeries{series.New(feed.NewSlice(bars), series.Meta{Name: "primary"})}
	}
	brokerFactory := func() *broker.SimulatedBroker {
		return broker.NewSimulatedBroker(100000)
	}
	strategyFactory := func(datas []*series.DataSeries) strategy.Strategy {
		closeLine := datas[0].Line(series.LineClose)
		return strategy.NewSMACross(datas[0], closeLine, period, size)
	}
	return &Cerebro{
		DataFactory:       dataFactory,
		BrokerFactory:     brokerFactory,
		StrategyFactories: []func(datas []*series.DataSeries) strategy.Strategy{strategyFactory},
		Config:            Config{CheatOnOpen: true, StdStats: true},
	}
}

func TestCerebro_Run_StreamingProducesOneInstancePerStrategy(t *testing.T) {
	bars := rampBars(20, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := smaCrossFactory(bars, 5, 10)

	instances, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)

	inst := instances[0]
	assert.NotEmpty(t, inst.FinalMarks)
	assert.Len(t, inst.Analyzers, 2, "StdStats attaches SQN and TimeReturn")
}

func TestCerebro_Run_VectorizedMatchesStreamingTradeCount(t *testing.T) {
	bars := rampBars(20, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	streamCerebro := smaCrossFactory(bars, 5, 10)
	streamInstances, err := streamCerebro.Run(context.Background())
	require.NoError(t, err)

	vecCerebro := smaCrossFactory(bars, 5, 10)
	vecCerebro.Config.RunOnce = true
	vecCerebro.Config.Preload = true
	vecInstances, err := vecCerebro.Run(context.Background())
	require.NoError(t, err)

	streamTrades := streamInstances[0].Broker.TradeHistory()
	vecTrades := vecInstances[0].Broker.TradeHistory()
	assert.Equal(t, len(streamTrades), len(vecTrades))
}

func TestCerebro_Run_RejectsIncompleteConfiguration(t *testing.T) {
	c := &Cerebro{}
	_, err := c.Run(context.Background())
	assert.Error(t, err)
}

func TestCerebro_Run_ContextCancelStopsStreaming(t *testing.T) {
	bars := rampBars(50, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := smaCrossFactory(bars, 5, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptRun_FansOutAcrossParamGrid(t *testing.T) {
	bars := rampBars(20, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	paramSets := []ParamSet{
		{"period": 3},
		{"period": 5},
		{"period": 8},
	}

	results := OptRun(context.Background(), 2, paramSets, func(ps ParamSet) *Cerebro {
		period := ps["period"].(int)
		return smaCrossFactory(bars, period, 10)
	})

	require.Len(t, results, 3)
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, paramSets[i], r.Params)
		assert.Len(t, r.Instances, 1)
	}
}
