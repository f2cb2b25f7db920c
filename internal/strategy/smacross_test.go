package strategy

import (
	"testing"
	"time"

	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/nullstrategy/backlab/internal/feed"
	"github.com/nullstrategy/backlab/internal/series"
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

func runStrategy(t *testing.T, s *SMACross, data *series.DataSeries, br *broker.SimulatedBroker) {
	t.Helper()
	require.NoError(t, data.Start())
	defer data.Stop()

	s.Init(&Env{Datas: []*series.DataSeries{data}, Broker: br})

	barIndex := 0
	for {
		ok, err := data.Next()
		require.NoError(t, err)
		if !ok {
			return
		}
		barIndex++
		for _, li := range s.Indicators() {
			switch {
			case barIndex < li.MinPeriod():
				li.PreNext()
			case barIndex == li.MinPeriod():
				li.NextStart()
			default:
				li.Next()
			}
		}
		switch {
		case barIndex < s.MinPeriod():
			s.PreNext()
		case barIndex == s.MinPeriod():
			s.NextStart()
		default:
			s.Next()
		}
		br.Match(broker.BarSet{"primary": currentBar(data)})
	}
}

func currentBar(d *series.DataSeries) series.Bar {
	return series.Bar{
		Datetime: series.ToTime(d.Datetime(0)),
		Open:     d.Open(0), High: d.High(0), Low: d.Low(0), Close: d.Close(0),
	}
}

func TestSMACross_GoesLongOnUpCross(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := rampBars(20, start)
	src := feed.NewSlice(bars)
	data := series.New(src, series.Meta{Name: "primary"})

	br := broker.NewSimulatedBroker(100000)
	br.CheatOnOpen = true
	closeLine := data.Line(series.LineClose)
	s := NewSMACross(data, closeLine, 5, 10)

	runStrategy(t, s, data, br)

	pos := br.Position("primary")
	assert.NotEqual(t, 0.0, pos.Size, "the ramp's up-cross should have opened a long position")
}

func TestSMACross_MinPeriod_CombinesSMAAndCrossOver(t *testing.T) {
	data := series.New(feed.NewSlice(nil), series.Meta{Name: "primary"})
	closeLine := data.Line(series.LineClose)
	s := NewSMACross(data, closeLine, 5, 10)
	// SMA needs 5 bars; CrossOver needs 1 bar of SMA lookback on top of
	// the SMA's own minperiod => 5 + 2 - 1 = 6.
	assert.Equal(t, 6, s.MinPeriod())
}
