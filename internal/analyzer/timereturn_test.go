package analyzer

import (
	"testing"
	"time"

	"github.com/nullstrategy/backlab/internal/feed"
	"github.com/nullstrategy/backlab/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeReturn_BucketsByCalendarYear(t *testing.T) {
	bars := []series.Bar{
		{Datetime: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), Close: 100},
		{Datetime: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), Close: 100},
		{Datetime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Close: 100},
		{Datetime: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Close: 100},
	}
	data := series.New(feed.NewSlice(bars), series.Meta{Name: "primary"})
	require.NoError(t, data.Start())
	defer data.Stop()

	tr := NewTimeReturn(series.Years, 1)
	tr.Init(&Env{Datas: []*series.DataSeries{data}})

	values := []float64{100000, 110000, 120000, 90000}
	for i, v := range values {
		ok, err := data.Next()
		require.NoError(t, err)
		require.True(t, ok)
		tr.NotifyCashValue(0, v)
		tr.Next()
		_ = i
	}
	tr.Stop()

	got := tr.GetAnalysis()["returns"].(map[string]float64)
	require.Contains(t, got, "2022")
	assert.InDelta(t, 0.10, got["2022"], 0.0001) // 100000 -> 110000
	assert.InDelta(t, -0.25, got["2023"], 0.0001) // 120000 -> 90000
}

func TestTimeReturn_ZeroStartReturnsZero(t *testing.T) {
	bars := []series.Bar{
		{Datetime: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Datetime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	data := series.New(feed.NewSlice(bars), series.Meta{Name: "primary"})
	require.NoError(t, data.Start())
	defer data.Stop()

	tr := NewTimeReturn(series.Years, 1)
	tr.Init(&Env{Datas: []*series.DataSeries{data}})

	for range bars {
		ok, err := data.Next()
		require.NoError(t, err)
		require.True(t, ok)
		tr.NotifyCashValue(0, 0)
		tr.Next()
	}
	tr.Stop()

	got := tr.GetAnalysis()["returns"].(map[string]float64)
	assert.Equal(t, 0.0, got["2022"])
}
