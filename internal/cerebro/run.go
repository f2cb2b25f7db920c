package cerebro

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/nullstrategy/backlab/internal/indicator"
	"github.com/nullstrategy/backlab/internal/series"
	"github.com/nullstrategy/backlab/internal/writer"
)

// sortedIndicators gathers every strategy's indicator dependency graph
// and topologically sorts it, so each indicator's upstream children
// have already run by the time it does.
func sortedIndicators(instances []*Instance) ([]indicator.LineIterator, error) {
	seen := make(map[indicator.LineIterator]bool)
	var nodes []indicator.LineIterator
	for _, inst := range instances {
		for _, li := range inst.Strategy.Indicators() {
			if !seen[li] {
				seen[li] = true
				nodes = append(nodes, li)
			}
		}
	}
	return indicator.Sort(nodes)
}

// runStreaming drives the bar-by-bar path: each data feed's Next is
// called, then every indicator/strategy/analyzer reacts to that one
// new bar, per spec §4.8's per-bar dispatch order.
func (c *Cerebro) runStreaming(ctx context.Context, datas []*series.DataSeries, br *broker.SimulatedBroker, instances []*Instance, out *writer.CSVWriter) error {
	sorted, err := sortedIndicators(instances)
	if err != nil {
		return err
	}

	barIndex := 0
	for {
		select {
		case <-ctx.Done():
			slog.Warn("cerebro: streaming run canceled", "bar", barIndex)
			return ctx.Err()
		default:
		}

		advanced := false
		for _, d := range datas {
			ok, err := d.Next()
			if err != nil {
				slog.Error("cerebro: data feed error", "data", d.Meta.Name, "bar", barIndex, "err", err)
				return err
			}
			if ok {
				advanced = true
			}
		}
		if !advanced {
			slog.Info("cerebro: streaming run exhausted data", "bars", barIndex)
			return nil
		}
		barIndex++

		for _, li := range sorted {
			callLifecycle(li, barIndex)
		}

		bars := make(broker.BarSet, len(datas))
		for _, d := range datas {
			bars[d.Meta.Name] = currentBar(d)
		}

		if err := dispatch(bars, br, instances, barIndex, out, datas); err != nil {
			return err
		}
	}
}

// runVectorized precomputes every indicator's Once(0,total) in
// topological order, then drives the same per-bar dispatch as the
// streaming path, advancing only the cursor (no recompute) per bar.
func (c *Cerebro) runVectorized(ctx context.Context, datas []*series.DataSeries, br *broker.SimulatedBroker, instances []*Instance, out *writer.CSVWriter) error {
	sorted, err := sortedIndicators(instances)
	if err != nil {
		return err
	}
	if len(datas) == 0 {
		return nil
	}

	total := datas[0].Line(series.LineClose).Size()
	slog.Info("cerebro: vectorized precompute", "bars", total, "indicators", len(sorted))
	for _, li := range sorted {
		li.Lines().Prealloc(total)
		li.Once(0, total)
		li.Lines().Home()
	}

	for _, d := range datas {
		d.Home()
	}

	for barIndex := 1; barIndex <= total; barIndex++ {
		select {
		case <-ctx.Done():
			slog.Warn("cerebro: vectorized run canceled", "bar", barIndex, "total", total)
			return ctx.Err()
		default:
		}

		if barIndex > 1 {
			for _, d := range datas {
				d.Forward(1)
			}
			for _, li := range sorted {
				li.Lines().Forward(1)
			}
		}

		bars := make(broker.BarSet, len(datas))
		for _, d := range datas {
			bars[d.Meta.Name] = currentBar(d)
		}

		if err := dispatch(bars, br, instances, barIndex, out, datas); err != nil {
			return err
		}
	}
	return nil
}

func currentBar(d *series.DataSeries) series.Bar {
	return series.Bar{
		Datetime:     series.ToTime(d.Datetime(0)),
		Open:         d.Open(0),
		High:         d.High(0),
		Low:          d.Low(0),
		Close:        d.Close(0),
		Volume:       d.Volume(0),
		OpenInterest: d.OpenInterest(0),
	}
}

func writerHeaders(datas []*series.DataSeries, instances []*Instance) []string {
	var headers []string
	for _, d := range datas {
		for _, a := range d.LineSet().Aliases() {
			headers = append(headers, fmt.Sprintf("%s.%s", d.Meta.Name, a))
		}
	}
	for _, inst := range instances {
		for i, li := range inst.Strategy.Indicators() {
			for _, a := range li.Lines().Aliases() {
				headers = append(headers, fmt.Sprintf("ind%d.%s", i, a))
			}
		}
	}
	return headers
}

func writerRow(datas []*series.DataSeries, instances []*Instance) []float64 {
	var row []float64
	for _, d := range datas {
		for i := 0; i < d.LineSet().Len(); i++ {
			row = append(row, d.LineSet().At(i).Get(0))
		}
	}
	for _, inst := range instances {
		for _, li := range inst.Strategy.Indicators() {
			ls := li.Lines()
			for i := 0; i < ls.Len(); i++ {
				row = append(row, ls.At(i).Get(0))
			}
		}
	}
	return row
}
