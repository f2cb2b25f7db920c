// Package cerebro implements the engine of spec §4.8: validation,
// instantiation, the vectorized/streaming execution paths, and the
// strict per-bar dispatch order of §4.8/§5.
package cerebro

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nullstrategy/backlab/internal/analyzer"
	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/nullstrategy/backlab/internal/errs"
	"github.com/nullstrategy/backlab/internal/series"
	"github.com/nullstrategy/backlab/internal/strategy"
	"github.com/nullstrategy/backlab/internal/writer"
)

// Config is the §6 option set governing a single Run.
type Config struct {
	Preload     bool
	RunOnce     bool
	Live        bool
	ExactBars   bool
	CheatOnOpen bool
	StdStats    bool
	WriterCSV   string
}

// Instance is one strategy's outcome from a finished Run: the
// strategy itself (still holding its final indicator/order state) and
// the analyzers attached to it.
type Instance struct {
	Strategy  strategy.Strategy
	Analyzers []analyzer.Analyzer
	Broker    *broker.SimulatedBroker

	// FinalMarks is the last close price seen per data feed name, for
	// marking any still-open position when reporting the finished
	// run's portfolio value.
	FinalMarks map[string]float64
}

// Cerebro drives registered data feeds through one or more strategies
// against a shared broker, per spec §4.8. Every factory is called
// fresh at Run time so a Cerebro value can be reused (or rebuilt per
// parameter tuple by OptRun) without instances leaking across runs.
type Cerebro struct {
	DataFactory   func() []*series.DataSeries
	BrokerFactory func() *broker.SimulatedBroker
	// StrategyFactories build a strategy against the data feeds Run
	// just produced from DataFactory, so a strategy's own indicators
	// (built at construction time, per spec §4.4) wire against the
	// exact DataSeries instances the engine will drive.
	StrategyFactories []func(datas []*series.DataSeries) strategy.Strategy
	AnalyzerFactories []func() analyzer.Analyzer

	Config Config
}

// Run executes the seven-step algorithm of spec §4.8 once and returns
// one Instance per registered strategy factory.
func (c *Cerebro) Run(ctx context.Context) ([]*Instance, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	datas := c.DataFactory()
	br := c.BrokerFactory()
	br.CheatOnOpen = c.Config.CheatOnOpen

	slog.Info("cerebro: run starting",
		"datas", len(datas), "strategies", len(c.StrategyFactories), "run_once", c.Config.RunOnce)

	instances := make([]*Instance, len(c.StrategyFactories))
	for i, factory := range c.StrategyFactories {
		strat := factory(datas)
		strat.Init(&strategy.Env{Datas: datas, Broker: br})
		instances[i] = &Instance{Strategy: strat, Broker: br}

		factories := c.AnalyzerFactories
		if c.Config.StdStats {
			factories = append(append([]func() analyzer.Analyzer{}, factories...),
				func() analyzer.Analyzer { return analyzer.NewSQN(0) },
				func() analyzer.Analyzer { return analyzer.NewTimeReturn(series.Years, 1) },
			)
		}
		for _, af := range factories {
			a := af()
			a.Init(&analyzer.Env{Datas: datas})
			instances[i].Analyzers = append(instances[i].Analyzers, a)
		}
	}

	var out *writer.CSVWriter
	if c.Config.WriterCSV != "" {
		out = writer.NewCSVWriter(c.Config.WriterCSV)
	}

	if err := c.start(datas, br, instances, out); err != nil {
		return nil, err
	}
	defer c.stop(datas, instances, out)

	live := c.Config.Live || anyLive(datas)
	if !live && c.Config.Preload {
		for _, d := range datas {
			if err := d.Preload(); err != nil {
				return nil, fmt.Errorf("cerebro: preload: %w", err)
			}
		}
	}

	if c.Config.RunOnce && !live {
		slog.Info("cerebro: running vectorized")
		if err := c.runVectorized(ctx, datas, br, instances, out); err != nil {
			slog.Error("cerebro: vectorized run failed", "err", err)
			return nil, err
		}
	} else {
		slog.Info("cerebro: running streaming", "live", live)
		if err := c.runStreaming(ctx, datas, br, instances, out); err != nil {
			slog.Error("cerebro: streaming run failed", "err", err)
			return nil, err
		}
	}

	slog.Info("cerebro: run finished", "cash", br.Cash(), "trades", len(br.TradeHistory()))
	return instances, nil
}

func (c *Cerebro) validate() error {
	if c.DataFactory == nil {
		return fmt.Errorf("cerebro: %w: no data factory registered", errs.ErrConfiguration)
	}
	if c.BrokerFactory == nil {
		return fmt.Errorf("cerebro: %w: no broker factory registered", errs.ErrConfiguration)
	}
	if len(c.StrategyFactories) == 0 {
		return fmt.Errorf("cerebro: %w: no strategy factory registered", errs.ErrConfiguration)
	}
	return nil
}

func anyLive(datas []*series.DataSeries) bool {
	for _, d := range datas {
		if d.IsLive() {
			return true
		}
	}
	return false
}

func (c *Cerebro) start(datas []*series.DataSeries, br *broker.SimulatedBroker, instances []*Instance, out *writer.CSVWriter) error {
	for _, d := range datas {
		if err := d.Start(); err != nil {
			slog.Error("cerebro: data feed failed to start", "data", d.Meta.Name, "err", err)
			return fmt.Errorf("cerebro: start: %w", err)
		}
	}
	for _, inst := range instances {
		inst.Strategy.Start()
		for _, a := range inst.Analyzers {
			a.Start()
		}
	}
	if out != nil {
		headers := writerHeaders(datas, instances)
		if err := out.Start(headers); err != nil {
			slog.Error("cerebro: csv writer failed to start", "path", c.Config.WriterCSV, "err", err)
			return fmt.Errorf("cerebro: %w: %v", errs.ErrExternalIO, err)
		}
	}
	slog.Info("cerebro: started", "datas", len(datas), "instances", len(instances))
	return nil
}

func (c *Cerebro) stop(datas []*series.DataSeries, instances []*Instance, out *writer.CSVWriter) {
	if out != nil {
		if err := out.Stop(); err != nil {
			slog.Warn("cerebro: csv writer failed to stop cleanly", "path", c.Config.WriterCSV, "err", err)
		}
	}
	for _, inst := range instances {
		for _, a := range inst.Analyzers {
			a.Stop()
		}
		inst.Strategy.Stop()
	}
	for _, d := range datas {
		if err := d.Stop(); err != nil {
			slog.Warn("cerebro: data feed failed to stop cleanly", "data", d.Meta.Name, "err", err)
		}
	}
	slog.Info("cerebro: stopped")
}

// dispatch runs one bar's strict ordering of spec §4.8/§5 for every
// registered strategy: prenext/nextstart/next, broker match, drained
// notifications, then Next on each analyzer (every bar, with no
// prenext/nextstart split).
func dispatch(bars broker.BarSet, br *broker.SimulatedBroker, instances []*Instance, barIndex int, out *writer.CSVWriter, datas []*series.DataSeries) error {
	for _, inst := range instances {
		callLifecycle(inst.Strategy, barIndex)
		if inst.FinalMarks == nil {
			inst.FinalMarks = make(map[string]float64, len(bars))
		}
		for name, bar := range bars {
			inst.FinalMarks[name] = bar.Close
		}
	}

	notes := br.Match(bars)

	marks := make(map[string]float64, len(bars))
	for name, bar := range bars {
		marks[name] = bar.Close
	}
	value := br.Value(marks)

	for _, inst := range instances {
		for _, n := range notes {
			switch n.Kind {
			case broker.OrderEvent:
				inst.Strategy.NotifyOrder(n.Order)
			case broker.TradeEvent:
				inst.Strategy.NotifyTrade(n.Trade)
			}
		}
		inst.Strategy.NotifyCashValue(br.Cash(), value)

		for _, a := range inst.Analyzers {
			for _, n := range notes {
				switch n.Kind {
				case broker.OrderEvent:
					a.NotifyOrder(n.Order)
				case broker.TradeEvent:
					a.NotifyTrade(n.Trade)
				}
			}
			a.NotifyCashValue(br.Cash(), value)
			a.Next()
		}
	}

	if out != nil {
		row := writerRow(datas, instances)
		if err := out.Next(row); err != nil {
			slog.Warn("cerebro: csv writer failed to write row", "bar", barIndex, "err", err)
			return fmt.Errorf("cerebro: %w: %v", errs.ErrExternalIO, err)
		}
	}
	return nil
}

// callLifecycle dispatches prenext/nextstart/next for a single
// strategy or indicator at the given 1-based bar index.
func callLifecycle(li interface {
	MinPeriod() int
	PreNext()
	NextStart()
	Next()
}, barIndex int) {
	switch {
	case barIndex < li.MinPeriod():
		li.PreNext()
	case barIndex == li.MinPeriod():
		li.NextStart()
	default:
		li.Next()
	}
}
