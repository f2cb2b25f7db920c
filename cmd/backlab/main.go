// Command backlab runs the SMA-crossover reference strategy against a
// CSV bar feed and prints the finished run's summary and trade ledger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nullstrategy/backlab/config"
	"github.com/nullstrategy/backlab/internal/analyzer"
	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/nullstrategy/backlab/internal/cerebro"
	"github.com/nullstrategy/backlab/internal/feed"
	"github.com/nullstrategy/backlab/internal/series"
	"github.com/nullstrategy/backlab/internal/store"
	"github.com/nullstrategy/backlab/internal/strategy"
	"github.com/nullstrategy/backlab/internal/writer"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "config/config.yaml", "path to config file")
	csvPath := pflag.String("csv", "", "bar CSV file (overrides config)")
	smaPeriod := pflag.Int("sma-period", 20, "SMA window for the reference strategy")
	size := pflag.Float64("size", 10, "order size for the reference strategy")
	verbose := pflag.Bool("verbose", false, "set log level to debug")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if *csvPath != "" {
		cfg.Data.CSVPath = *csvPath
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	setupLogger(cfg.Log)

	slog.Info("backlab starting",
		"config", *configPath,
		"csv", cfg.Data.CSVPath,
		"preload", cfg.Cerebro.Preload,
		"run_once", cfg.Cerebro.RunOnce,
	)

	db, err := store.Open(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open store", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng := buildCerebro(cfg, *smaPeriod, *size)
	instances, err := eng.Run(ctx)
	if err != nil {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	console := writer.NewConsoleWriter()
	for _, inst := range instances {
		printAndPersist(ctx, db, cfg, inst, console)
	}

	slog.Info("backlab finished cleanly")
}

func buildCerebro(cfg *config.Config, smaPeriod int, size float64) *cerebro.Cerebro {
	tf := parseTimeFrame(cfg.Data.TimeFrame)

	dataFactory := func() []*series.DataSeries {
		src := feed.NewCSV(cfg.Data.CSVPath)
		d := series.New(src, series.Meta{
			Name:        "primary",
			TimeFrame:   tf,
			Compression: cfg.Data.Compression,
		})
		return []*series.DataSeries{d}
	}

	brokerFactory := func() *broker.SimulatedBroker {
		b := broker.NewSimulatedBroker(cfg.Broker.Cash)
		if cfg.Broker.FuturesMode {
			b.SetFuturesMode(cfg.Broker.Margin, cfg.Broker.Multiplier)
		}
		if cfg.Broker.CommissionRate > 0 {
			b.Commission = broker.PerShare{Rate: cfg.Broker.CommissionRate}
		}
		return b
	}

	strategyFactory := func(datas []*series.DataSeries) strategy.Strategy {
		closeLine := datas[0].Line(series.LineClose)
		return strategy.NewSMACross(datas[0], closeLine, smaPeriod, size)
	}

	return &cerebro.Cerebro{
		DataFactory:       dataFactory,
		BrokerFactory:     brokerFactory,
		StrategyFactories: []func(datas []*series.DataSeries) strategy.Strategy{strategyFactory},
		Config: cerebro.Config{
			Preload:     cfg.Cerebro.Preload,
			RunOnce:     cfg.Cerebro.RunOnce,
			Live:        cfg.Cerebro.Live,
			ExactBars:   cfg.Cerebro.ExactBars,
			CheatOnOpen: cfg.Cerebro.CheatOnOpen,
			StdStats:    cfg.Cerebro.StdStats,
			WriterCSV:   cfg.Cerebro.WriterCSV,
		},
	}
}

func printAndPersist(ctx context.Context, db *store.SQLiteStore, cfg *config.Config, inst *cerebro.Instance, console *writer.ConsoleWriter) {
	analyses := make(map[string]map[string]any)
	storeAnalysis := make(map[string]any)
	for i, a := range inst.Analyzers {
		name := fmt.Sprintf("analyzer%d", i)
		result := a.GetAnalysis()
		analyses[name] = result
		storeAnalysis[name] = result
	}

	endCash := inst.Broker.Cash()
	endValue := inst.Broker.Value(inst.FinalMarks)

	console.PrintSummary(cfg.Broker.Cash, endCash, endValue, analyses)
	console.PrintTrades(inst.Broker.TradeHistory())

	storeTrades := make([]store.Trade, 0, len(inst.Broker.TradeHistory()))
	for _, t := range inst.Broker.TradeHistory() {
		storeTrades = append(storeTrades, store.Trade{
			Data:       t.Data,
			Opened:     t.Opened,
			Closed:     t.Closed,
			PnL:        t.PnL,
			Commission: t.Commission,
		})
	}

	runID, err := db.SaveRun(ctx, store.RunResult{
		Strategy:  "SMACross",
		StartedAt: time.Now().UTC(),
		StartCash: cfg.Broker.Cash,
		EndCash:   endCash,
		EndValue:  endValue,
		Analysis:  storeAnalysis,
		Trades:    storeTrades,
	})
	if err != nil {
		slog.Error("failed to persist run", "err", err)
		return
	}
	slog.Info("run persisted", "run_id", runID)
}

func parseTimeFrame(s string) series.TimeFrame {
	switch s {
	case "seconds":
		return series.Seconds
	case "minutes":
		return series.Minutes
	case "hours":
		return series.Hours
	case "weeks":
		return series.Weeks
	case "months":
		return series.Months
	case "years":
		return series.Years
	default:
		return series.Days
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
