package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/olekukonko/tablewriter"
)

// ConsoleWriter prints a run's closing summary — final cash/value and
// the closed-trade ledger — the way the teacher's notify.Console
// prints its own run summaries.
type ConsoleWriter struct {
	out io.Writer
}

// NewConsoleWriter writes to stdout.
func NewConsoleWriter() *ConsoleWriter { return &ConsoleWriter{out: os.Stdout} }

// NewConsoleWriterTo writes to w, for tests.
func NewConsoleWriterTo(w io.Writer) *ConsoleWriter { return &ConsoleWriter{out: w} }

// PrintSummary prints starting/ending cash and value plus an analysis
// table of the name->value pairs every attached analyzer reported.
func (c *ConsoleWriter) PrintSummary(startCash, endCash, endValue float64, analyses map[string]map[string]any) {
	fmt.Fprintf(c.out, "\nStarting cash: %.2f\n", startCash)
	fmt.Fprintf(c.out, "Ending cash:   %.2f\n", endCash)
	fmt.Fprintf(c.out, "Ending value:  %.2f\n", endValue)

	if len(analyses) == 0 {
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Analyzer", "Key", "Value")
	for name, analysis := range analyses {
		for k, v := range analysis {
			table.Append(name, k, fmt.Sprintf("%v", v))
		}
	}
	table.Render()
}

// PrintTrades renders the closed-trade ledger.
func (c *ConsoleWriter) PrintTrades(trades []*broker.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "\nno closed trades")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Data", "Opened", "Closed", "PnL", "Commission")
	for _, t := range trades {
		table.Append(
			t.Data,
			t.Opened.Format("2006-01-02"),
			t.Closed.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.PnL),
			fmt.Sprintf("%.2f", t.Commission),
		)
	}
	table.Render()
}
