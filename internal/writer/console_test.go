package writer

import (
	"bytes"
	"testing"
	"time"

	"github.com/nullstrategy/backlab/internal/broker"
	"github.com/stretchr/testify/assert"
)

func TestConsoleWriter_PrintSummary_ReportsCashAndValue(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriterTo(&buf)

	c.PrintSummary(100000, 105000, 106500, nil)

	out := buf.String()
	assert.Contains(t, out, "Starting cash: 100000.00")
	assert.Contains(t, out, "Ending cash:   105000.00")
	assert.Contains(t, out, "Ending value:  106500.00")
}

func TestConsoleWriter_PrintSummary_RendersAnalysisTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriterTo(&buf)

	c.PrintSummary(100000, 105000, 106500, map[string]map[string]any{
		"sqn": {"sqn": 1.23, "trades": 4},
	})

	out := buf.String()
	assert.Contains(t, out, "sqn")
	assert.Contains(t, out, "trades")
}

func TestConsoleWriter_PrintTrades_EmptyLedgerReportsNone(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriterTo(&buf)

	c.PrintTrades(nil)

	assert.Contains(t, buf.String(), "no closed trades")
}

func TestConsoleWriter_PrintTrades_RendersEachTrade(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriterTo(&buf)

	trades := []*broker.Trade{
		{
			Data:       "primary",
			Opened:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Closed:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			PnL:        150.25,
			Commission: 1.5,
		},
	}
	c.PrintTrades(trades)

	out := buf.String()
	assert.Contains(t, out, "primary")
	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "2024-01-10")
	assert.Contains(t, out, "150.25")
}
