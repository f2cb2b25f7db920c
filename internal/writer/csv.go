// Package writer implements the §4.9 run recorders: a CSV dump of a
// timeline's lines, and a console summary table of the finished run,
// grounded on the teacher's own notify.Console/tablewriter pairing.
package writer

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

const separator = "==============================================================================="

// CSVWriter dumps one row per bar of a timeline's lines to a file, per
// spec §4.9: a 79-char `=` separator framing the table, a header row
// of line aliases, then one data row per Next call.
type CSVWriter struct {
	Path      string
	FilterNaN bool // true = write empty field for NaN, false = literal "nan"
	Round     int  // -1 = full precision, otherwise decimal places

	f *os.File
	w *csv.Writer
}

// NewCSVWriter builds a CSVWriter at full precision, with NaN written
// as "nan".
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{Path: path, Round: -1}
}

// Start opens path and writes the opening separator and header row.
func (w *CSVWriter) Start(headers []string) error {
	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("writer.CSVWriter: open %q: %w", w.Path, err)
	}
	w.f = f
	w.w = csv.NewWriter(f)

	if _, err := fmt.Fprintln(f, separator); err != nil {
		return fmt.Errorf("writer.CSVWriter: write separator: %w", err)
	}
	if err := w.w.Write(headers); err != nil {
		return fmt.Errorf("writer.CSVWriter: write header: %w", err)
	}
	return nil
}

// Next writes one row of values, in header order.
func (w *CSVWriter) Next(values []float64) error {
	rec := make([]string, len(values))
	for i, v := range values {
		rec[i] = w.format(v)
	}
	if err := w.w.Write(rec); err != nil {
		return fmt.Errorf("writer.CSVWriter: write row: %w", err)
	}
	return nil
}

func (w *CSVWriter) format(v float64) string {
	if math.IsNaN(v) {
		if w.FilterNaN {
			return ""
		}
		return "nan"
	}
	if w.Round >= 0 {
		return strconv.FormatFloat(v, 'f', w.Round, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Stop flushes, writes the closing separator, and closes the file.
func (w *CSVWriter) Stop() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("writer.CSVWriter: flush: %w", err)
	}
	if _, err := fmt.Fprintln(w.f, separator); err != nil {
		return fmt.Errorf("writer.CSVWriter: write closing separator: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("writer.CSVWriter: close: %w", err)
	}
	return nil
}
