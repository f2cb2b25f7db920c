package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/nullstrategy/backlab/internal/series"
)

// CSV reads bars from a comma-delimited file with a header row:
// datetime,open,high,low,close,volume,openinterest. datetime must
// parse with DateLayout, which NewCSV sets to time.RFC3339.
type CSV struct {
	Path       string
	DateLayout string

	f *os.File
	r *csv.Reader
}

// NewCSV creates a CSV source reading path.
func NewCSV(path string) *CSV {
	return &CSV{Path: path, DateLayout: time.RFC3339}
}

// Start implements series.Source.
func (c *CSV) Start() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("feed.CSV: open %q: %w", c.Path, err)
	}
	c.f = f
	c.r = csv.NewReader(f)
	// Skip header.
	if _, err := c.r.Read(); err != nil {
		f.Close()
		return fmt.Errorf("feed.CSV: read header %q: %w", c.Path, err)
	}
	return nil
}

// Stop implements series.Source.
func (c *CSV) Stop() error {
	if c.f == nil {
		return nil
	}
	return c.f.Close()
}

// NextBar implements series.Source. Every call yields a new, sealed row.
func (c *CSV) NextBar() (series.Bar, bool, bool, error) {
	rec, err := c.r.Read()
	if err == io.EOF {
		return series.Bar{}, false, false, nil
	}
	if err != nil {
		return series.Bar{}, false, false, fmt.Errorf("feed.CSV: read %q: %w", c.Path, err)
	}
	if len(rec) < 7 {
		return series.Bar{}, false, false, fmt.Errorf("feed.CSV: %q: expected 7 columns, got %d", c.Path, len(rec))
	}
	dt, err := time.Parse(c.DateLayout, rec[0])
	if err != nil {
		return series.Bar{}, false, false, fmt.Errorf("feed.CSV: %q: parse datetime %q: %w", c.Path, rec[0], err)
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return series.Bar{}, false, false, fmt.Errorf("feed.CSV: %q: parse column %d: %w", c.Path, i+1, err)
		}
		vals[i] = v
	}
	return series.Bar{
		Datetime:     dt,
		Open:         vals[0],
		High:         vals[1],
		Low:          vals[2],
		Close:        vals[3],
		Volume:       vals[4],
		OpenInterest: vals[5],
	}, true, true, nil
}
