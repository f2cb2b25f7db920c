// Package lines implements the Lines collection: an ordered, named
// list of line.Buffer values addressable by index or by alias, shared
// by reference between a producer and its downstream consumers.
package lines

import (
	"math"

	"github.com/nullstrategy/backlab/internal/line"
)

// Lines is a fixed-shape, named tuple of line.Buffer. The alias table
// is built once at construction time, never through reflection, per
// the static-container re-architecture called for when porting away
// from dynamic attribute lookup.
type Lines struct {
	bufs    []*line.Buffer
	aliases map[string]int
}

// New builds a Lines collection with the given aliases, in order. Each
// alias gets its own streaming line.Buffer.
func New(aliases ...string) *Lines {
	l := &Lines{
		bufs:    make([]*line.Buffer, len(aliases)),
		aliases: make(map[string]int, len(aliases)),
	}
	for i, a := range aliases {
		l.bufs[i] = line.New()
		l.aliases[a] = i
	}
	return l
}

// Len returns the number of lines in the collection.
func (l *Lines) Len() int { return len(l.bufs) }

// At returns the i-th line buffer, or nil if i is out of range.
func (l *Lines) At(i int) *line.Buffer {
	if i < 0 || i >= len(l.bufs) {
		return nil
	}
	return l.bufs[i]
}

// Index returns the buffer index for an alias and whether it exists.
func (l *Lines) Index(alias string) (int, bool) {
	i, ok := l.aliases[alias]
	return i, ok
}

// Line returns the buffer registered under alias, or nil if absent.
func (l *Lines) Line(alias string) *line.Buffer {
	i, ok := l.aliases[alias]
	if !ok {
		return nil
	}
	return l.bufs[i]
}

// Aliases returns the alias names in declaration order.
func (l *Lines) Aliases() []string {
	out := make([]string, len(l.bufs))
	for a, i := range l.aliases {
		out[i] = a
	}
	return out
}

// Home resets the cursor of every line to its first retained index.
func (l *Lines) Home() {
	for _, b := range l.bufs {
		b.Home()
	}
}

// Forward advances the cursor of every line by n.
func (l *Lines) Forward(n int) {
	for _, b := range l.bufs {
		b.Forward(n)
	}
}

// Prealloc appends n NaN placeholders to every line, so a vectorized
// Once() can address the full index range with SetAbs before it has
// computed anything.
func (l *Lines) Prealloc(n int) {
	for _, b := range l.bufs {
		for i := 0; i < n; i++ {
			b.Append(math.NaN())
		}
	}
}

// AppendAll appends one value per line, in alias declaration order.
// Used by producers that write a full row per tick (e.g. DataSeries).
func (l *Lines) AppendAll(values ...float64) {
	for i, v := range values {
		if i >= len(l.bufs) {
			break
		}
		l.bufs[i].Append(v)
	}
}
