// Package line implements LineBuffer, the columnar storage primitive
// every other component in backlab builds on: a sequence of doubles
// addressed through a moving cursor with time-relative indexing.
package line

import "math"

// Capacity controls how much history a Buffer retains. Unbounded keeps
// every value ever appended; Ring(n) keeps only the last n. The engine
// itself never sets a Ring capacity: cerebro.Config.ExactBars is
// carried in the configuration but does not change any buffer's
// retention.
type Capacity int

const (
	// Unbounded retains the full run history.
	Unbounded Capacity = 0
)

// Ring returns a capacity that retains only the last n values.
func Ring(n int) Capacity {
	if n <= 0 {
		return Unbounded
	}
	return Capacity(n)
}

// Mode selects a Buffer's storage discipline.
type Mode int

const (
	// ModeStreaming is append-only: the cursor always sits at the last
	// written index (size-1). Used by indicators implementing Next().
	ModeStreaming Mode = iota
	// ModeVectorized is preloaded in one pass, then the cursor is
	// advanced with Forward without further appends. Used by
	// indicators implementing Once(start, end).
	ModeVectorized
)

// Buffer is a mutable sequence of float64 with a cursor. Index 0 is the
// value at the cursor; negative ago looks backward, positive ago looks
// forward (legal in ModeVectorized once the values exist).
type Buffer struct {
	data     []float64
	cursor   int // absolute index the buffer currently points at
	mode     Mode
	capacity Capacity
	dropped  int // count of values evicted from the front under Ring capacity
}

// New creates an empty streaming Buffer.
func New() *Buffer {
	return &Buffer{cursor: -1, mode: ModeStreaming}
}

// NewVectorized creates a Buffer preallocated for n values, cursor
// parked before the first index until Home is called.
func NewVectorized(n int) *Buffer {
	return &Buffer{data: make([]float64, n), cursor: -1, mode: ModeVectorized}
}

// WithCapacity sets the retention policy. Call it before any values
// are appended; if called later, it takes effect from the next Append.
func (b *Buffer) WithCapacity(c Capacity) *Buffer {
	b.capacity = c
	return b
}

// Mode reports the buffer's storage discipline.
func (b *Buffer) Mode() Mode { return b.mode }

// Append stores v at the next slot and advances the cursor by one.
func (b *Buffer) Append(v float64) {
	b.data = append(b.data, v)
	b.cursor = len(b.data) - 1
	b.evictIfNeeded()
}

// Set overwrites the value at offset ago relative to the cursor. It is
// a no-op if the absolute index falls outside the stored range.
func (b *Buffer) Set(ago int, v float64) {
	idx := b.absolute(ago)
	if idx < 0 || idx >= len(b.data) {
		return
	}
	b.data[idx] = v
}

// Get returns the value at offset ago relative to the cursor, or NaN
// if the absolute index has never been written or has been evicted.
func (b *Buffer) Get(ago int) float64 {
	idx := b.absolute(ago)
	if idx < 0 || idx >= len(b.data) {
		return math.NaN()
	}
	return b.data[idx]
}

// GetAbs returns the value at absolute storage index idx, independent
// of the cursor. Vectorized Once() implementations use this to read
// and write a preloaded buffer by engine bar index without reasoning
// about where the cursor currently sits.
func (b *Buffer) GetAbs(idx int) float64 {
	if idx < 0 || idx >= len(b.data) {
		return math.NaN()
	}
	return b.data[idx]
}

// SetAbs overwrites the value at absolute storage index idx. A no-op
// if idx falls outside the stored range.
func (b *Buffer) SetAbs(idx int, v float64) {
	if idx < 0 || idx >= len(b.data) {
		return
	}
	b.data[idx] = v
}

// Size returns the count of values currently retained.
func (b *Buffer) Size() int { return len(b.data) }

// BufLen returns the total reserved length, which can exceed Size in
// vectorized mode when preallocated ahead of the fill pass.
func (b *Buffer) BufLen() int { return cap(b.data) }

// Len returns the absolute index one past the highest index ever
// written, counting values evicted under a Ring policy. Indicators use
// this (not Size) to reason about minperiod against the engine's bar
// index, since a Ring buffer's Size alone would undercount history.
func (b *Buffer) Len() int { return b.dropped + len(b.data) }

// Home resets the cursor to the first stored index (0 in absolute
// terms, or the oldest retained index under a Ring policy).
func (b *Buffer) Home() {
	if len(b.data) == 0 {
		b.cursor = -1
		return
	}
	b.cursor = 0
}

// Forward advances the cursor by n without appending. Used by the
// vectorized execution path once Once() has filled the buffer.
func (b *Buffer) Forward(n int) {
	b.cursor += n
	if b.cursor >= len(b.data) {
		b.cursor = len(b.data) - 1
	}
}

// Cursor returns the buffer's current absolute storage index (not the
// engine-wide bar index; see Len for history accounting under Ring).
func (b *Buffer) Cursor() int { return b.cursor }

// absolute converts a relative ago offset into a storage index.
func (b *Buffer) absolute(ago int) int {
	if b.cursor < 0 {
		return -1
	}
	return b.cursor + ago
}

func (b *Buffer) evictIfNeeded() {
	if b.capacity == Unbounded {
		return
	}
	max := int(b.capacity)
	if len(b.data) <= max {
		return
	}
	drop := len(b.data) - max
	b.data = b.data[drop:]
	b.cursor -= drop
	b.dropped += drop
}
