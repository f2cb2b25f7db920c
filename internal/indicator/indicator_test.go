package indicator

import (
	"testing"

	"github.com/nullstrategy/backlab/internal/lines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInput struct {
	minp int
	ls   *lines.Lines
}

func (f fakeInput) MinPeriod() int        { return f.minp }
func (f fakeInput) LineSet() *lines.Lines { return f.ls }

func newFakeInput(minp int) fakeInput {
	return fakeInput{minp: minp, ls: lines.New("value")}
}

func TestBase_Recompute_InheritsMaxOfChildren(t *testing.T) {
	a := newFakeInput(3)
	b := newFakeInput(5)
	base := NewBase([]Input{a, b}, 0)
	assert.Equal(t, 5, base.MinPeriod())
}

func TestBase_Recompute_AddsOwnWindow(t *testing.T) {
	a := newFakeInput(1)
	base := NewBase([]Input{a}, 10)
	assert.Equal(t, 10, base.MinPeriod())
}

func TestBase_SetMinPeriod_OverridesAndSticks(t *testing.T) {
	a := newFakeInput(1)
	base := NewBase([]Input{a}, 10)
	base.SetMinPeriod(2)
	assert.Equal(t, 2, base.MinPeriod())

	base.Recompute()
	assert.Equal(t, 2, base.MinPeriod(), "an explicitly fixed minperiod must survive Recompute")
}

func TestBase_NextStart_DefaultsToNoOp(t *testing.T) {
	base := NewBase([]Input{newFakeInput(1)}, 0)
	base.NextStart() // must not panic, must not touch Lines()
	assert.Equal(t, 0, base.Lines().At(0).Size())
}

type stubIndicator struct {
	*Base
	name string
}

func (s *stubIndicator) Next()         {}
func (s *stubIndicator) Once(int, int) {}

func TestSort_OrdersParentsBeforeChildren(t *testing.T) {
	root := &stubIndicator{Base: NewBase(nil, 0), name: "root"}
	child := &stubIndicator{Base: NewBase([]Input{root}, 0), name: "child"}
	grandchild := &stubIndicator{Base: NewBase([]Input{child}, 0), name: "grandchild"}

	sorted, err := Sort([]LineIterator{grandchild, child, root})
	require.NoError(t, err)
	require.Len(t, sorted, 3)

	pos := map[LineIterator]int{}
	for i, n := range sorted {
		pos[n] = i
	}
	assert.Less(t, pos[root], pos[child])
	assert.Less(t, pos[child], pos[grandchild])
}

func TestSort_DetectsCycle(t *testing.T) {
	a := &stubIndicator{Base: NewBase(nil, 0)}
	bInd := &stubIndicator{Base: NewBase([]Input{a}, 0)}
	// Rewire a to depend on b, forming a cycle.
	a.Base = NewBase([]Input{bInd}, 0)

	_, err := Sort([]LineIterator{a, bInd})
	assert.Error(t, err)
}
