package arena_test

import (
	"testing"

	"github.com/nic-lang/nicc/lang/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAddAt(t *testing.T) {
	a := arena.New()
	p := arena.NewPool[int](a, "ints")

	i0 := p.Add(10)
	i1 := p.Add(20)
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, 10, p.At(i0))
	assert.Equal(t, 20, p.At(i1))
	assert.Equal(t, 2, p.Len())
}

func TestPoolSet(t *testing.T) {
	a := arena.New()
	p := arena.NewPool[string](a, "strs")
	idx := p.Add("before")
	p.Set(idx, "after")
	assert.Equal(t, "after", p.At(idx))
}

func TestRegionPeakTracksHighWaterMark(t *testing.T) {
	a := arena.New()
	p := arena.NewPool[int](a, "ints")
	for i := 0; i < 5; i++ {
		p.Add(i)
	}
	p.Reset()

	stats := a.Stats()
	assert.Equal(t, 5, stats.RegionPeaks["ints"])
	assert.Equal(t, 5, stats.PeakSlots)
}

func TestFreeAllHolesResetsRegions(t *testing.T) {
	a := arena.New()
	p := arena.NewPool[int](a, "ints")
	p.Add(1)
	p.Add(2)
	require.Equal(t, 2, p.Len())

	a.FreeAllHoles()
	// FreeAllHoles resets the region's accounting; the pool itself is
	// reset separately by its owner (component-level reset), mirroring
	// the original's two-step reset_globals + alloc_free_holes sequence.
	p.Reset()
	assert.Equal(t, 0, p.Len())

	r := a.Region("ints")
	assert.Equal(t, 0, r.Size())
}

func TestGrowPanicsOnNegativeDelta(t *testing.T) {
	a := arena.New()
	r := a.Region("x")
	assert.Panics(t, func() { r.Grow("f.go", 1, -1) })
}
