package arena

import (
	"runtime"

	"github.com/nic-lang/nicc/lang/compiler"
)

// maxPoolSize is a generous sanity cap standing in for the original's
// fixed-size batch allocation limits (spec.md §5 resource policy); real
// programs never approach it, but a runaway generator (or a future bug in
// the parser driving one of these pools) aborts cleanly instead of
// growing without bound.
const maxPoolSize = 1 << 20

// Pool is an append-only, index-addressed collection of T, the building
// block every other compiler table is layered on: statements, postfix
// slots, FIP slots, string constants, and the twelve variable tables all
// store their records in a Pool rather than holding pointers into it, so
// the whole structure can be grown geometrically and torn down as one
// unit (spec.md §4.A, §9 DESIGN NOTES on replacing pointer-based arenas
// with integer indices for reentrancy).
type Pool[T any] struct {
	region *Region
	items  []T
}

// NewPool creates a Pool backed by a named Region of alloc, so its growth
// is reflected in the allocator's peak-usage statistics.
func NewPool[T any](alloc *Allocator, regionName string) *Pool[T] {
	return &Pool[T]{region: alloc.Region(regionName)}
}

// Add appends v to the pool and returns its index.
func (p *Pool[T]) Add(v T) int {
	if len(p.items) >= maxPoolSize {
		compiler.Abort(compiler.ResourceExhausted, "region %q exceeded %d entries", p.region.name, maxPoolSize)
	}
	idx := len(p.items)
	p.items = append(p.items, v)
	_, file, line, _ := runtime.Caller(1)
	p.region.Grow(file, line, 1)
	return idx
}

// At returns the record at idx.
func (p *Pool[T]) At(idx int) T { return p.items[idx] }

// Set overwrites the record at idx, used by in-place rewrites such as the
// postfix optimizer's constant-folding pass and the statement parser's
// v = v ± K increment rewrite.
func (p *Pool[T]) Set(idx int, v T) { p.items[idx] = v }

// Len returns the number of records currently in the pool.
func (p *Pool[T]) Len() int { return len(p.items) }

// All returns the pool's backing slice. Callers must not retain it across
// further Add calls: append may reallocate.
func (p *Pool[T]) All() []T { return p.items }

// Reset empties the pool, releasing its backing array, part of
// FreeAllHoles teardown.
func (p *Pool[T]) Reset() {
	p.items = nil
}
