// Package arena implements the compiler's allocator-accounting layer:
// every pool of compile-time objects (symbols, statements, postfix slots,
// string constants) is obtained through this thin layer rather than raw
// append calls, so a single teardown sweep can release everything after a
// fault and peak-usage statistics are always available, per spec.md
// component A.
//
// Go's garbage collector makes manual free/leak-detection unnecessary, so
// this package keeps the part of component A that still matters in a
// garbage-collected host: slot accounting (peak slots, peak span) and the
// free-all-holes teardown sweep required for reentrancy (spec.md §5).
package arena

import "fmt"

// Region tracks one named pool of fixed-size records: its current size,
// its high-water mark, and the call sites that grew it, mirroring the
// (file, line, address, size) record the original allocator kept per
// region.
type Region struct {
	name      string
	size      int
	peak      int
	grows     []growth
	allocator *Allocator
}

type growth struct {
	file string
	line int
	size int
}

// Allocator is the top-level accounting object for one compilation. It is
// created fresh by the driver for every invocation (component H's entry
// point) and discarded afterwards: no package-level mutable state survives
// between compiler invocations, satisfying the reentrancy requirement in
// spec.md §5.
type Allocator struct {
	regions  map[string]*Region
	peakSpan int
}

// New returns an empty Allocator, ready to track regions for one
// compilation.
func New() *Allocator {
	return &Allocator{regions: make(map[string]*Region)}
}

// Region returns the named region, creating it on first use.
func (a *Allocator) Region(name string) *Region {
	if r, ok := a.regions[name]; ok {
		return r
	}
	r := &Region{name: name, allocator: a}
	a.regions[name] = r
	return r
}

// Grow records that region r grew by delta slots, attributing the growth
// to file/line (the caller's source location, typically filled in with
// runtime.Caller by the pool wrapper in this package). It panics if delta
// is negative: regions only shrink via Reset.
func (r *Region) Grow(file string, line, delta int) {
	if delta < 0 {
		panic(fmt.Sprintf("arena: region %q grew by negative delta %d", r.name, delta))
	}
	r.size += delta
	if r.size > r.peak {
		r.peak = r.size
	}
	r.grows = append(r.grows, growth{file: file, line: line, size: delta})
	span := r.allocator.totalSize()
	if span > r.allocator.peakSpan {
		r.allocator.peakSpan = span
	}
}

// Size returns the region's current slot count.
func (r *Region) Size() int { return r.size }

// Peak returns the region's high-water slot count.
func (r *Region) Peak() int { return r.peak }

func (a *Allocator) totalSize() int {
	total := 0
	for _, r := range a.regions {
		total += r.size
	}
	return total
}

// Stats summarizes the allocator's usage across all regions. The "-vv"
// verbose flag does not print it; it prints pool lengths instead.
type Stats struct {
	PeakSlots    int
	PeakSpan     int
	RegionPeaks  map[string]int
}

// Stats computes the current statistics snapshot.
func (a *Allocator) Stats() Stats {
	s := Stats{PeakSpan: a.peakSpan, RegionPeaks: make(map[string]int, len(a.regions))}
	for name, r := range a.regions {
		s.PeakSlots += r.peak
		s.RegionPeaks[name] = r.peak
	}
	return s
}

// FreeAllHoles is the teardown sweep run unconditionally when a
// compilation ends, whether by success or by an AbortError: it resets
// every region to empty so the Allocator (and, transitively, every pool
// built on top of it) can be safely reused or discarded. This is the
// Go-idiomatic replacement for the original's forced-cleanup routine of
// the same name, preserved under this name because it is referenced
// directly by spec.md §4.A and §9.
func (a *Allocator) FreeAllHoles() {
	for _, r := range a.regions {
		r.size = 0
		r.grows = nil
	}
}
