package postfix

import "github.com/nic-lang/nicc/lang/arena"

// OptimizeAll runs the constant-folding pass (spec.md §4.G pass 1) over
// every slot currently in the pool, in place. It must run after the whole
// program has been converted to postfix (lang/parser's single pass
// leaves call-argument slots interspersed with their callers in the same
// pool) so that folding one slot never invalidates an index another slot
// or FIP still references: Set rewrites a slot's contents but never its
// index, so every existing reference stays valid.
func OptimizeAll(slots *arena.Pool[Slot], strs *StringPool) {
	for i := 0; i < slots.Len(); i++ {
		slots.Set(i, FoldConstants(slots.At(i), strs))
	}
}
