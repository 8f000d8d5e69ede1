package postfix

// StringPool is the compiler's global pool of string constants. Entries
// may be deactivated (set to empty) during constant folding rather than
// removed, so every other reference by index stays valid, per spec.md's
// Data Model description of the string constant table.
type StringPool struct {
	values []string
	active []bool
}

// NewStringPool returns an empty string pool.
func NewStringPool() *StringPool {
	return &StringPool{}
}

// Intern adds a new active entry and returns its index. nic does not
// deduplicate string constants (the original doesn't either): two
// identical literals at different call sites get distinct slots so each
// can be folded/deactivated independently.
func (p *StringPool) Intern(s string) int {
	idx := len(p.values)
	p.values = append(p.values, s)
	p.active = append(p.active, true)
	return idx
}

// At returns the string stored at idx, or "" if it has been deactivated.
func (p *StringPool) At(idx int) string {
	if !p.active[idx] {
		return ""
	}
	return p.values[idx]
}

// Deactivate empties the entry at idx, the folding pass's way of
// discarding an operand that got merged into another slot instead of
// being reallocated.
func (p *StringPool) Deactivate(idx int) {
	p.values[idx] = ""
	p.active[idx] = false
}

// Reuse overwrites the entry at idx with a new value, keeping it active.
// Used when folding reuses the first operand's slot for a concatenation
// result instead of allocating a new one.
func (p *StringPool) Reuse(idx int, s string) {
	p.values[idx] = s
	p.active[idx] = true
}

// Len returns the number of slots ever allocated (including deactivated
// ones), for object-file emission.
func (p *StringPool) Len() int { return len(p.values) }

// IsActive reports whether the entry at idx is still active.
func (p *StringPool) IsActive(idx int) bool { return p.active[idx] }
