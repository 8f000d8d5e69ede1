// Package builtin holds the declarative catalog of built-in functions nic
// programs may call without a user definition: console, string, math,
// gpio, uart, i2c, file, tft, flash, and mcurses categories, per spec.md
// component B/D and §9 DESIGN NOTES. The catalog is an external
// collaborator in the original system (spec.md §1 Non-goals); this table
// is a representative subset, not a claim of completeness, consumed by
// the expression parser (arity checks and the catalog index a builtin
// call's FIP carries), per SPEC_FULL.md §4.
package builtin

import "github.com/dolthub/swiss"

// ReturnType mirrors funtab.ReturnType without importing it, since the
// catalog must not depend on the table it feeds.
type ReturnType uint8

const (
	Void ReturnType = iota
	Int
	Byte
	String
)

// Category groups builtins for documentation and -vv dumps.
type Category string

const (
	Console Category = "console"
	Str     Category = "string"
	Math    Category = "math"
	GPIO    Category = "gpio"
	UART    Category = "uart"
	I2C     Category = "i2c"
	File    Category = "file"
	TFT     Category = "tft"
	Flash   Category = "flash"
	MCurses Category = "mcurses"
)

// Entry describes one builtin's calling convention.
type Entry struct {
	Name       string
	Category   Category
	MinArgs    int
	MaxArgs    int // -1 means unbounded (e.g. printf-style)
	ReturnType ReturnType
}

// catalog is the single source of truth for every builtin; the expression
// parser reads it through LookupIndex rather than holding its own copy.
var catalog = []Entry{
	// console
	{Name: "print", Category: Console, MinArgs: 1, MaxArgs: -1, ReturnType: Void},
	{Name: "println", Category: Console, MinArgs: 0, MaxArgs: -1, ReturnType: Void},
	{Name: "input", Category: Console, MinArgs: 0, MaxArgs: 1, ReturnType: Int},
	{Name: "clear_screen", Category: Console, MinArgs: 0, MaxArgs: 0, ReturnType: Void},
	{Name: "set_cursor", Category: Console, MinArgs: 2, MaxArgs: 2, ReturnType: Void},

	// string
	{Name: "strlen", Category: Str, MinArgs: 1, MaxArgs: 1, ReturnType: Int},
	{Name: "strcat", Category: Str, MinArgs: 2, MaxArgs: 2, ReturnType: String},
	{Name: "strcmp", Category: Str, MinArgs: 2, MaxArgs: 2, ReturnType: Int},
	{Name: "substr", Category: Str, MinArgs: 3, MaxArgs: 3, ReturnType: String},
	{Name: "strtoint", Category: Str, MinArgs: 1, MaxArgs: 1, ReturnType: Int},
	{Name: "inttostr", Category: Str, MinArgs: 1, MaxArgs: 2, ReturnType: String},
	{Name: "strfind", Category: Str, MinArgs: 2, MaxArgs: 2, ReturnType: Int},
	{Name: "strupper", Category: Str, MinArgs: 1, MaxArgs: 1, ReturnType: String},
	{Name: "strlower", Category: Str, MinArgs: 1, MaxArgs: 1, ReturnType: String},

	// math
	{Name: "abs", Category: Math, MinArgs: 1, MaxArgs: 1, ReturnType: Int},
	{Name: "min", Category: Math, MinArgs: 2, MaxArgs: 2, ReturnType: Int},
	{Name: "max", Category: Math, MinArgs: 2, MaxArgs: 2, ReturnType: Int},
	{Name: "sqrt", Category: Math, MinArgs: 1, MaxArgs: 1, ReturnType: Int},
	{Name: "rand", Category: Math, MinArgs: 0, MaxArgs: 1, ReturnType: Int},
	{Name: "pow", Category: Math, MinArgs: 2, MaxArgs: 2, ReturnType: Int},

	// gpio
	{Name: "gpio_init", Category: GPIO, MinArgs: 3, MaxArgs: 4, ReturnType: Void},
	{Name: "gpio_write", Category: GPIO, MinArgs: 2, MaxArgs: 2, ReturnType: Void},
	{Name: "gpio_read", Category: GPIO, MinArgs: 1, MaxArgs: 1, ReturnType: Int},
	{Name: "gpio_toggle", Category: GPIO, MinArgs: 1, MaxArgs: 1, ReturnType: Void},
	{Name: "delay_ms", Category: GPIO, MinArgs: 1, MaxArgs: 1, ReturnType: Void},
	{Name: "delay_us", Category: GPIO, MinArgs: 1, MaxArgs: 1, ReturnType: Void},

	// uart
	{Name: "uart_init", Category: UART, MinArgs: 2, MaxArgs: 2, ReturnType: Void},
	{Name: "uart_write", Category: UART, MinArgs: 2, MaxArgs: 2, ReturnType: Void},
	{Name: "uart_read", Category: UART, MinArgs: 1, MaxArgs: 1, ReturnType: Int},
	{Name: "uart_available", Category: UART, MinArgs: 1, MaxArgs: 1, ReturnType: Int},

	// i2c
	{Name: "i2c_init", Category: I2C, MinArgs: 2, MaxArgs: 2, ReturnType: Void},
	{Name: "i2c_write", Category: I2C, MinArgs: 3, MaxArgs: 3, ReturnType: Int},
	{Name: "i2c_read", Category: I2C, MinArgs: 3, MaxArgs: 3, ReturnType: Int},

	// file
	{Name: "file_open", Category: File, MinArgs: 2, MaxArgs: 2, ReturnType: Int},
	{Name: "file_close", Category: File, MinArgs: 1, MaxArgs: 1, ReturnType: Void},
	{Name: "file_read", Category: File, MinArgs: 2, MaxArgs: 2, ReturnType: Int},
	{Name: "file_write", Category: File, MinArgs: 2, MaxArgs: 2, ReturnType: Int},
	{Name: "file_seek", Category: File, MinArgs: 3, MaxArgs: 3, ReturnType: Int},

	// tft
	{Name: "tft_init", Category: TFT, MinArgs: 0, MaxArgs: 0, ReturnType: Void},
	{Name: "tft_pixel", Category: TFT, MinArgs: 3, MaxArgs: 3, ReturnType: Void},
	{Name: "tft_line", Category: TFT, MinArgs: 5, MaxArgs: 5, ReturnType: Void},
	{Name: "tft_rect", Category: TFT, MinArgs: 5, MaxArgs: 5, ReturnType: Void},
	{Name: "tft_text", Category: TFT, MinArgs: 4, MaxArgs: 5, ReturnType: Void},

	// flash
	{Name: "flash_read", Category: Flash, MinArgs: 3, MaxArgs: 3, ReturnType: Int},
	{Name: "flash_write", Category: Flash, MinArgs: 3, MaxArgs: 3, ReturnType: Int},
	{Name: "flash_erase", Category: Flash, MinArgs: 1, MaxArgs: 1, ReturnType: Void},

	// mcurses
	{Name: "mc_init", Category: MCurses, MinArgs: 0, MaxArgs: 0, ReturnType: Void},
	{Name: "mc_move", Category: MCurses, MinArgs: 2, MaxArgs: 2, ReturnType: Void},
	{Name: "mc_attr", Category: MCurses, MinArgs: 1, MaxArgs: 1, ReturnType: Void},
	{Name: "mc_color", Category: MCurses, MinArgs: 2, MaxArgs: 2, ReturnType: Void},
	{Name: "mc_refresh", Category: MCurses, MinArgs: 0, MaxArgs: 0, ReturnType: Void},
}

var byName = func() *swiss.Map[string, int] {
	m := swiss.NewMap[string, int](uint32(len(catalog)))
	for i, e := range catalog {
		m.Put(e.Name, i)
	}
	return m
}()

// Lookup finds a builtin by exact name.
func Lookup(name string) (Entry, bool) {
	idx, ok := byName.Get(name)
	if !ok {
		return Entry{}, false
	}
	return catalog[idx], true
}

// LookupIndex finds a builtin by exact name and also returns its catalog
// index, the value a FIP slot's FuncIdx carries for a BuiltinFunc call so
// the object writer (and, downstream, the interpreter) can identify which
// builtin to dispatch rather than just that one was named.
func LookupIndex(name string) (Entry, int, bool) {
	idx, ok := byName.Get(name)
	if !ok {
		return Entry{}, 0, false
	}
	return catalog[idx], idx, true
}

// At returns the catalog entry at idx, the index LookupIndex reports and a
// builtin call's FIP carries as FuncIdx.
func At(idx int) Entry { return catalog[idx] }

// All returns every catalog entry, in table order, for -vv dumps and
// tests.
func All() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// CheckArity reports whether argc is within [MinArgs, MaxArgs] for e.
func (e Entry) CheckArity(argc int) bool {
	if argc < e.MinArgs {
		return false
	}
	if e.MaxArgs < 0 {
		return true
	}
	return argc <= e.MaxArgs
}
