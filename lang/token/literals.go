package token

// Domain literals are identifiers the tokenizer substitutes to integer
// constants before handing a token stream to the expression parser, so the
// rest of the pipeline only ever sees token.INT. The tables are grouped by
// the peripheral or subsystem they name, per spec.md §4.B and §9.

// DomainLiteral looks up name in every table below, in the order they
// appear in spec.md §9, and reports the substituted integer value.
func DomainLiteral(name string) (int64, bool) {
	if v, ok := formatTags[name]; ok {
		return v, true
	}
	if v, ok := boolLiterals[name]; ok {
		return v, true
	}
	if v, ok := levelLiterals[name]; ok {
		return v, true
	}
	if name == "EOF" {
		// Deliberate asymmetry (spec.md §9 Open Questions): EOF folds to -1
		// unconditionally, irrespective of minus-is-sign scanning mode. Do
		// not "fix" this to match the rest of the negative-literal handling.
		return -1, true
	}
	if v, ok := seekLiterals[name]; ok {
		return v, true
	}
	if v, ok := gpioPorts[name]; ok {
		return v, true
	}
	if v, ok := gpioModes[name]; ok {
		return v, true
	}
	if v, ok := gpioPulls[name]; ok {
		return v, true
	}
	if v, ok := i2cUnits[name]; ok {
		return v, true
	}
	if v, ok := uartUnits[name]; ok {
		return v, true
	}
	if v, ok := mcursesColors[name]; ok {
		return v, true
	}
	if v, ok := mcursesAttrs[name]; ok {
		return v, true
	}
	if v, ok := fontSizes[name]; ok {
		return v, true
	}
	return 0, false
}

// formatTags select the display base an INT literal or print() argument is
// rendered in by the console builtins.
var formatTags = map[string]int64{
	"HEX":  0,
	"DEC":  1,
	"DEC0": 2,
	"BIN":  3,
	"STR":  4,
}

var boolLiterals = map[string]int64{
	"TRUE":  1,
	"FALSE": 0,
}

var levelLiterals = map[string]int64{
	"LOW":  0,
	"HIGH": 1,
}

var seekLiterals = map[string]int64{
	"SEEK_SET": 0,
	"SEEK_CUR": 1,
	"SEEK_END": 2,
}

// gpioPorts maps GPIOA..GPIOI to their bank index.
var gpioPorts = func() map[string]int64 {
	m := make(map[string]int64, 9)
	for i := 0; i < 9; i++ {
		m["GPIO"+string(rune('A'+i))] = int64(i)
	}
	return m
}()

var gpioModes = map[string]int64{
	"INPUT":  0,
	"OUTPUT": 1,
}

var gpioPulls = map[string]int64{
	"NOPULL":     0,
	"PULLUP":     1,
	"PULLDOWN":   2,
	"NOPULLUP":   3,
	"NOPULLDOWN": 4,
	"PUSHPULL":   5,
	"OPENDRAIN":  6,
}

var i2cUnits = map[string]int64{
	"I2C1": 1,
	"I2C2": 2,
	"I2C3": 3,
}

var uartUnits = map[string]int64{
	"UART1": 1,
	"UART2": 2,
	"UART3": 3,
	"UART4": 4,
	"UART5": 5,
	"UART6": 6,
}

// mcursesColors are the foreground/background color constants recognized
// by the mcurses builtin category.
var mcursesColors = map[string]int64{
	"BLACK":   0,
	"RED":     1,
	"GREEN":   2,
	"YELLOW":  3,
	"BLUE":    4,
	"MAGENTA": 5,
	"CYAN":    6,
	"WHITE":   7,
}

// mcursesAttrs are the text attribute constants ORed into a cell's
// attribute byte.
var mcursesAttrs = map[string]int64{
	"A_NORMAL":    0,
	"A_BOLD":      1,
	"A_UNDERLINE": 2,
	"A_BLINK":     4,
	"A_REVERSE":   8,
}

var fontSizes = map[string]int64{
	"FONT_SMALL":  0,
	"FONT_MEDIUM": 1,
	"FONT_LARGE":  2,
}
