package vm

import "fmt"

// Var is a runtime value: either a number (possibly float-tagged) or
// a string. There is no further subtyping — PhoneBasic has exactly
// two variable kinds.
type Var struct {
	IsString bool
	Num      float64
	IsFloat  bool // meaningless when IsString is true
	Str      string
}

// Number builds an integer-valued Var.
func Number(n float64) Var {
	return Var{Num: n}
}

// Float builds a Var explicitly tagged as float, so later arithmetic
// and printing treat it as one even if its value happens to be a
// whole number.
func Float(n float64) Var {
	return Var{Num: n, IsFloat: true}
}

// String builds a string-valued Var.
func String(s string) Var {
	return Var{IsString: true, Str: s}
}

// String renders v in decimal, the format every non-display caller
// wants (arithmetic results, test assertions, RETRV, and so on).
func (v Var) String() string {
	return v.Format("dec")
}

// Format renders v the way the configured display number format asks
// for. Strings and floats are unaffected; "hex" only changes how
// whole numbers are printed.
func (v Var) Format(numberFormat string) string {
	if v.IsString {
		return v.Str
	}
	if v.IsFloat {
		return fmt.Sprintf("%g", v.Num)
	}
	if numberFormat == "hex" {
		return fmt.Sprintf("%#x", int64(v.Num))
	}
	return fmt.Sprintf("%d", int64(v.Num))
}
