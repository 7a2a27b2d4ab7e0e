package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golden/pkg/bytecode"
)

type ValueKind int

const (
	KindUnbound ValueKind = iota
	KindNumber
	KindText
	KindArrayRef
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindArrayRef:
		return "array"
	default:
		return "unbound"
	}
}

// Value is the contents of a global variable. Scalars hold a number or a
// text; array variables hold the id of their entry in the array table, or
// nothing until an array has been bound to them.
type Value struct {
	Kind  ValueKind
	Num   float64
	Text  string
	Array int
}

// String renders the value as a string.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindText:
		return v.Text
	case KindArrayRef:
		return fmt.Sprintf("array#%d", v.Array)
	default:
		return "<unbound>"
	}
}

func newNumber(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

func newText(s string) Value {
	return Value{Kind: KindText, Text: s}
}

func newArrayRef(id int) Value {
	return Value{Kind: KindArrayRef, Array: id}
}

// Variable is the runtime view of a declared global.
type Variable struct {
	Name    string
	Kind    bytecode.VarKind
	Element bytecode.ElementKind
	Value   Value
}

// formatNumber prints integral values without a fractional part and
// everything else with six decimals.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 9e18 {
		return strconv.FormatInt(int64(v), 10)
	}

	return strconv.FormatFloat(v, 'f', 6, 64)
}

// parseNumber converts the longest numeric prefix of s, ignoring leading
// whitespace. Text without a numeric prefix is 0.
func parseNumber(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	n := numericPrefix(s)
	if n == 0 {
		return 0
	}

	f, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return 0
	}

	return f
}

// numericPrefix returns the length of the decimal number at the start of
// s: sign, digits with an optional point, optional exponent. inf, infinity
// and nan are accepted in any case.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	for _, word := range []string{"infinity", "inf", "nan"} {
		if len(s)-i >= len(word) && strings.EqualFold(s[i:i+len(word)], word) {
			return i + len(word)
		}
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}

	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
