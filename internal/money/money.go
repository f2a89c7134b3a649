// Package money handles amount normalization, display formatting and the
// per-currency transfer policy table.
package money

import (
	"math"
	"strconv"
	"strings"
)

// Normalize reduces a user-entered amount to digits and at most one decimal
// point. Every other rune is stripped; when several decimal points appear,
// only the first survives and the remaining digits are concatenated.
// Normalize is idempotent.
func Normalize(s string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse normalizes and parses an amount string. ok is false when the input
// holds no parseable positive number.
func Parse(s string) (amount float64, ok bool) {
	n := Normalize(s)
	if n == "" || n == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, f > 0
}

// Format renders an amount with thousands separators and two decimals,
// e.g. "1,234.50". Unparseable input renders as the empty string.
func Format(s string) string {
	f, err := strconv.ParseFloat(Normalize(s), 64)
	if err != nil {
		return ""
	}
	return FormatFloat(f)
}

// FormatFloat renders a float with thousands separators and two decimals.
func FormatFloat(f float64) string {
	neg := f < 0
	fixed := strconv.FormatFloat(math.Abs(f), 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// Scale labels the order of magnitude of an amount for the entry helper
// shown above the amount field.
func Scale(s string) string {
	f, err := strconv.ParseFloat(Normalize(s), 64)
	if err != nil {
		return ""
	}
	switch {
	case f < 10:
		return "Tenths"
	case f < 100:
		return "Tens"
	case f < 1_000:
		return "Hundreds"
	case f < 1_000_000:
		return "Thousands"
	case f < 1_000_000_000:
		return "Millions"
	default:
		return "Billions+"
	}
}
