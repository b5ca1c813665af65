package forms

import (
	"math"
	"strconv"
	"strings"
)

// FloatPrefix parses the longest leading decimal literal of s, after leading
// whitespace: "12.5kg" is 12.5, ".5" is 0.5, "1e3x" is 1000. It reports false
// when no number leads s or the value is not finite.
func FloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return 0, false
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0, false
	}

	// Only take the exponent when digits follow it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// IntPrefix parses the leading integer of s, after leading whitespace:
// "42 units" is 42, "12.9" is 12, "0x1f" is 31. It reports false when no
// integer leads s or it does not fit an int.
func IntPrefix(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	sign := ""
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	base := 10
	isValid := isDigit
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		isValid = isHexDigit
		s = s[2:]
	}

	n := 0
	for n < len(s) && isValid(s[n]) {
		n++
	}
	if n == 0 {
		return 0, false
	}

	v, err := strconv.ParseInt(sign+s[:n], base, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// FormatFloat renders v the shortest way that reads back as v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
