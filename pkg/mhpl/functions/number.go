package functions

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// NaN is the textual result of arithmetic on non-numbers.
const NaN = "NaN"

// parseInt reads a base-10 integer with optional sign and surrounding
// whitespace.
func parseInt(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}

// parseFloat reads a decimal float, "inf", "infinity" or "nan" (any case,
// optionally signed). Hexadecimal forms are rejected. Magnitudes beyond the
// float64 range become infinities.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func parseInts(a, b string) (*big.Int, *big.Int, bool) {
	x, ok := parseInt(a)
	if !ok {
		return nil, nil, false
	}
	y, ok := parseInt(b)
	if !ok {
		return nil, nil, false
	}
	return x, y, true
}

func parseFloats(a, b string) (float64, float64, bool) {
	x, ok := parseFloat(a)
	if !ok {
		return 0, 0, false
	}
	y, ok := parseFloat(b)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

// FormatFloat renders f in shortest round-trip form. Finite values always
// carry a fractional part or an exponent; exponent form is used when the
// decimal exponent is below -4 or at least 16.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}

	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(fixed, '.') {
		fixed += ".0"
	}
	return fixed
}
