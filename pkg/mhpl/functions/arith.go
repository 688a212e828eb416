package functions

import (
	"math/big"
	"strings"
)

type arith struct {
	maxOutput int
}

func (a *arith) plus(x, y string) string {
	if i, j, ok := parseInts(x, y); ok {
		return new(big.Int).Add(i, j).String()
	}
	if f, g, ok := parseFloats(x, y); ok {
		return FormatFloat(f + g)
	}
	return x + y
}

func (a *arith) minus(x, y string) string {
	if i, j, ok := parseInts(x, y); ok {
		return new(big.Int).Sub(i, j).String()
	}
	if f, g, ok := parseFloats(x, y); ok {
		return FormatFloat(f - g)
	}
	return NaN
}

func (a *arith) times(x, y string) string {
	if i, j, ok := parseInts(x, y); ok {
		return new(big.Int).Mul(i, j).String()
	}
	if f, g, ok := parseFloats(x, y); ok {
		return FormatFloat(f * g)
	}
	if n, ok := parseInt(y); ok {
		return a.repeat(x, n)
	}
	return NaN
}

// repeat returns s repeated n times. A non-positive count gives the empty
// string; a result longer than maxOutput gives NaN.
func (a *arith) repeat(s string, n *big.Int) string {
	if n.Sign() <= 0 || s == "" {
		return ""
	}
	if !n.IsInt64() || n.Int64() > int64(a.maxOutput/len(s)) {
		return NaN
	}
	return strings.Repeat(s, int(n.Int64()))
}

func (a *arith) divide(x, y string) string {
	if i, j, ok := parseInts(x, y); ok {
		if j.Sign() == 0 {
			return NaN
		}
		q, r := new(big.Int).QuoRem(i, j, new(big.Int))
		if r.Sign() == 0 {
			return q.String()
		}
		f, _ := new(big.Rat).SetFrac(i, j).Float64()
		return FormatFloat(f)
	}
	if f, g, ok := parseFloats(x, y); ok {
		if g == 0 {
			return NaN
		}
		return FormatFloat(f / g)
	}
	return NaN
}
