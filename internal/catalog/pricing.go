package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// parsePrice reads a stored price, tolerating thousands separators.
func parsePrice(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// DiscountPercent returns round((mrp - sellingPrice) / mrp * 100), halves
// rounding up. It is 0 when either price is missing or unparseable, or when
// mrp is zero. A selling price above mrp gives a negative result.
func DiscountPercent(mrp, sellingPrice string) int64 {
	m, ok := parsePrice(mrp)
	if !ok || m.IsZero() {
		return 0
	}
	sp, ok := parsePrice(sellingPrice)
	if !ok {
		return 0
	}
	return m.Sub(sp).Div(m).Mul(hundred).Add(half).Floor().IntPart()
}
