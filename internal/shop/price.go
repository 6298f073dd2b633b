package shop

import (
	"strings"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// ParsePrice parses raw as a non-negative decimal amount. Rejections are
// ValidationErrors; this is the strict path used for catalog edits and the
// confirmed total at session finalization.
func ParsePrice(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, Validationf("price is required")
	}
	p, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, Validationf("price %q is not a number", raw)
	}
	if p.IsNegative() {
		return decimal.Zero, Validationf("price %q is negative", raw)
	}
	return p, nil
}

// PriceOrFallback parses raw leniently: a non-numeric or negative input
// falls back to fallback instead of rejecting the edit. This is the
// in-session price-edit path only.
func PriceOrFallback(raw string, fallback decimal.Decimal) decimal.Decimal {
	p, err := ParsePrice(raw)
	if err != nil {
		return fallback
	}
	return p
}

// recomputeAverage sets the variant's average to the arithmetic mean of its
// full price history.
func recomputeAverage(v *model.BrandVariant) {
	if len(v.PriceHistory) == 0 {
		v.AveragePrice = decimal.Zero
		return
	}
	sum := decimal.Zero
	for _, r := range v.PriceHistory {
		sum = sum.Add(r.Price)
	}
	v.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(v.PriceHistory))))
}
