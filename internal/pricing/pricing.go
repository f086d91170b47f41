package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LossGlyph replaces a non-positive profit figure
const LossGlyph = "❌"

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// ParseCoins parses scraped price text such as "12,000", "11 800", "1.2K" or "1.05M"
func ParseCoins(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	v = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(v)
	if v == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}

	multiplier := decimal.NewFromInt(1)
	switch last := v[len(v)-1]; last {
	case 'k', 'K':
		multiplier = thousand
		v = v[:len(v)-1]
	case 'm', 'M':
		multiplier = million
		v = v[:len(v)-1]
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d.Mul(multiplier), nil
}

// Offer is the listed price: the scraped price minus the discount, never below floor
func Offer(price, discount, floor decimal.Decimal) decimal.Decimal {
	return decimal.Max(price.Sub(discount), floor)
}

// OfferFromText parses the scraped price and floor and applies Offer
func OfferFromText(price, floor string, discount decimal.Decimal) (decimal.Decimal, error) {
	p, err := ParseCoins(price)
	if err != nil {
		return decimal.Zero, err
	}
	f, err := ParseCoins(floor)
	if err != nil {
		return decimal.Zero, err
	}
	return Offer(p, discount, f), nil
}

// Profit is the gain of a position between its reference and the fresh price
func Profit(fresh, reference decimal.Decimal) decimal.Decimal {
	return fresh.Sub(reference)
}

// ProfitLabel renders a profit, showing LossGlyph unless it is strictly positive
func ProfitLabel(profit decimal.Decimal) string {
	if !profit.IsPositive() {
		return LossGlyph
	}
	return "+" + FormatCoins(profit)
}

// FormatCoins renders a whole coin amount with thousands separators
func FormatCoins(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
