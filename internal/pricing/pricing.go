// Package pricing holds the one rule deciding what a cart line costs. Every
// total shown or charged goes through it.
package pricing

import (
	"strings"

	"github.com/example/festisolde/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown for lines captured without any image.
const PlaceholderImage = "https://via.placeholder.com/150"

// EffectiveUnitPrice returns the promo price when present and nonzero, else
// the base price.
func EffectiveUnitPrice(l cart.Line) decimal.Decimal {
	if l.PromoPrice != nil && !l.PromoPrice.IsZero() {
		return *l.PromoPrice
	}
	return l.BasePrice
}

func LineTotal(l cart.Line) decimal.Decimal {
	return EffectiveUnitPrice(l).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func CartTotal(c cart.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(LineTotal(l))
	}
	return total
}

// ItemCount is the number of units in the cart, for the cart badge.
func ItemCount(c cart.Cart) int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// DisplayImage returns the line's captured image or the placeholder.
func DisplayImage(l cart.Line) string {
	if l.ImageURL != "" {
		return l.ImageURL
	}
	return PlaceholderImage
}

// FormatAmount renders an amount in francs with space-grouped thousands,
// e.g. 12500 -> "12 500". Fractions are kept only when non-zero.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if frac != "00" {
		out += "," + strings.TrimRight(frac, "0")
	}
	return out
}
