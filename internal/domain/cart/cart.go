package cart

import (
	"errors"

	"github.com/example/festisolde/internal/model"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the units of one product in a cart.
const MaxLineQuantity = 999

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product id is required")
	ErrQuantityLimit   = errors.New("quantity exceeds 999 units per product")
)

// Line is one product plus requested quantity. Title, image and prices are
// captured when the product is first added and are never refreshed.
type Line struct {
	ProductID  string           `json:"id"`
	ShopID     string           `json:"shop_id,omitempty"`
	Title      string           `json:"title"`
	ImageURL   string           `json:"image_url,omitempty"`
	BasePrice  decimal.Decimal  `json:"price"`
	PromoPrice *decimal.Decimal `json:"promo_price,omitempty"`
	Quantity   int              `json:"quantity"`
}

// Cart is an ordered list of lines keyed by product id.
type Cart struct {
	Lines []Line
}

// Empty returns a cart with no lines.
func Empty() Cart {
	return Cart{Lines: []Line{}}
}

func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Find returns the line for productID.
func (c Cart) Find(productID string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// Clone returns a deep copy, so callers can hold a snapshot that later
// mutations never reach.
func (c Cart) Clone() Cart {
	lines := make([]Line, len(c.Lines))
	for i, l := range c.Lines {
		if l.PromoPrice != nil {
			promo := *l.PromoPrice
			l.PromoPrice = &promo
		}
		lines[i] = l
	}
	return Cart{Lines: lines}
}

// LineFromProduct snapshots the product's current price, title and image.
func LineFromProduct(p *model.Product, quantity int) Line {
	line := Line{
		ProductID: p.ID,
		ShopID:    p.ShopID,
		Title:     p.Title,
		ImageURL:  p.PrimaryImage(),
		BasePrice: p.Price,
		Quantity:  quantity,
	}
	if p.PromoPrice != nil {
		promo := *p.PromoPrice
		line.PromoPrice = &promo
	}
	return line
}

// Add increments the quantity of an existing line for p, or appends a fresh
// snapshot of p. The input cart is not modified.
func Add(c Cart, p *model.Product, quantity int) (Cart, error) {
	if p == nil || p.ID == "" {
		return c, ErrInvalidProduct
	}
	if quantity <= 0 {
		return c, ErrInvalidQuantity
	}
	if quantity > MaxLineQuantity {
		return c, ErrQuantityLimit
	}

	next := c.Clone()
	for i := range next.Lines {
		if next.Lines[i].ProductID == p.ID {
			if next.Lines[i].Quantity > MaxLineQuantity-quantity {
				return c, ErrQuantityLimit
			}
			next.Lines[i].Quantity += quantity
			return next, nil
		}
	}
	next.Lines = append(next.Lines, LineFromProduct(p, quantity))
	return next, nil
}

// UpdateQuantity adds delta to the line's quantity, clamped to
// [1, MaxLineQuantity]. Unknown product ids leave the cart unchanged.
func UpdateQuantity(c Cart, productID string, delta int) Cart {
	next := c.Clone()
	for i := range next.Lines {
		if next.Lines[i].ProductID == productID {
			next.Lines[i].Quantity = clampAdd(next.Lines[i].Quantity, delta)
		}
	}
	return next
}

// clampAdd returns q+delta within [1, MaxLineQuantity] without overflowing.
func clampAdd(q, delta int) int {
	q = min(max(q, 1), MaxLineQuantity)
	switch {
	case delta > MaxLineQuantity-q:
		return MaxLineQuantity
	case delta < 1-q:
		return 1
	}
	return q + delta
}

// Remove drops the line for productID regardless of its quantity.
func Remove(c Cart, productID string) Cart {
	next := Cart{Lines: make([]Line, 0, len(c.Lines))}
	for _, l := range c.Clone().Lines {
		if l.ProductID != productID {
			next.Lines = append(next.Lines, l)
		}
	}
	return next
}

// repair drops lines that can never be valid, merges duplicate product ids
// and caps quantities at MaxLineQuantity. It reports whether anything
// changed.
func repair(lines []Line) (Cart, bool) {
	out := Cart{Lines: make([]Line, 0, len(lines))}
	index := make(map[string]int, len(lines))
	changed := false

	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			changed = true
			continue
		}
		if l.Quantity > MaxLineQuantity {
			l.Quantity = MaxLineQuantity
			changed = true
		}
		if i, ok := index[l.ProductID]; ok {
			out.Lines[i].Quantity = clampAdd(out.Lines[i].Quantity, l.Quantity)
			changed = true
			continue
		}
		index[l.ProductID] = len(out.Lines)
		out.Lines = append(out.Lines, l)
	}
	return out, changed
}
