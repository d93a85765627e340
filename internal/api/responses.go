package api

import (
	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/domain/order"
	"github.com/example/festisolde/internal/model"
	"github.com/example/festisolde/internal/pricing"
	"github.com/shopspring/decimal"
)

// productResponse is a product as the storefront displays it.
type productResponse struct {
	*model.Product
	DisplayImage   string          `json:"display_image"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	PriceLabel     string          `json:"price_label"`
	OnPromotion    bool            `json:"on_promotion"`
}

func newProductResponse(p *model.Product) productResponse {
	line := cart.LineFromProduct(p, 1)
	effective := pricing.EffectiveUnitPrice(line)
	return productResponse{
		Product:        p,
		DisplayImage:   pricing.DisplayImage(line),
		EffectivePrice: effective,
		PriceLabel:     pricing.FormatAmount(effective),
		OnPromotion:    !effective.Equal(p.Price),
	}
}

func productListResponse(products []*model.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

type shopOrderResponse struct {
	model.ShopOrderLine
	StatusLabel string `json:"status_label"`
	LineTotal   string `json:"line_total"`
}

func shopOrdersResponse(lines []model.ShopOrderLine) []shopOrderResponse {
	out := make([]shopOrderResponse, 0, len(lines))
	for _, l := range lines {
		label := l.Status
		if status, ok := order.ParseStatus(l.Status); ok {
			label = status.Label()
		}
		out = append(out, shopOrderResponse{
			ShopOrderLine: l,
			StatusLabel:   label,
			LineTotal:     pricing.FormatAmount(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))),
		})
	}
	return out
}
