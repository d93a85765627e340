package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/model"
	"github.com/example/festisolde/internal/pricing"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:   "En attente",
	StatusPaid:      "Payée",
	StatusShipped:   "Expédiée",
	StatusCancelled: "Annulée",
}

// Label is the customer-facing name of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseStatus accepts both stored values and their labels.
func ParseStatus(s string) (Status, bool) {
	for st, label := range statusLabels {
		if string(st) == s || strings.EqualFold(label, s) {
			return st, true
		}
	}
	return "", false
}

var (
	ErrEmptyOrder   = errors.New("order must have at least one item")
	ErrNoShop       = errors.New("user does not own a shop")
	ErrLineQuantity = errors.New("order line quantity out of range")
)

// Details are the customer-entered fields of an order header.
type Details struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	PaymentMethod   string
}

// NewHeader builds a pending order header carrying a frozen total.
func NewHeader(d Details, total decimal.Decimal) *model.Order {
	return &model.Order{
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		CustomerAddress: d.CustomerAddress,
		TotalPrice:      total,
		PaymentMethod:   d.PaymentMethod,
		Status:          string(StatusPending),
	}
}

// BuildLines prices every line of the snapshot for the given order id.
func BuildLines(orderID string, snapshot cart.Cart) ([]model.OrderLine, error) {
	if snapshot.IsEmpty() {
		return nil, ErrEmptyOrder
	}
	lines := make([]model.OrderLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		if l.Quantity < 1 || l.Quantity > cart.MaxLineQuantity {
			return nil, fmt.Errorf("%w: %s has %d", ErrLineQuantity, l.ProductID, l.Quantity)
		}
		lines = append(lines, model.OrderLine{
			OrderID:      orderID,
			ProductID:    l.ProductID,
			ShopID:       l.ShopID,
			ProductTitle: l.Title,
			Quantity:     l.Quantity,
			UnitPrice:    pricing.EffectiveUnitPrice(l),
		})
	}
	return lines, nil
}

// Service answers order queries for vendors.
type Service struct {
	orders store.OrderStore
	shops  store.ShopStore
}

func NewService(orders store.OrderStore, shops store.ShopStore) *Service {
	return &Service{orders: orders, shops: shops}
}

// ListForOwner returns the order lines of the shop owned by userID.
func (s *Service) ListForOwner(ctx context.Context, userID string) ([]model.ShopOrderLine, error) {
	shop, err := s.shops.GetShopByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup shop: %w", err)
	}
	if shop == nil {
		return nil, ErrNoShop
	}
	return s.orders.ListOrdersForShop(ctx, shop.ID)
}
