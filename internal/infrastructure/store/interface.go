package store

import (
	"context"
	"errors"
	"io"

	"github.com/example/festisolde/internal/model"
)

var ErrNotFound = errors.New("record not found")

// Sort orders accepted by ListProducts. Price sorts use the base price.
const (
	SortRecent    = "recent"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// ProductFilter narrows ListProducts. Empty fields do not filter.
type ProductFilter struct {
	Category string
	ShopID   string
	Featured bool
}

// CatalogStore is the product table.
type CatalogStore interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter, sort string) ([]*model.Product, error)
	InsertProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, p *model.Product) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	DeleteProduct(ctx context.Context, id string) error
}

// ImageStore uploads product images and returns their public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, name string, content io.Reader) (string, error)
}

// OrderStore holds order headers and their lines. The two inserts are
// separate writes; nothing here makes them atomic.
type OrderStore interface {
	InsertOrder(ctx context.Context, o *model.Order) (*model.Order, error)
	InsertOrderLines(ctx context.Context, lines []model.OrderLine) error
	ListOrdersForShop(ctx context.Context, shopID string) ([]model.ShopOrderLine, error)
}

// ShopStore is the shops table. GetShopByOwner returns (nil, nil) when the
// user owns no shop.
type ShopStore interface {
	GetShopByOwner(ctx context.Context, userID string) (*model.Shop, error)
	InsertShop(ctx context.Context, s *model.Shop) (*model.Shop, error)
}

// ProfileStore is the profiles table. Lookups return (nil, nil) when absent.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
	InsertProfile(ctx context.Context, p *model.Profile) error
	UpdateRole(ctx context.Context, userID string, role model.Role) error
}
