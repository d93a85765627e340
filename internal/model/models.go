package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the privilege level stored on a user's profile.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a stored role to a known Role. Unknown or empty values are
// treated as customer.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleVendor:
		return RoleVendor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

// Product is a catalog row
type Product struct {
	ID          string           `json:"id"`
	ShopID      string           `json:"shop_id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       decimal.Decimal  `json:"price"`
	PromoPrice  *decimal.Decimal `json:"promo_price,omitempty"`
	Stock       int              `json:"stock"`
	ImageURL    string           `json:"image_url,omitempty"`
	Images      []string         `json:"images,omitempty"`
	IsFeatured  bool             `json:"is_featured"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PrimaryImage returns the image shown for the product: the explicit image
// URL, else the first gallery image, else "".
func (p *Product) PrimaryImage() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Shop is a vendor storefront. One shop per owner.
type Shop struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile holds the account facts the auth provider keeps per user.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the authenticated identity seen by the storefront.
type Session struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// Order is the durable order header.
type Order struct {
	ID              string          `json:"id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderLine is one purchased product of an order, priced at submit time.
// ShopID and ProductTitle are copied from the cart so the line outlives
// the product.
type OrderLine struct {
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id"`
	ShopID       string          `json:"shop_id,omitempty"`
	ProductTitle string          `json:"product_title"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
}

// ShopOrderLine is an order line of a shop's product joined with its order.
type ShopOrderLine struct {
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}
