package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/festisolde/internal/model"
)

// PostgresOrderStore implements OrderStore using PostgreSQL
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// InsertOrder writes the order header and returns it with its generated id.
func (s *PostgresOrderStore) InsertOrder(ctx context.Context, o *model.Order) (*model.Order, error) {
	created := *o
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, customer_phone, customer_address, total_price, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		o.CustomerName, o.CustomerPhone, o.CustomerAddress, o.TotalPrice, o.PaymentMethod, o.Status,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &created, nil
}

// InsertOrderLines writes all lines in a single statement.
func (s *PostgresOrderStore) InsertOrderLines(ctx context.Context, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	values := make([]string, 0, len(lines))
	args := make([]any, 0, len(lines)*6)
	for i, l := range lines {
		n := i * 6
		// Lines from carts saved before shop ids were kept fall back to the
		// product's shop.
		values = append(values, fmt.Sprintf(
			"($%d, $%d, COALESCE(NULLIF($%d, '')::uuid, (SELECT shop_id FROM products WHERE id = $%d)), $%d, $%d, $%d)",
			n+1, n+2, n+3, n+2, n+4, n+5, n+6))
		args = append(args, l.OrderID, l.ProductID, l.ShopID, l.ProductTitle, l.Quantity, l.UnitPrice)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_id, shop_id, product_title, quantity, price) VALUES `+strings.Join(values, ", "),
		args...)
	if err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

// ListOrdersForShop returns the order lines of a shop's products, newest
// first. Lines of deleted products are kept with their stored title.
func (s *PostgresOrderStore) ListOrdersForShop(ctx context.Context, shopID string) ([]model.ShopOrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, oi.product_id, COALESCE(p.title, oi.product_title), oi.quantity, oi.price, o.status, o.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE COALESCE(oi.shop_id, p.shop_id) = $1
		ORDER BY o.created_at DESC`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop orders: %w", err)
	}
	defer rows.Close()

	lines := make([]model.ShopOrderLine, 0)
	for rows.Next() {
		var l model.ShopOrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.ProductTitle, &l.Quantity, &l.UnitPrice, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shop order: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
