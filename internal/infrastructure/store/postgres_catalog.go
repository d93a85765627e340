package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/festisolde/internal/model"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const productColumns = `id, COALESCE(shop_id::text, ''), title, description, category, price, promo_price,
	stock, image_url, images, is_featured, created_at`

// PostgresCatalogStore implements CatalogStore using PostgreSQL
type PostgresCatalogStore struct {
	db *sql.DB
}

func NewPostgresCatalogStore(db *sql.DB) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p      model.Product
		promo  decimal.NullDecimal
		images pq.StringArray
	)
	err := row.Scan(&p.ID, &p.ShopID, &p.Title, &p.Description, &p.Category, &p.Price, &promo,
		&p.Stock, &p.ImageURL, &images, &p.IsFeatured, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if promo.Valid {
		p.PromoPrice = &promo.Decimal
	}
	p.Images = []string(images)
	return &p, nil
}

func (s *PostgresCatalogStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *PostgresCatalogStore) ListProducts(ctx context.Context, filter ProductFilter, sort string) ([]*model.Product, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.ShopID != "" {
		args = append(args, filter.ShopID)
		where = append(where, fmt.Sprintf("shop_id = $%d", len(args)))
	}
	if filter.Featured {
		where = append(where, "is_featured")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderClause(sort)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func orderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC, created_at DESC"
	case SortPriceDesc:
		return "price DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func (s *PostgresCatalogStore) InsertProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO products (shop_id, title, description, category, price, promo_price, stock, image_url, images, is_featured)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		p.ShopID, p.Title, p.Description, p.Category, p.Price, nullDecimal(p.PromoPrice),
		p.Stock, p.ImageURL, pq.Array(p.Images), p.IsFeatured)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (s *PostgresCatalogStore) UpdateProduct(ctx context.Context, id string, p *model.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET title = $2, description = $3, category = $4, price = $5, promo_price = $6,
			stock = $7, image_url = $8, images = $9
		WHERE id = $1`,
		id, p.Title, p.Description, p.Category, p.Price, nullDecimal(p.PromoPrice),
		p.Stock, p.ImageURL, pq.Array(p.Images))
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}
	return requireRow(res)
}

func (s *PostgresCatalogStore) SetFeatured(ctx context.Context, id string, featured bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET is_featured = $2 WHERE id = $1`, id, featured)
	if err != nil {
		return fmt.Errorf("set featured %s: %w", id, err)
	}
	return requireRow(res)
}

func (s *PostgresCatalogStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
