package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// schema creates the storefront tables when they do not exist yet.
const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS profiles (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name     TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT 'customer',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS shops (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	owner_id    UUID NOT NULL UNIQUE REFERENCES profiles(id),
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	shop_id     UUID REFERENCES shops(id),
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	price       NUMERIC(14,2) NOT NULL,
	promo_price NUMERIC(14,2),
	stock       INTEGER NOT NULL DEFAULT 0,
	image_url   TEXT NOT NULL DEFAULT '',
	images      TEXT[] NOT NULL DEFAULT '{}',
	is_featured BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	customer_name    TEXT NOT NULL,
	customer_phone   TEXT NOT NULL,
	customer_address TEXT NOT NULL,
	total_price      NUMERIC(14,2) NOT NULL,
	payment_method   TEXT NOT NULL,
	status           TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	id         BIGSERIAL PRIMARY KEY,
	order_id   UUID NOT NULL REFERENCES orders(id),
	product_id UUID NOT NULL,
	quantity   INTEGER NOT NULL CHECK (quantity >= 1),
	price      NUMERIC(14,2) NOT NULL
);

ALTER TABLE order_items ADD COLUMN IF NOT EXISTS shop_id UUID;
ALTER TABLE order_items ADD COLUMN IF NOT EXISTS product_title TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_products_shop_id ON products(shop_id);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_shop_id ON order_items(shop_id);
`

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
