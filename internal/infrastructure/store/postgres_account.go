package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/festisolde/internal/model"
)

// PostgresShopStore implements ShopStore using PostgreSQL
type PostgresShopStore struct {
	db *sql.DB
}

func NewPostgresShopStore(db *sql.DB) *PostgresShopStore {
	return &PostgresShopStore{db: db}
}

func (s *PostgresShopStore) GetShopByOwner(ctx context.Context, userID string) (*model.Shop, error) {
	var shop model.Shop
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM shops WHERE owner_id = $1`, userID,
	).Scan(&shop.ID, &shop.OwnerID, &shop.Name, &shop.Description, &shop.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shop for owner %s: %w", userID, err)
	}
	return &shop, nil
}

func (s *PostgresShopStore) InsertShop(ctx context.Context, shop *model.Shop) (*model.Shop, error) {
	created := *shop
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO shops (owner_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		shop.OwnerID, shop.Name, shop.Description,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert shop: %w", err)
	}
	return &created, nil
}

// PostgresProfileStore implements ProfileStore using PostgreSQL
type PostgresProfileStore struct {
	db *sql.DB
}

func NewPostgresProfileStore(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

func (s *PostgresProfileStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.getProfile(ctx, `WHERE id = $1`, userID)
}

func (s *PostgresProfileStore) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return s.getProfile(ctx, `WHERE email = $1`, email)
}

func (s *PostgresProfileStore) getProfile(ctx context.Context, where string, arg string) (*model.Profile, error) {
	var (
		p    model.Profile
		role string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, role, created_at
		FROM profiles `+where, arg,
	).Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &role, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Role = model.ParseRole(role)
	return &p, nil
}

func (s *PostgresProfileStore) InsertProfile(ctx context.Context, p *model.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Email, p.PasswordHash, p.FullName, string(p.Role))
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresProfileStore) UpdateRole(ctx context.Context, userID string, role model.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET role = $2 WHERE id = $1`, userID, string(role))
	if err != nil {
		return fmt.Errorf("update role for %s: %w", userID, err)
	}
	return requireRow(res)
}
