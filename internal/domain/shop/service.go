package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/model"
)

var (
	ErrMissingOwner  = errors.New("shop owner is required")
	ErrMissingName   = errors.New("shop name is required")
	ErrAlreadyOwner  = errors.New("user already owns a shop")
	ErrCreateShop    = errors.New("could not create shop, the name may already be taken")
	ErrPromoteVendor = errors.New("could not update profile role to vendor")
)

var logger = logging.New("shop")

type Service struct {
	shops    store.ShopStore
	profiles store.ProfileStore
}

func NewService(shops store.ShopStore, profiles store.ProfileStore) *Service {
	return &Service{shops: shops, profiles: profiles}
}

// Create inserts the owner's shop, then promotes the owner to vendor. A
// failed promotion leaves the shop in place.
func (s *Service) Create(ctx context.Context, ownerID, name, description string) (*model.Shop, error) {
	name = strings.TrimSpace(name)
	switch {
	case ownerID == "":
		return nil, ErrMissingOwner
	case name == "":
		return nil, ErrMissingName
	}

	existing, err := s.shops.GetShopByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lookup shop: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyOwner
	}

	created, err := s.shops.InsertShop(ctx, &model.Shop{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		logger.Error().Err(err).Str("owner_id", ownerID).Msg("shop insert failed")
		return nil, fmt.Errorf("%w: %v", ErrCreateShop, err)
	}

	if err := s.profiles.UpdateRole(ctx, ownerID, model.RoleVendor); err != nil {
		logger.Error().Err(err).Str("owner_id", ownerID).Str("shop_id", created.ID).Msg("role promotion failed")
		return created, fmt.Errorf("%w: %v", ErrPromoteVendor, err)
	}

	logger.Info().Str("owner_id", ownerID).Str("shop_id", created.ID).Msg("shop created")
	return created, nil
}

// GetByOwner returns the user's shop, or nil when there is none.
func (s *Service) GetByOwner(ctx context.Context, ownerID string) (*model.Shop, error) {
	return s.shops.GetShopByOwner(ctx, ownerID)
}

// OwnsShop reports whether the user owns a shop.
func (s *Service) OwnsShop(ctx context.Context, userID string) (bool, error) {
	shop, err := s.shops.GetShopByOwner(ctx, userID)
	if err != nil {
		return false, err
	}
	return shop != nil, nil
}
