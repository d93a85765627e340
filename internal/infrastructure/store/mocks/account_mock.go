package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/model"
	"github.com/google/uuid"
)

// MockShopStore is a mock implementation of ShopStore for testing
type MockShopStore struct {
	mu      sync.Mutex
	byOwner map[string]*model.Shop

	GetErr    error
	InsertErr error

	// GetDelay blocks GetShopByOwner until it elapses or ctx is done.
	GetDelay time.Duration

	GetCalls    []string
	InsertCalls []*model.Shop
}

func NewMockShopStore() *MockShopStore {
	return &MockShopStore{byOwner: make(map[string]*model.Shop)}
}

func (m *MockShopStore) Seed(shop *model.Shop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *shop
	m.byOwner[shop.OwnerID] = &cp
}

func (m *MockShopStore) GetShopByOwner(ctx context.Context, userID string) (*model.Shop, error) {
	if m.GetDelay > 0 {
		select {
		case <-time.After(m.GetDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, userID)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	shop, ok := m.byOwner[userID]
	if !ok {
		return nil, nil
	}
	cp := *shop
	return &cp, nil
}

func (m *MockShopStore) InsertShop(ctx context.Context, shop *model.Shop) (*model.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, shop)
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}
	cp := *shop
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	m.byOwner[cp.OwnerID] = &cp
	out := cp
	return &out, nil
}

// MockProfileStore is a mock implementation of ProfileStore for testing
type MockProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile

	GetErr        error
	InsertErr     error
	UpdateRoleErr error

	UpdateRoleCalls []UpdateRoleCall
}

// UpdateRoleCall records parameters passed to UpdateRole
type UpdateRoleCall struct {
	UserID string
	Role   model.Role
}

func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{profiles: make(map[string]*model.Profile)}
}

func (m *MockProfileStore) Seed(p *model.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.ID] = &cp
}

func (m *MockProfileStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfileStore) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, p := range m.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockProfileStore) InsertProfile(ctx context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return m.InsertErr
	}
	cp := *p
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	cp.CreatedAt = time.Now()
	m.profiles[cp.ID] = &cp
	return nil
}

func (m *MockProfileStore) UpdateRole(ctx context.Context, userID string, role model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateRoleCalls = append(m.UpdateRoleCalls, UpdateRoleCall{UserID: userID, Role: role})
	if m.UpdateRoleErr != nil {
		return m.UpdateRoleErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return store.ErrNotFound
	}
	p.Role = role
	return nil
}
