package mocks

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/model"
	"github.com/google/uuid"
)

// MockCatalogStore is a mock implementation of CatalogStore for testing
type MockCatalogStore struct {
	mu       sync.RWMutex
	products map[string]*model.Product

	GetErr         error
	ListErr        error
	InsertErr      error
	UpdateErr      error
	SetFeaturedErr error
	DeleteErr      error

	InsertCalls      []*model.Product
	UpdateCalls      []UpdateProductCall
	SetFeaturedCalls []SetFeaturedCall
	DeleteCalls      []string
}

// UpdateProductCall records parameters passed to UpdateProduct
type UpdateProductCall struct {
	ID      string
	Product *model.Product
}

// SetFeaturedCall records parameters passed to SetFeatured
type SetFeaturedCall struct {
	ID       string
	Featured bool
}

func NewMockCatalogStore() *MockCatalogStore {
	return &MockCatalogStore{products: make(map[string]*model.Product)}
}

// Seed adds products directly.
func (m *MockCatalogStore) Seed(products ...*model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		cp := *p
		m.products[p.ID] = &cp
	}
}

func (m *MockCatalogStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockCatalogStore) ListProducts(ctx context.Context, filter store.ProductFilter, order string) ([]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]*model.Product, 0, len(m.products))
	for _, p := range m.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.ShopID != "" && p.ShopID != filter.ShopID {
			continue
		}
		if filter.Featured && !p.IsFeatured {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch order {
		case store.SortPriceAsc:
			return out[i].Price.LessThan(out[j].Price)
		case store.SortPriceDesc:
			return out[i].Price.GreaterThan(out[j].Price)
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return out, nil
}

func (m *MockCatalogStore) InsertProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, p)
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}
	cp := *p
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	m.products[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *MockCatalogStore) UpdateProduct(ctx context.Context, id string, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, UpdateProductCall{ID: id, Product: p})
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	existing, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	cp := *p
	cp.ID = id
	cp.ShopID = existing.ShopID
	cp.IsFeatured = existing.IsFeatured
	cp.CreatedAt = existing.CreatedAt
	m.products[id] = &cp
	return nil
}

func (m *MockCatalogStore) SetFeatured(ctx context.Context, id string, featured bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetFeaturedCalls = append(m.SetFeaturedCalls, SetFeaturedCall{ID: id, Featured: featured})
	if m.SetFeaturedErr != nil {
		return m.SetFeaturedErr
	}
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.IsFeatured = featured
	return nil
}

func (m *MockCatalogStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// MockImageStore records uploads and returns predictable URLs
type MockImageStore struct {
	mu sync.Mutex

	UploadErr   error
	UploadCalls []string
}

func NewMockImageStore() *MockImageStore {
	return &MockImageStore{}
}

func (m *MockImageStore) UploadImage(ctx context.Context, name string, content io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UploadCalls = append(m.UploadCalls, name)
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	return "https://images.test/" + name, nil
}
