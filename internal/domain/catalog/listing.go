package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/model"
)

// Query is a shop listing request.
type Query struct {
	Category string
	Search   string
	Sort     string
	ShopID   string
	Featured bool
}

// ListProducts fetches the filtered, sorted listing and applies the title
// search to the result. "all" or empty category means no category filter.
func (m *Manager) ListProducts(ctx context.Context, q Query) ([]*model.Product, error) {
	category := q.Category
	if strings.EqualFold(category, "all") {
		category = ""
	}
	sort := q.Sort
	switch sort {
	case store.SortPriceAsc, store.SortPriceDesc:
	default:
		sort = store.SortRecent
	}

	products, err := m.products.ListProducts(ctx, store.ProductFilter{
		Category: category,
		ShopID:   q.ShopID,
		Featured: q.Featured,
	}, sort)
	if err != nil {
		return nil, err
	}
	return SearchTitle(products, q.Search), nil
}

// SearchTitle keeps the products whose title contains term, ignoring case.
func SearchTitle(products []*model.Product, term string) []*model.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]*model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), term) {
			out = append(out, p)
		}
	}
	return out
}

// ListView is a locally held product list that reflects edits before the
// store confirms them.
type ListView struct {
	mu    sync.RWMutex
	items []model.Product
}

func NewListView(products []*model.Product) *ListView {
	v := &ListView{items: make([]model.Product, 0, len(products))}
	for _, p := range products {
		v.items = append(v.items, *p)
	}
	return v
}

func (v *ListView) SetFeatured(id string, featured bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.items {
		if v.items[i].ID == id {
			v.items[i].IsFeatured = featured
		}
	}
}

func (v *ListView) Remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.items[:0]
	for _, p := range v.items {
		if p.ID != id {
			out = append(out, p)
		}
	}
	v.items = out
}

func (v *ListView) Products() []model.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]model.Product, len(v.items))
	copy(out, v.items)
	return out
}
