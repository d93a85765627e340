package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/festisolde/internal/model"
	"github.com/google/uuid"
)

// MockOrderStore is a mock implementation of OrderStore for testing
type MockOrderStore struct {
	mu sync.Mutex

	Orders []*model.Order
	Lines  []model.OrderLine

	InsertOrderErr error
	InsertLinesErr error
	ListErr        error

	InsertOrderCalls int
	InsertLinesCalls int

	// BeforeInsertOrder runs before the header insert, outside the lock.
	BeforeInsertOrder func()

	// ShopLines are returned ahead of lines derived from inserted orders.
	ShopLines map[string][]model.ShopOrderLine
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{ShopLines: make(map[string][]model.ShopOrderLine)}
}

func (m *MockOrderStore) InsertOrder(ctx context.Context, o *model.Order) (*model.Order, error) {
	if m.BeforeInsertOrder != nil {
		m.BeforeInsertOrder()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertOrderCalls++
	if m.InsertOrderErr != nil {
		return nil, m.InsertOrderErr
	}
	created := *o
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now()
	m.Orders = append(m.Orders, &created)
	out := created
	return &out, nil
}

func (m *MockOrderStore) InsertOrderLines(ctx context.Context, lines []model.OrderLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertLinesCalls++
	if m.InsertLinesErr != nil {
		return m.InsertLinesErr
	}
	m.Lines = append(m.Lines, lines...)
	return nil
}

func (m *MockOrderStore) ListOrdersForShop(ctx context.Context, shopID string) ([]model.ShopOrderLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := append([]model.ShopOrderLine(nil), m.ShopLines[shopID]...)
	for i := len(m.Lines) - 1; i >= 0; i-- {
		l := m.Lines[i]
		if l.ShopID != shopID {
			continue
		}
		sl := model.ShopOrderLine{
			OrderID:      l.OrderID,
			ProductID:    l.ProductID,
			ProductTitle: l.ProductTitle,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
		}
		for _, o := range m.Orders {
			if o.ID == l.OrderID {
				sl.Status = o.Status
				sl.CreatedAt = o.CreatedAt
			}
		}
		out = append(out, sl)
	}
	return out, nil
}
