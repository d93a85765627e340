package api

import (
	"context"
	"testing"
	"time"

	"github.com/example/festisolde/internal/checkout"
	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*Registry, *mocks.MockStorage, *time.Time) {
	storage := mocks.NewMockStorage()
	now := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(RegistryConfig{
		Storage: storage,
		Orders:  mocks.NewMockOrderStore(),
	})
	r.now = func() time.Time { return now }
	return r, storage, &now
}

func TestRegistry_SameClientSameSession(t *testing.T) {
	r, _, _ := newTestRegistry()
	ctx := context.Background()

	a := r.Get(ctx, "client-a")
	assert.Same(t, a, r.Get(ctx, "client-a"))
	assert.NotSame(t, a, r.Get(ctx, "client-b"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_LoadsCartOnce(t *testing.T) {
	r, storage, _ := newTestRegistry()
	ctx := context.Background()
	storage.Put(cart.KeyFor("client-a"), `[{"id":"p1","title":"Pagne","price":5000,"quantity":1}]`)

	cs := r.Get(ctx, "client-a")
	require.Len(t, cs.Cart.Snapshot().Lines, 1)

	storage.Put(cart.KeyFor("client-a"), `[]`)
	r.Get(ctx, "client-a")
	assert.Len(t, cs.Cart.Snapshot().Lines, 1, "storage is not re-read on every request")
}

func TestRegistry_EvictIdle(t *testing.T) {
	r, storage, now := newTestRegistry()
	ctx := context.Background()
	storage.Put(cart.KeyFor("client-a"), `[{"id":"p1","title":"Pagne","price":5000,"quantity":2}]`)

	r.Get(ctx, "client-a")
	*now = now.Add(10 * time.Minute)
	r.Get(ctx, "client-b")
	*now = now.Add(25 * time.Minute)

	assert.Equal(t, 1, r.Evict(30*time.Minute))
	assert.Equal(t, 1, r.Len())

	cs := r.Get(ctx, "client-a")
	assert.Equal(t, 2, cs.Cart.Snapshot().Lines[0].Quantity, "evicted cart reloads from storage")
}

func TestRegistry_EvictKeepsSubmission(t *testing.T) {
	r, _, now := newTestRegistry()
	ctx := context.Background()

	orders := mocks.NewMockOrderStore()
	r.orders = orders
	cs := r.Get(ctx, "client-a")
	_, err := cs.Cart.AddItem(ctx, testProduct(), 1)
	require.NoError(t, err)
	_, err = cs.Checkout.SubmitForm(validForm)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	orders.BeforeInsertOrder = func() {
		close(entered)
		<-release
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cs.Checkout.ConfirmPayment(ctx)
	}()
	<-entered

	*now = now.Add(time.Hour)
	assert.Equal(t, 0, r.Evict(time.Minute))
	assert.Equal(t, checkout.StateSubmitting, cs.Checkout.State())

	close(release)
	<-done
}
