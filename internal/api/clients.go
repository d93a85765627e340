package api

import (
	"context"
	"sync"
	"time"

	"github.com/example/festisolde/internal/checkout"
	"github.com/example/festisolde/internal/domain/cart"
	"github.com/example/festisolde/internal/domain/catalog"
	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/routing"
)

// ClientSession is the per-device state: its cart, checkout flow, landing
// router and the admin's optimistic product list.
type ClientSession struct {
	Cart     *cart.Service
	Checkout *checkout.Orchestrator
	Router   *routing.Router

	loadOnce sync.Once

	mu       sync.Mutex
	admin    *catalog.ListView
	lastSeen time.Time
}

// AdminView returns the admin product list, creating it with load on first
// use.
func (c *ClientSession) AdminView(load func() *catalog.ListView) *catalog.ListView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.admin == nil {
		c.admin = load()
	}
	return c.admin
}

// SetAdminView replaces the admin product list.
func (c *ClientSession) SetAdminView(v *catalog.ListView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.admin = v
}

// Registry holds one ClientSession per client id.
type Registry struct {
	storage       cart.Storage
	orders        store.OrderStore
	publisher     checkout.Publisher
	merchant      checkout.Merchant
	shops         routing.ShopOwnership
	lookupTimeout time.Duration
	now           func() time.Time

	mu      sync.Mutex
	clients map[string]*ClientSession
}

// RegistryConfig wires the collaborators every client session shares.
type RegistryConfig struct {
	Storage       cart.Storage
	Orders        store.OrderStore
	Publisher     checkout.Publisher
	Merchant      checkout.Merchant
	Shops         routing.ShopOwnership
	LookupTimeout time.Duration
}

func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		storage:       cfg.Storage,
		orders:        cfg.Orders,
		publisher:     cfg.Publisher,
		merchant:      cfg.Merchant,
		shops:         cfg.Shops,
		lookupTimeout: cfg.LookupTimeout,
		now:           time.Now,
		clients:       make(map[string]*ClientSession),
	}
}

// Get returns the session of clientID, rehydrating its cart from storage
// the first time it is seen.
func (r *Registry) Get(ctx context.Context, clientID string) *ClientSession {
	r.mu.Lock()
	cs, ok := r.clients[clientID]
	if !ok {
		c := cart.NewService(r.storage, cart.KeyFor(clientID))
		cs = &ClientSession{
			Cart:     c,
			Checkout: checkout.NewOrchestrator(c, r.orders, r.publisher, r.merchant),
			Router:   routing.NewRouter(r.shops, r.lookupTimeout),
		}
		r.clients[clientID] = cs
	}
	r.mu.Unlock()

	cs.loadOnce.Do(func() { cs.Cart.Load(ctx) })

	cs.mu.Lock()
	cs.lastSeen = r.now()
	cs.mu.Unlock()
	return cs
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Evict drops sessions idle for longer than idle, except those with a
// submission in flight. Their carts stay in storage and are reloaded on the
// next request.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, cs := range r.clients {
		cs.mu.Lock()
		stale := cs.lastSeen.Before(cutoff)
		cs.mu.Unlock()
		if stale && cs.Checkout.State() != checkout.StateSubmitting {
			delete(r.clients, id)
			evicted++
		}
	}
	return evicted
}
