package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/model"
)

// StorageKey is the well-known key under which a cart is persisted.
const StorageKey = "festi_cart"

// ErrCorruptCart is returned by Decode when the stored value cannot be parsed.
var ErrCorruptCart = errors.New("stored cart is not valid JSON")

var logger = logging.New("cart")

// Storage is durable client-side key/value storage.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// KeyFor returns the storage key of a client's cart.
func KeyFor(clientID string) string {
	if clientID == "" {
		return StorageKey
	}
	return StorageKey + ":" + clientID
}

// Service is the persistent cart of one client session. Every mutation
// replaces the in-memory cart and writes it through to storage before
// returning. A failed write is logged and the in-memory cart stays
// authoritative for the session.
type Service struct {
	mu      sync.Mutex
	storage Storage
	key     string
	current Cart
}

func NewService(storage Storage, key string) *Service {
	return &Service{
		storage: storage,
		key:     key,
		current: Empty(),
	}
}

// Decode parses a stored cart and repairs it. Parse failures are returned
// as ErrCorruptCart; Load collapses them to an empty cart.
func Decode(raw string) (Cart, bool, error) {
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return Empty(), false, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	c, repaired := repair(lines)
	return c, repaired, nil
}

// Encode serializes a cart as a JSON array of lines.
func Encode(c Cart) (string, error) {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Load rehydrates the cart from storage. It never fails: an absent,
// unreadable or corrupt value yields an empty cart.
func (s *Service) Load(ctx context.Context) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.read(ctx)
	return s.current.Clone()
}

// Reload re-reads storage, discarding the in-memory cart. It lets a caller
// react to another writer of the same key (last writer wins).
func (s *Service) Reload(ctx context.Context) Cart {
	return s.Load(ctx)
}

func (s *Service) read(ctx context.Context) Cart {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		logger.Warn().Err(err).Str("key", s.key).Msg("failed to read stored cart, starting empty")
		return Empty()
	}
	if !ok || raw == "" {
		return Empty()
	}

	c, repaired, err := Decode(raw)
	if err != nil {
		logger.Warn().Err(err).Str("key", s.key).Msg("discarding unparseable cart")
		return Empty()
	}
	if repaired {
		logger.Info().Str("key", s.key).Msg("repaired stored cart")
		s.persist(ctx, c)
	}
	return c
}

// Snapshot returns a copy of the current cart.
func (s *Service) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// AddItem adds quantity units of p, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, p *model.Product, quantity int) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Add(s.current, p, quantity)
	if err != nil {
		return s.current.Clone(), err
	}
	s.replace(ctx, next)
	return next.Clone(), nil
}

// UpdateQuantity adds delta to a line's quantity, clamped to at least 1.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, delta int) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := UpdateQuantity(s.current, productID, delta)
	s.replace(ctx, next)
	return next.Clone()
}

// RemoveItem deletes a line. Removing an absent product is a no-op.
func (s *Service) RemoveItem(ctx context.Context, productID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Remove(s.current, productID)
	s.replace(ctx, next)
	return next.Clone()
}

// Clear empties the cart and deletes the durable copy.
func (s *Service) Clear(ctx context.Context) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Empty()
	if err := s.storage.Remove(ctx, s.key); err != nil {
		logger.Warn().Err(err).Str("key", s.key).Msg("failed to remove stored cart")
	}
	return Empty()
}

func (s *Service) replace(ctx context.Context, next Cart) {
	s.current = next
	s.persist(ctx, next)
}

func (s *Service) persist(ctx context.Context, c Cart) {
	raw, err := Encode(c)
	if err != nil {
		logger.Error().Err(err).Str("key", s.key).Msg("failed to encode cart")
		return
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		logger.Warn().Err(err).Str("key", s.key).Msg("failed to persist cart, keeping in-memory copy")
	}
}
