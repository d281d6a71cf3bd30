// Package redis persists session carts in Redis, one slot per session.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// keyPrefix matches the slot name carts have always been stored under.
const keyPrefix = "cartItems:"

// storedItem is the persisted cart line layout: the product snapshot fields
// inlined next to quantity and the optional size.
type storedItem struct {
	domain.Product
	Quantity int      `json:"quantity"`
	Size     *float64 `json:"size,omitempty"`
}

// CartRepository stores each session's cart as a JSON sequence of lines
// under a per-session key with a sliding TTL.
type CartRepository struct {
	client   *redis.Client
	ttl      time.Duration
	currency string
}

// NewCartRepository returns a repository writing slots with the given TTL.
// Loaded carts carry the given currency.
func NewCartRepository(client *redis.Client, ttl time.Duration, currency string) *CartRepository {
	return &CartRepository{client: client, ttl: ttl, currency: currency}
}

func cartKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Load reads the session's slot and rebuilds the cart, preserving line
// order. Empty slot yields ErrNotFound; an undecodable payload yields
// ErrCorruptState with the slot key attached.
func (r *CartRepository) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	key := cartKey(sessionID)
	payload, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart %s: %w", key, err)
	}

	var items []storedItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, apperrors.CorruptState(key, err)
	}

	cart := domain.NewCart(sessionID, r.currency)
	for _, it := range items {
		cart.Items = append(cart.Items, domain.CartItem{
			Product:  it.Product,
			Quantity: it.Quantity,
			Size:     it.Size,
		})
	}
	return cart, nil
}

// Save serializes the cart's lines into the session's slot and refreshes
// the TTL. An empty cart clears the slot instead of storing an empty list.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart.IsEmpty() {
		return r.Delete(ctx, cart.SessionID)
	}

	items := make([]storedItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, storedItem{
			Product:  it.Product,
			Quantity: it.Quantity,
			Size:     it.Size,
		})
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart %s: %w", cart.SessionID, err)
	}

	if err := r.client.Set(ctx, cartKey(cart.SessionID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving cart %s: %w", cart.SessionID, err)
	}
	return nil
}

// Delete clears the session's slot. Deleting a missing slot is not an error.
func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting cart %s: %w", sessionID, err)
	}
	return nil
}

// Ping verifies connectivity, used by the readiness probe.
func (r *CartRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
