package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// CartRepository is the persistent slot holding each session's cart.
//
// Load returns apperrors.ErrNotFound when the slot is empty and
// apperrors.ErrCorruptState when the stored payload cannot be decoded;
// callers decide how to recover.
//
// There is no cross-process locking on a slot: two service instances
// writing the same session race last-writer-wins. Known limitation.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
