// Package service implements the storefront's business operations on top of
// the repository, client, and event layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartListener observes cart changes. Listeners run synchronously after the
// new state has been persisted.
type CartListener func(ctx context.Context, cart *domain.Cart)

// CartPublisher is the slice of the event producer the cart service needs.
type CartPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, sessionID string) error
}

// CartService owns all cart mutations. A single mutex serializes them, so
// listeners and persistence always observe a consistent cart.
type CartService struct {
	repo     repository.CartRepository
	producer CartPublisher
	logger   *slog.Logger
	currency string

	mu        sync.Mutex
	listeners []CartListener
}

// NewCartService builds the cart engine. producer may be nil when event
// publishing is not wired, e.g. in tests.
func NewCartService(repo repository.CartRepository, producer CartPublisher, currency string, logger *slog.Logger) *CartService {
	return &CartService{repo: repo, producer: producer, currency: currency, logger: logger}
}

// Subscribe registers a listener for cart changes.
func (s *CartService) Subscribe(l CartListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Get returns the session's cart. A missing slot yields an empty cart; a
// corrupt slot is reset to empty and logged, never surfaced.
func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOrRecover(ctx, sessionID)
}

// AddItem puts quantity units of the product, in the chosen size, into the
// session's cart. Adding a (product, size) pair already present merges into
// the existing line; a nil size is a line of its own. The product is
// snapshotted: price and discount are frozen at add time.
func (s *CartService) AddItem(ctx context.Context, sessionID string, product domain.Product, quantity int, size *float64) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if size != nil && !product.HasSize(*size) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("size %g is not offered for this product", *size))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.loadOrRecover(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.FindItemIndex(product.ID, size); i >= 0 {
		merged := cart.Items[i].Quantity + quantity
		if merged > domain.MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("quantity exceeds the per-line limit of %d", domain.MaxQuantityPerLine))
		}
		cart.Items[i].Quantity = merged
	} else {
		if len(cart.Items) >= domain.MaxLinesPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart holds at most %d distinct items", domain.MaxLinesPerCart))
		}
		if quantity > domain.MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("quantity exceeds the per-line limit of %d", domain.MaxQuantityPerLine))
		}
		cart.Items = append(cart.Items, domain.CartItem{
			Product:  product.Snapshot(),
			Quantity: quantity,
			Size:     size,
		})
	}

	if err := s.persistAndNotify(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, size *float64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID, size)
	}
	if quantity > domain.MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity exceeds the per-line limit of %d", domain.MaxQuantityPerLine))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.loadOrRecover(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.FindItemIndex(productID, size)
	if i < 0 {
		return nil, apperrors.NotFound("cart line", fmt.Sprintf("%d", productID))
	}
	cart.Items[i].Quantity = quantity

	if err := s.persistAndNotify(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem deletes the line matching (productID, size). Removing an
// absent line is a no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64, size *float64) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.loadOrRecover(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.FindItemIndex(productID, size)
	if i < 0 {
		return cart, nil
	}
	cart.RemoveItemAt(i)

	if err := s.persistAndNotify(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the session's cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return apperrors.Wrap(err, "clearing cart")
	}

	if s.producer != nil {
		if err := s.producer.PublishCartCleared(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "publishing cart cleared event failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.notify(ctx, domain.NewCart(sessionID, s.currency))
	return nil
}

// loadOrRecover reads the session's cart, treating an empty slot as an
// empty cart and silently resetting a corrupt one. Callers hold s.mu.
func (s *CartService) loadOrRecover(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.Load(ctx, sessionID)
	switch {
	case err == nil:
		return cart, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return domain.NewCart(sessionID, s.currency), nil
	case errors.Is(err, apperrors.ErrCorruptState):
		s.logger.WarnContext(ctx, "cart slot corrupt, resetting to empty",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		if delErr := s.repo.Delete(ctx, sessionID); delErr != nil {
			s.logger.ErrorContext(ctx, "clearing corrupt cart slot failed",
				slog.String("session_id", sessionID),
				slog.String("error", delErr.Error()),
			)
		}
		return domain.NewCart(sessionID, s.currency), nil
	default:
		return nil, apperrors.Wrap(err, "loading cart")
	}
}

// persistAndNotify saves the cart, then fans out to listeners and the event
// producer. Event failures are logged; the mutation has already succeeded.
// Callers hold s.mu.
func (s *CartService) persistAndNotify(ctx context.Context, cart *domain.Cart) error {
	if err := s.repo.Save(ctx, cart); err != nil {
		return apperrors.Wrap(err, "saving cart")
	}

	if s.producer != nil {
		if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
			s.logger.WarnContext(ctx, "publishing cart updated event failed",
				slog.String("session_id", cart.SessionID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.notify(ctx, cart)
	return nil
}

func (s *CartService) notify(ctx context.Context, cart *domain.Cart) {
	for _, l := range s.listeners {
		l(ctx, cart)
	}
}
