package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderSubmitter hands a finished checkout to the order gateway.
type OrderSubmitter interface {
	Submit(ctx context.Context, sub client.OrderSubmission) (string, error)
}

// CheckoutPublisher is the slice of the event producer checkout needs.
type CheckoutPublisher interface {
	PublishCheckoutSubmitted(ctx context.Context, data event.CheckoutSubmittedData) error
}

// Quote is the order summary for the current cart under the chosen coupon
// and shipping method.
type Quote struct {
	Items                []domain.CartItem `json:"items"`
	ShippingMethod       string            `json:"shipping_method"`
	CouponCode           string            `json:"coupon_code,omitempty"`
	FreeShippingEligible bool              `json:"free_shipping_eligible"`
	Totals               domain.Totals     `json:"totals"`
}

// SubmitInput carries the checkout form. Shape validation happens at the
// handler; this layer checks cross-field semantics.
type SubmitInput struct {
	Email          string
	FirstName      string
	LastName       string
	Address        string
	City           string
	ZipCode        string
	ShippingMethod string
	CouponCode     string
	PaymentMethod  string
	CardNumber     string
	CardName       string
	CardExpiry     string
	CardCVV        string
}

// Receipt confirms an accepted order.
type Receipt struct {
	OrderID        string        `json:"order_id"`
	SessionID      string        `json:"session_id"`
	Email          string        `json:"email"`
	ShippingMethod string        `json:"shipping_method"`
	Totals         domain.Totals `json:"totals"`
	SubmittedAt    time.Time     `json:"submitted_at"`
}

// CheckoutService quotes and submits orders. At most one submission per
// session runs at a time; concurrent attempts are rejected as busy.
type CheckoutService struct {
	carts      *CartService
	orders     OrderSubmitter
	producer   CheckoutPublisher
	logger     *slog.Logger
	policy     domain.ShippingPolicy
	taxRateBps int64
	coupons    map[string]domain.Coupon

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewCheckoutService builds the checkout calculator and submitter.
// producer may be nil when event publishing is not wired.
func NewCheckoutService(
	carts *CartService,
	orders OrderSubmitter,
	producer CheckoutPublisher,
	policy domain.ShippingPolicy,
	taxRateBps int64,
	coupons map[string]domain.Coupon,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:      carts,
		orders:     orders,
		producer:   producer,
		policy:     policy,
		taxRateBps: taxRateBps,
		coupons:    coupons,
		logger:     logger,
		pending:    make(map[string]struct{}),
	}
}

// Quote computes the order summary for the session's cart. An empty cart,
// an unknown coupon, or an ineligible shipping selection is an input
// error; the caller's previous valid state stays untouched.
func (s *CheckoutService) Quote(ctx context.Context, sessionID, couponCode, shippingMethod string) (*Quote, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	coupon, err := s.lookupCoupon(couponCode)
	if err != nil {
		return nil, err
	}

	subtotal := cart.DiscountedSubtotal()
	shipping, err := s.policy.Cost(shippingMethod, subtotal)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		Items:                cart.Items,
		ShippingMethod:       shippingMethod,
		FreeShippingEligible: s.policy.FreeEligible(subtotal),
		Totals:               domain.ComputeTotals(subtotal, coupon, shipping, s.taxRateBps),
	}
	if coupon != nil {
		q.CouponCode = coupon.Code
	}
	return q, nil
}

// Submit validates the form, processes the order, clears the cart, and
// returns the receipt. A second submission for the same session while one
// is in flight fails as busy.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, in SubmitInput) (*Receipt, error) {
	if err := s.acquire(sessionID); err != nil {
		return nil, err
	}
	defer s.release(sessionID)

	if err := validatePayment(in); err != nil {
		return nil, err
	}

	quote, err := s.Quote(ctx, sessionID, in.CouponCode, in.ShippingMethod)
	if err != nil {
		return nil, err
	}

	orderID, err := s.orders.Submit(ctx, client.OrderSubmission{
		SessionID:      sessionID,
		Email:          in.Email,
		Items:          quote.Items,
		ShippingMethod: quote.ShippingMethod,
		CouponCode:     quote.CouponCode,
		Totals:         quote.Totals,
	})
	if err != nil {
		return nil, apperrors.Upstream("orders", err)
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The order is already accepted; an orphaned cart slot expires on
		// its own TTL.
		s.logger.ErrorContext(ctx, "clearing cart after checkout failed",
			slog.String("session_id", sessionID),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	if s.producer != nil {
		if err := s.producer.PublishCheckoutSubmitted(ctx, event.CheckoutSubmittedData{
			OrderID:        orderID,
			SessionID:      sessionID,
			ShippingMethod: quote.ShippingMethod,
			CouponCode:     quote.CouponCode,
			Total:          quote.Totals.Total,
		}); err != nil {
			s.logger.WarnContext(ctx, "publishing checkout event failed",
				slog.String("order_id", orderID),
				slog.String("error", err.Error()),
			)
		}
	}

	return &Receipt{
		OrderID:        orderID,
		SessionID:      sessionID,
		Email:          in.Email,
		ShippingMethod: quote.ShippingMethod,
		Totals:         quote.Totals,
		SubmittedAt:    time.Now().UTC(),
	}, nil
}

func (s *CheckoutService) lookupCoupon(code string) (*domain.Coupon, error) {
	if code == "" {
		return nil, nil
	}
	coupon, ok := s.coupons[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, apperrors.InvalidInput("unknown coupon code")
	}
	return &coupon, nil
}

func (s *CheckoutService) acquire(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, inFlight := s.pending[sessionID]; inFlight {
		return apperrors.Busy("a checkout for this session is already in progress")
	}
	s.pending[sessionID] = struct{}{}
	return nil
}

func (s *CheckoutService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, sessionID)
}

var (
	cardNumberRe = regexp.MustCompile(`^[0-9]{13,19}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cardCVVRe    = regexp.MustCompile(`^[0-9]{3,4}$`)
)

func validatePayment(in SubmitInput) error {
	if in.PaymentMethod != "card" {
		return nil
	}
	number := strings.ReplaceAll(in.CardNumber, " ", "")
	if !cardNumberRe.MatchString(number) {
		return apperrors.InvalidInput("card number must be 13 to 19 digits")
	}
	if strings.TrimSpace(in.CardName) == "" {
		return apperrors.InvalidInput("card holder name is required")
	}
	if !cardExpiryRe.MatchString(in.CardExpiry) {
		return apperrors.InvalidInput("card expiry must be MM/YY")
	}
	if !cardCVVRe.MatchString(in.CardCVV) {
		return apperrors.InvalidInput("card cvv must be 3 or 4 digits")
	}
	return nil
}
