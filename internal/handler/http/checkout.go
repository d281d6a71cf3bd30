package http

import (
	"net/http"

	"github.com/utafrali/storefront/internal/service"
)

// CheckoutHandler serves quoting and order submission.
type CheckoutHandler struct {
	checkout *service.CheckoutService
}

// NewCheckoutHandler builds the checkout handler.
func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type quoteRequest struct {
	CouponCode     string `json:"coupon_code"`
	ShippingMethod string `json:"shipping_method" validate:"required,oneof=standard express free"`
}

// Quote handles POST /checkout/quote.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	quote, err := h.checkout.Quote(r.Context(), SessionID(r.Context()), req.CouponCode, req.ShippingMethod)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

type submitRequest struct {
	Email          string `json:"email" validate:"required,email"`
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Address        string `json:"address" validate:"required,max=255"`
	City           string `json:"city" validate:"required,max=100"`
	ZipCode        string `json:"zip_code" validate:"required,max=20"`
	ShippingMethod string `json:"shipping_method" validate:"required,oneof=standard express free"`
	CouponCode     string `json:"coupon_code"`
	PaymentMethod  string `json:"payment_method" validate:"required,oneof=card pse cash"`
	CardNumber     string `json:"card_number"`
	CardName       string `json:"card_name"`
	CardExpiry     string `json:"card_expiry"`
	CardCVV        string `json:"card_cvv"`
}

// Submit handles POST /checkout.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	receipt, err := h.checkout.Submit(r.Context(), SessionID(r.Context()), service.SubmitInput{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Address:        req.Address,
		City:           req.City,
		ZipCode:        req.ZipCode,
		ShippingMethod: req.ShippingMethod,
		CouponCode:     req.CouponCode,
		PaymentMethod:  req.PaymentMethod,
		CardNumber:     req.CardNumber,
		CardName:       req.CardName,
		CardExpiry:     req.CardExpiry,
		CardCVV:        req.CardCVV,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}
