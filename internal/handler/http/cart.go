package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartHandler serves the session cart endpoints.
type CartHandler struct {
	carts   *service.CartService
	catalog *service.CatalogService
}

// NewCartHandler builds the cart handler. Product lookups go through the
// catalog so cart lines always snapshot a real product.
func NewCartHandler(carts *service.CartService, catalog *service.CatalogService) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

type cartResponse struct {
	SessionID          string            `json:"session_id"`
	Currency           string            `json:"currency"`
	Items              []domain.CartItem `json:"items"`
	ItemCount          int               `json:"item_count"`
	TotalAmount        int64             `json:"total_amount"`
	DiscountedSubtotal int64             `json:"discounted_subtotal"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	return cartResponse{
		SessionID:          cart.SessionID,
		Currency:           cart.Currency,
		Items:              cart.Items,
		ItemCount:          cart.ItemCount(),
		TotalAmount:        cart.TotalAmount(),
		DiscountedSubtotal: cart.DiscountedSubtotal(),
	}
}

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

type addItemRequest struct {
	ProductID int64    `json:"product_id" validate:"required"`
	Quantity  int      `json:"quantity" validate:"required"`
	Size      *float64 `json:"size"`
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	product, err := h.catalog.GetByID(req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), SessionID(r.Context()), *product, req.Quantity, req.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

type updateQuantityRequest struct {
	Quantity int      `json:"quantity"`
	Size     *float64 `json:"size"`
}

// UpdateQuantity handles PUT /cart/items/{productID}. Quantity zero removes
// the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateQuantityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), SessionID(r.Context()), productID, req.Size, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

// RemoveItem handles DELETE /cart/items/{productID}?size=. Removing an
// absent line succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var size *float64
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, r, apperrors.InvalidInput("size must be a number"))
			return
		}
		size = &v
	}

	cart, err := h.carts.RemoveItem(r.Context(), SessionID(r.Context()), productID, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), SessionID(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseProductID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("product id must be an integer")
	}
	return id, nil
}
