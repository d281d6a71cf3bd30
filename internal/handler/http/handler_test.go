package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/catalog/seed"
	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/health"
)

type fakeCartRepository struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newFakeCartRepository() *fakeCartRepository {
	return &fakeCartRepository{carts: make(map[string]*domain.Cart)}
}

func (r *fakeCartRepository) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[sessionID]
	if !ok {
		return nil, apperrors.NotFound("cart", sessionID)
	}
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (r *fakeCartRepository) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	r.carts[cart.SessionID] = &cp
	return nil
}

func (r *fakeCartRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}

type fakeSubmitter struct{}

func (fakeSubmitter) Submit(context.Context, client.OrderSubmission) (string, error) {
	return "ORD-http-test", nil
}

type fakeAuthBackend struct{}

func (fakeAuthBackend) Login(_ context.Context, email, password string) (*client.Session, error) {
	if password != "correcthorse" {
		return nil, apperrors.Unauthorized("invalid credentials")
	}
	return &client.Session{Token: "tok-1", User: client.User{ID: "u-1", Email: email}}, nil
}

func (fakeAuthBackend) Register(_ context.Context, in client.RegisterInput) (*client.Session, error) {
	return &client.Session{Token: "tok-2", User: client.User{ID: "u-2", Email: in.Email}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	catalogSvc := service.NewCatalogService(seed.Source{}, catalog.NewEngine(language.Spanish), 8, logger)
	require.NoError(t, catalogSvc.Refresh(context.Background()))

	carts := service.NewCartService(newFakeCartRepository(), nil, "COP", logger)
	policy := domain.ShippingPolicy{StandardFee: 5000, ExpressFee: 15000, FreeThreshold: 150000}
	coupons := map[string]domain.Coupon{"WELCOME15": {Code: "WELCOME15", DiscountBps: 1500}}
	checkout := service.NewCheckoutService(carts, fakeSubmitter{}, nil, policy, 1900, coupons, logger)

	router := NewRouter(RouterConfig{
		ServiceName: "storefront-test",
		Logger:      logger,
		Health:      health.NewHandler(),
		Catalog:     NewCatalogHandler(catalogSvc),
		Cart:        NewCartHandler(carts, catalogSvc),
		Checkout:    NewCheckoutHandler(checkout),
		Auth:        NewAuthHandler(fakeAuthBackend{}),
		JWTSecret:   "test-secret",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, sessionID string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestListProductsFirstPage(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page service.ProductPage
	decodeBody(t, resp, &page)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 8, page.Visible)
	assert.True(t, page.HasMore)
}

func TestListProductsFilteredAndSorted(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/products?brands=Nike,Jordan&sort=price_desc", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page service.ProductPage
	decodeBody(t, resp, &page)
	require.Equal(t, 4, page.Total)
	assert.Equal(t, "Air Jordan 4 Retro Military Black", page.Products[0].Name)
}

func TestListProductsBadSortKey(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/products?sort=bogus", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProductNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/products/999", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestProductFacets(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/products/facets", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var facets service.Facets
	decodeBody(t, resp, &facets)
	assert.Contains(t, facets.Brands, "Vans")
	assert.Positive(t, facets.PriceMax)
}

func TestCartLifecycle(t *testing.T) {
	srv := newTestServer(t)
	const sess = "sess-http-1"

	// Empty cart for a fresh session.
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/cart", sess, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart cartResponse
	decodeBody(t, resp, &cart)
	assert.Zero(t, cart.ItemCount)

	// Add two of product 1 in size 9.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/cart/items", sess, map[string]any{
		"product_id": 1, "quantity": 2, "size": 9,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, int64(36000), cart.TotalAmount)

	// Update the quantity.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/cart/items/1", sess, map[string]any{
		"quantity": 5, "size": 9,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Equal(t, 5, cart.ItemCount)

	// Remove the line; removing again still succeeds.
	for i := 0; i < 2; i++ {
		resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/cart/items/1?size=9", sess, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &cart)
		assert.Zero(t, cart.ItemCount)
	}
}

func TestCartAddWithoutSize(t *testing.T) {
	srv := newTestServer(t)
	const sess = "sess-nosize"

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cart/items", sess, map[string]any{
		"product_id": 1, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart cartResponse
	decodeBody(t, resp, &cart)
	require.Equal(t, 1, cart.ItemCount)
	assert.Nil(t, cart.Items[0].Size)
}

func TestCartSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cart/items", "sess-a", map[string]any{
		"product_id": 1, "quantity": 1, "size": 9,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/cart", "sess-b", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart cartResponse
	decodeBody(t, resp, &cart)
	assert.Zero(t, cart.ItemCount)
}

func TestCartMissingSessionGetsGeneratedID(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/cart", "", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Session-ID"))
}

func TestAddUnknownProduct(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cart/items", "sess-1", map[string]any{
		"product_id": 999, "quantity": 1,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddItemValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cart/items", "sess-1", map[string]any{
		"quantity": 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Fields, "ProductID")
}

func TestCheckoutQuoteAndSubmit(t *testing.T) {
	srv := newTestServer(t)
	const sess = "sess-checkout"

	// Two Air Jordan 1 in size 10: subtotal 36,000, no discount.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cart/items", sess, map[string]any{
		"product_id": 1, "quantity": 2, "size": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/checkout/quote", sess, map[string]any{
		"shipping_method": "standard", "coupon_code": "WELCOME15",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var quote service.Quote
	decodeBody(t, resp, &quote)
	assert.Equal(t, int64(36000), quote.Totals.Subtotal)
	assert.Equal(t, int64(5400), quote.Totals.CouponDiscount)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/checkout", sess, map[string]any{
		"email": "ana@example.com", "first_name": "Ana", "last_name": "García",
		"address": "Calle 10 #5-51", "city": "Bogotá", "zip_code": "110111",
		"shipping_method": "standard", "payment_method": "card",
		"card_number": "4111111111111111", "card_name": "Ana García",
		"card_expiry": "08/27", "card_cvv": "123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var receipt service.Receipt
	decodeBody(t, resp, &receipt)
	assert.Equal(t, "ORD-http-test", receipt.OrderID)

	// The cart is gone after a successful submission.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/cart", sess, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart cartResponse
	decodeBody(t, resp, &cart)
	assert.Zero(t, cart.ItemCount)
}

func TestCheckoutSubmitPSE(t *testing.T) {
	srv := newTestServer(t)
	const sess = "sess-pse"

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cart/items", sess, map[string]any{
		"product_id": 1, "quantity": 1, "size": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// PSE needs no card fields.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/checkout", sess, map[string]any{
		"email": "ana@example.com", "first_name": "Ana", "last_name": "García",
		"address": "Calle 10 #5-51", "city": "Bogotá", "zip_code": "110111",
		"shipping_method": "standard", "payment_method": "pse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var receipt service.Receipt
	decodeBody(t, resp, &receipt)
	assert.Equal(t, "ORD-http-test", receipt.OrderID)
}

func TestCheckoutSubmitEmptyCart(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/checkout", "sess-empty", map[string]any{
		"email": "ana@example.com", "first_name": "Ana", "last_name": "García",
		"address": "Calle 10 #5-51", "city": "Bogotá", "zip_code": "110111",
		"shipping_method": "standard", "payment_method": "card",
		"card_number": "4111111111111111", "card_name": "Ana García",
		"card_expiry": "08/27", "card_cvv": "123",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "correcthorse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session client.Session
	decodeBody(t, resp, &session)
	assert.Equal(t, "tok-1", session.Token)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]any{
		"email": "ana@example.com", "password": "wrongwrong",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]any{
		"first_name": "Luis", "last_name": "Pérez",
		"email": "luis@example.com", "password": "correcthorse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session client.Session
	decodeBody(t, resp, &session)
	assert.Equal(t, "tok-2", session.Token, "registration issues a session")
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
