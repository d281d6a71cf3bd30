package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testHTTPClient(t *testing.T, name string) *httpclient.CircuitBreakerClient {
	t.Helper()
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	return httpclient.NewCircuitBreakerClient(httpclient.New(cfg), httpclient.DefaultCircuitBreakerConfig(name), testLogger())
}

func TestProductsClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Air Max 90","brand":"Nike","price":14000},{"id":2,"name":"Chuck 70","brand":"Converse","price":8500}]`))
	}))
	defer srv.Close()

	c := NewProductsClient(srv.URL, testHTTPClient(t, "products-fetch"), testLogger())

	products, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Air Max 90", products[0].Name)
	assert.Equal(t, int64(8500), products[1].Price)
}

func TestProductsClientFetchByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewProductsClient(srv.URL, testHTTPClient(t, "products-404"), testLogger())

	_, err := c.FetchByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductsClientFetchUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewProductsClient(srv.URL, testHTTPClient(t, "products-500"), testLogger())

	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestAuthClientLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@example.com", creds["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-123","user":{"id":"u-1","first_name":"Ana","email":"ana@example.com"}}`))
	}))
	defer srv.Close()

	c := NewAuthClient(srv.URL, testHTTPClient(t, "auth-login"), testLogger())

	session, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", session.Token)
	assert.Equal(t, "Ana", session.User.FirstName)
}

func TestAuthClientLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"credenciales inválidas"}`))
	}))
	defer srv.Close()

	c := NewAuthClient(srv.URL, testHTTPClient(t, "auth-401"), testLogger())

	_, err := c.Login(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "credenciales inválidas")
}

func TestAuthClientRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"tok-456","user":{"id":"u-2","first_name":"Luis","email":"luis@example.com"}}`))
	}))
	defer srv.Close()

	c := NewAuthClient(srv.URL, testHTTPClient(t, "auth-register"), testLogger())

	session, err := c.Register(context.Background(), RegisterInput{
		FirstName: "Luis",
		Email:     "luis@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-456", session.Token)
}

func TestSimulatedOrderGatewaySubmit(t *testing.T) {
	g := NewSimulatedOrderGateway(10*time.Millisecond, testLogger())

	orderID, err := g.Submit(context.Background(), OrderSubmission{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Contains(t, orderID, "ORD-")
}

func TestSimulatedOrderGatewaySubmitCancelled(t *testing.T) {
	g := NewSimulatedOrderGateway(time.Minute, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Submit(ctx, OrderSubmission{SessionID: "sess-1"})
	assert.ErrorIs(t, err, context.Canceled)
}
