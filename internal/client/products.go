// Package client holds the storefront's upstream REST collaborators: the
// product catalog, the auth backend, and the order gateway.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// ProductsClient fetches the catalog from the upstream product service.
type ProductsClient struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewProductsClient builds a client rooted at baseURL (no trailing slash).
func NewProductsClient(baseURL string, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *ProductsClient {
	return &ProductsClient{baseURL: baseURL, http: hc, logger: logger}
}

// Fetch returns the full product collection.
func (c *ProductsClient) Fetch(ctx context.Context) ([]domain.Product, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/products")
	if err != nil {
		return nil, apperrors.Upstream("products", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Upstream("products", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, apperrors.Upstream("products", fmt.Errorf("decoding response: %w", err))
	}
	return products, nil
}

// FetchByID returns one product, or ErrNotFound for an unknown id.
func (c *ProductsClient) FetchByID(ctx context.Context, id int64) (*domain.Product, error) {
	resp, err := c.http.Get(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id))
	if err != nil {
		return nil, apperrors.Upstream("products", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFound("product", fmt.Sprintf("%d", id))
	default:
		return nil, apperrors.Upstream("products", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, apperrors.Upstream("products", fmt.Errorf("decoding response: %w", err))
	}
	return &product, nil
}
