// Package seed ships the built-in product catalog used when no upstream
// product service is configured.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

//go:embed catalog.json
var catalogJSON []byte

// Source adapts the embedded catalog to the catalog source interface.
type Source struct{}

// Fetch returns the embedded products.
func (Source) Fetch(_ context.Context) ([]domain.Product, error) {
	return Products()
}

// Products returns a fresh copy of the embedded catalog.
func Products() ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(catalogJSON, &products); err != nil {
		return nil, fmt.Errorf("decoding embedded catalog: %w", err)
	}
	return products, nil
}
