package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CatalogSource supplies the product collection, either the upstream
// product service or the embedded seed.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// ProductPage is a filtered, sorted, windowed catalog view.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Visible  int              `json:"visible"`
	HasMore  bool             `json:"has_more"`
}

// Facets describes the filter options derivable from the loaded catalog.
type Facets struct {
	Brands     []string  `json:"brands"`
	Categories []string  `json:"categories"`
	Sizes      []float64 `json:"sizes"`
	Colors     []string  `json:"colors"`
	PriceMin   int64     `json:"price_min"`
	PriceMax   int64     `json:"price_max"`
}

// CatalogService holds the product collection in memory and answers
// browse queries against it. Reads vastly outnumber refreshes.
type CatalogService struct {
	source   CatalogSource
	engine   *catalog.Engine
	logger   *slog.Logger
	pageSize int

	mu       sync.RWMutex
	products []domain.Product
}

// NewCatalogService builds the catalog over the given source. Call Refresh
// before serving queries.
func NewCatalogService(source CatalogSource, engine *catalog.Engine, pageSize int, logger *slog.Logger) *CatalogService {
	return &CatalogService{source: source, engine: engine, pageSize: pageSize, logger: logger}
}

// Refresh reloads the product collection from the source.
func (s *CatalogService) Refresh(ctx context.Context) error {
	products, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "catalog loaded", slog.Int("products", len(products)))
	return nil
}

// ProductCount returns the size of the loaded collection.
func (s *CatalogService) ProductCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// List applies the filter and sort, then windows the result to the
// requested visible count. visible <= 0 means one page; any other value is
// snapped to whole pages, capped at the result size.
func (s *CatalogService) List(f catalog.Filter, key catalog.SortKey, visible int) ProductPage {
	s.mu.RLock()
	matched := s.engine.FilterAndSort(s.products, f, key)
	s.mu.RUnlock()

	window := catalog.NewReveal(s.pageSize, len(matched))
	for window.Visible() < visible && window.HasMore() {
		window.LoadMore()
	}

	return ProductPage{
		Products: matched[:window.Visible()],
		Total:    window.Total(),
		Visible:  window.Visible(),
		HasMore:  window.HasMore(),
	}
}

// GetByID returns the product with the given id, or ErrNotFound.
func (s *CatalogService) GetByID(id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i].Snapshot()
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", fmt.Sprintf("%d", id))
}

// Facets derives the filter options from the loaded catalog: distinct
// brands, categories, sizes, and colors, plus the price range.
func (s *CatalogService) Facets() Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()

	brands := map[string]struct{}{}
	categories := map[string]struct{}{}
	sizes := map[float64]struct{}{}
	colors := map[string]struct{}{}

	f := Facets{}
	for i := range s.products {
		p := &s.products[i]
		brands[p.Brand] = struct{}{}
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
		for _, sz := range p.Sizes {
			sizes[sz] = struct{}{}
		}
		for _, c := range p.Colors {
			colors[strings.ToUpper(c)] = struct{}{}
		}
		if f.PriceMin == 0 || p.Price < f.PriceMin {
			f.PriceMin = p.Price
		}
		if p.Price > f.PriceMax {
			f.PriceMax = p.Price
		}
	}

	f.Brands = sortedKeys(brands)
	f.Categories = sortedKeys(categories)
	f.Colors = sortedKeys(colors)
	f.Sizes = make([]float64, 0, len(sizes))
	for sz := range sizes {
		f.Sizes = append(f.Sizes, sz)
	}
	sort.Float64s(f.Sizes)
	return f
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
