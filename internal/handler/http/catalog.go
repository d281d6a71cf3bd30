package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CatalogHandler serves product browsing endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler builds the catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List handles GET /products. Facets arrive as query parameters; list
// parameters are comma-separated.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sortKey, err := catalog.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	visible := 0
	if raw := r.URL.Query().Get("visible"); raw != "" {
		visible, err = strconv.Atoi(raw)
		if err != nil || visible < 0 {
			writeError(w, r, apperrors.InvalidInput("visible must be a non-negative integer"))
			return
		}
	}

	respondJSON(w, http.StatusOK, h.catalog.List(filter, sortKey, visible))
}

// Get handles GET /products/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, apperrors.InvalidInput("product id must be an integer"))
		return
	}

	product, err := h.catalog.GetByID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Facets handles GET /products/facets.
func (h *CatalogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Facets())
}

func parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{
		Search: strings.TrimSpace(q.Get("search")),
		Brands: splitList(q.Get("brands")),
		Colors: splitList(q.Get("colors")),
		OnSale: q.Get("on_sale") == "true",
	}

	for _, raw := range splitList(q.Get("sizes")) {
		size, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.Filter{}, apperrors.InvalidInput("sizes must be numbers")
		}
		f.Sizes = append(f.Sizes, size)
	}

	var err error
	if f.MinPrice, err = parsePrice(q.Get("min_price")); err != nil {
		return catalog.Filter{}, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("max_price")); err != nil {
		return catalog.Filter{}, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return catalog.Filter{}, apperrors.InvalidInput("min_price must not exceed max_price")
	}
	return f, nil
}

func parsePrice(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, apperrors.InvalidInput("prices must be non-negative integers in minor units")
	}
	return &v, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
