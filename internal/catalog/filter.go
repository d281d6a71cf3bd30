// Package catalog implements the storefront's in-memory product browsing:
// conjunctive facet filtering, stable sorting, and the incremental reveal
// window used for paging.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Filter holds the active facet selections. A zero-valued facet is neutral:
// it excludes nothing. Facets combine conjunctively; values within one facet
// combine disjunctively.
type Filter struct {
	Search   string
	Brands   []string
	MinPrice *int64
	MaxPrice *int64
	Sizes    []float64
	Colors   []string
	OnSale   bool
}

// SortKey selects the catalog ordering.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNewest    SortKey = "newest"
)

// ParseSortKey validates a sort key from the wire. The empty string maps to
// the featured (source) ordering.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortFeatured, nil
	case SortFeatured, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNewest:
		return SortKey(s), nil
	default:
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown sort key %q", s))
	}
}

// Engine evaluates filters and sorts over product slices. It never mutates
// its input; callers get a fresh slice every time.
type Engine struct {
	locale language.Tag
}

// NewEngine returns an engine whose name ordering follows the given locale.
func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

// FilterAndSort applies the filter and ordering to products and returns the
// result as a new slice. The input slice and its elements are left untouched,
// and equal elements keep their relative source order.
func (e *Engine) FilterAndSort(products []domain.Product, f Filter, key SortKey) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for i := range products {
		if e.matches(&products[i], f) {
			out = append(out, products[i])
		}
	}
	e.sortProducts(out, key)
	return out
}

func (e *Engine) matches(p *domain.Product, f Filter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Brand), q) {
			return false
		}
	}
	if len(f.Brands) > 0 && !containsFold(f.Brands, p.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if len(f.Sizes) > 0 && !anySize(p.Sizes, f.Sizes) {
		return false
	}
	if len(f.Colors) > 0 && !anyColor(p.Colors, f.Colors) {
		return false
	}
	if f.OnSale && !p.OnSale() {
		return false
	}
	return true
}

func (e *Engine) sortProducts(products []domain.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortNameAsc:
		// Collators carry internal buffers, so build one per call rather
		// than sharing across goroutines.
		c := collate.New(e.locale, collate.IgnoreCase)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Name, products[j].Name) < 0
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	case SortFeatured:
		// Source order is the featured order.
	}
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func anySize(have, want []float64) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func anyColor(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
