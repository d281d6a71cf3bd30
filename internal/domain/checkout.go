package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Shipping method identifiers accepted by checkout.
const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
	ShippingFree     = "free"
)

// ShippingPolicy holds the flat shipping fees and the free-shipping
// eligibility threshold, all in minor currency units.
type ShippingPolicy struct {
	StandardFee   int64
	ExpressFee    int64
	FreeThreshold int64
}

// FreeEligible reports whether the subtotal qualifies for free shipping.
func (p ShippingPolicy) FreeEligible(subtotal int64) bool {
	return subtotal >= p.FreeThreshold
}

// Cost returns the shipping fee for the chosen method given the
// discount-adjusted subtotal. Selecting the free method below the threshold
// is an input error, as is an unknown method.
func (p ShippingPolicy) Cost(method string, subtotal int64) (int64, error) {
	switch method {
	case ShippingStandard:
		return p.StandardFee, nil
	case ShippingExpress:
		return p.ExpressFee, nil
	case ShippingFree:
		if !p.FreeEligible(subtotal) {
			return 0, apperrors.InvalidInput(fmt.Sprintf("free shipping requires a subtotal of at least %d", p.FreeThreshold))
		}
		return 0, nil
	default:
		return 0, apperrors.InvalidInput(fmt.Sprintf("unknown shipping method %q", method))
	}
}

// Coupon is a flat percentage discount expressed in basis points
// (1500 = 15%).
type Coupon struct {
	Code        string
	DiscountBps int64
}

// ParseCoupon parses a "CODE:bps" pair, as carried in configuration.
func ParseCoupon(s string) (Coupon, error) {
	code, bps, ok := strings.Cut(s, ":")
	if !ok {
		return Coupon{}, fmt.Errorf("coupon %q: want CODE:bps", s)
	}
	var discount int64
	if _, err := fmt.Sscanf(bps, "%d", &discount); err != nil {
		return Coupon{}, fmt.Errorf("coupon %q: bad discount: %w", s, err)
	}
	if discount < 0 || discount > 10000 {
		return Coupon{}, fmt.Errorf("coupon %q: discount out of range", s)
	}
	return Coupon{Code: strings.ToUpper(strings.TrimSpace(code)), DiscountBps: discount}, nil
}

// Totals is the checkout money breakdown, all figures in minor units.
type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	CouponDiscount int64 `json:"coupon_discount"`
	Shipping       int64 `json:"shipping"`
	Tax            int64 `json:"tax"`
	Total          int64 `json:"total"`
}

// ComputeTotals derives the checkout breakdown. The coupon applies to the
// subtotal, tax applies to subtotal minus discount plus shipping, and every
// step uses integer basis-point arithmetic so the result is exact and
// reproducible.
func ComputeTotals(subtotal int64, coupon *Coupon, shipping int64, taxRateBps int64) Totals {
	t := Totals{Subtotal: subtotal, Shipping: shipping}
	if coupon != nil {
		t.CouponDiscount = subtotal * coupon.DiscountBps / 10000
	}
	taxable := subtotal - t.CouponDiscount + t.Shipping
	t.Tax = taxable * taxRateBps / 10000
	t.Total = taxable + t.Tax
	return t
}
