package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var testPolicy = ShippingPolicy{
	StandardFee:   5000,
	ExpressFee:    15000,
	FreeThreshold: 150000,
}

func TestShippingPolicyCost(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		subtotal int64
		want     int64
		wantErr  bool
	}{
		{name: "standard", method: ShippingStandard, subtotal: 10000, want: 5000},
		{name: "express", method: ShippingExpress, subtotal: 10000, want: 15000},
		{name: "free above threshold", method: ShippingFree, subtotal: 200000, want: 0},
		{name: "free at threshold", method: ShippingFree, subtotal: 150000, want: 0},
		{name: "free below threshold", method: ShippingFree, subtotal: 149999, wantErr: true},
		{name: "unknown method", method: "drone", subtotal: 200000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testPolicy.Cost(tt.method, tt.subtotal)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotalsWithCouponAndStandardShipping(t *testing.T) {
	// 200,000 subtotal, 15% coupon, standard shipping, 19% tax.
	coupon := &Coupon{Code: "WELCOME15", DiscountBps: 1500}

	got := ComputeTotals(200000, coupon, 5000, 1900)

	assert.Equal(t, int64(200000), got.Subtotal)
	assert.Equal(t, int64(30000), got.CouponDiscount)
	assert.Equal(t, int64(5000), got.Shipping)
	assert.Equal(t, int64(33250), got.Tax, "tax applies to subtotal minus discount plus shipping")
	assert.Equal(t, int64(208250), got.Total)
}

func TestComputeTotalsNoCoupon(t *testing.T) {
	got := ComputeTotals(100000, nil, 5000, 1900)

	assert.Zero(t, got.CouponDiscount)
	assert.Equal(t, int64(19950), got.Tax, "shipping is taxed")
	assert.Equal(t, int64(124950), got.Total)
}

func TestComputeTotalsIsExact(t *testing.T) {
	// Repeated computation over the same inputs must agree to the minor unit.
	coupon := &Coupon{Code: "WELCOME15", DiscountBps: 1500}
	first := ComputeTotals(333333, coupon, 5000, 1900)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ComputeTotals(333333, coupon, 5000, 1900))
	}
}

func TestParseCoupon(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Coupon
		wantErr bool
	}{
		{name: "valid", in: "WELCOME15:1500", want: Coupon{Code: "WELCOME15", DiscountBps: 1500}},
		{name: "lowercase code upcased", in: "welcome15:1500", want: Coupon{Code: "WELCOME15", DiscountBps: 1500}},
		{name: "missing separator", in: "WELCOME15", wantErr: true},
		{name: "bad discount", in: "WELCOME15:abc", wantErr: true},
		{name: "discount above 100 percent", in: "WELCOME15:10001", wantErr: true},
		{name: "negative discount", in: "WELCOME15:-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoupon(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
