package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snackbasket/storefront-api/models"
)

func TestDeriveNoCoupon(t *testing.T) {
	tests := []struct {
		name         string
		subtotal     float64
		wantTax      float64
		wantShipping float64
		wantTotal    float64
	}{
		{"zero subtotal still pays flat shipping", 0, 0, 40, 40},
		{"below free shipping threshold", 200, 36, 40, 276},
		{"exactly at threshold keeps flat fee", 299, 53.82, 40, 392.82},
		{"above threshold ships free", 300, 54, 0, 354},
		{"large order", 1000, 180, 0, 1180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.subtotal, nil)
			assert.Equal(t, tt.subtotal, got.DiscountedSubtotal)
			assert.InDelta(t, tt.wantTax, got.TaxAmount, 1e-9)
			assert.Equal(t, tt.wantShipping, got.ShippingCost)
			assert.InDelta(t, tt.wantTotal, got.TotalAmount, 1e-9)
		})
	}
}

func TestDerivePercentageCoupon(t *testing.T) {
	coupon := &models.Coupon{Code: "SAVE10", DiscountType: models.DiscountTypePercentage, DiscountValue: 10}

	got := Derive(500, coupon)
	assert.Equal(t, 450.0, got.DiscountedSubtotal)
	assert.InDelta(t, 81.0, got.TaxAmount, 1e-9)
	assert.Equal(t, 0.0, got.ShippingCost)
	assert.InDelta(t, 531.0, got.TotalAmount, 1e-9)

	// a discount over 100% floors at zero rather than going negative
	silly := &models.Coupon{Code: "ALL", DiscountType: models.DiscountTypePercentage, DiscountValue: 150}
	got = Derive(100, silly)
	assert.Equal(t, 0.0, got.DiscountedSubtotal)
	assert.Equal(t, 0.0, got.TaxAmount)
	assert.Equal(t, FlatShippingFee, got.ShippingCost)
}

func TestDeriveFixedCoupon(t *testing.T) {
	// scenario: subtotal 350 with a 50-off coupon crosses the free shipping
	// threshold after discounting
	coupon := &models.Coupon{Code: "FLAT50", DiscountType: models.DiscountTypeFixed, DiscountValue: 50}
	got := Derive(350, coupon)
	assert.Equal(t, 300.0, got.DiscountedSubtotal)
	assert.InDelta(t, 54.0, got.TaxAmount, 1e-9)
	assert.Equal(t, 0.0, got.ShippingCost)
	assert.InDelta(t, 354.0, got.TotalAmount, 1e-9)

	// discount larger than subtotal floors at zero
	got = Derive(30, coupon)
	assert.Equal(t, 0.0, got.DiscountedSubtotal)
}

func TestApply(t *testing.T) {
	cart := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "p1", Price: 100, Quantity: 2},
		},
	}

	Apply(cart)
	assert.Equal(t, 200.0, cart.Subtotal)
	assert.InDelta(t, 36.0, cart.TaxAmount, 1e-9)
	assert.Equal(t, 40.0, cart.ShippingCost)
	assert.InDelta(t, 276.0, cart.TotalAmount, 1e-9)

	// clearing the cart clears every charge, shipping included
	cart.Items = nil
	Apply(cart)
	assert.Zero(t, cart.Subtotal)
	assert.Zero(t, cart.TaxAmount)
	assert.Zero(t, cart.ShippingCost)
	assert.Zero(t, cart.TotalAmount)
}

func TestSubtotal(t *testing.T) {
	items := []models.CartItem{
		{Price: 99.5, Quantity: 2},
		{Price: 45, Quantity: 1},
	}
	assert.InDelta(t, 244.0, Subtotal(items), 1e-9)
	assert.Zero(t, Subtotal(nil))
}
