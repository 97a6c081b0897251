package pricing

import "github.com/snackbasket/storefront-api/models"

// Storefront-wide pricing constants. The cart service and the client SDK
// fallback both derive totals through this package so the two paths can never
// disagree at checkout.
const (
	TaxRate               = 0.18
	FreeShippingThreshold = 299.0
	FlatShippingFee       = 40.0
)

// Totals is the result of deriving charges from a subtotal and coupon.
type Totals struct {
	Subtotal           float64
	DiscountedSubtotal float64
	TaxAmount          float64
	ShippingCost       float64
	TotalAmount        float64
}

// Subtotal sums price x quantity over the cart lines.
func Subtotal(items []models.CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Derive computes discount, tax and shipping for a subtotal.
// Discount applies to the subtotal first; tax and shipping are computed on
// the discounted amount. Shipping is free above the threshold, otherwise the
// flat fee applies.
func Derive(subtotal float64, coupon *models.Coupon) Totals {
	discounted := subtotal
	if coupon != nil {
		switch coupon.DiscountType {
		case models.DiscountTypePercentage:
			discounted = subtotal - (coupon.DiscountValue/100)*subtotal
		case models.DiscountTypeFixed:
			discounted = subtotal - coupon.DiscountValue
		}
		if discounted < 0 {
			discounted = 0
		}
	}

	tax := discounted * TaxRate

	shipping := FlatShippingFee
	if discounted > FreeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal:           subtotal,
		DiscountedSubtotal: discounted,
		TaxAmount:          tax,
		ShippingCost:       shipping,
		TotalAmount:        discounted + tax + shipping,
	}
}

// Apply recomputes a cart's stored totals in place. An empty cart carries no
// charges at all, matching what a freshly created or cleared cart reports.
func Apply(cart *models.Cart) {
	if len(cart.Items) == 0 {
		cart.Subtotal = 0
		cart.TaxAmount = 0
		cart.ShippingCost = 0
		cart.TotalAmount = 0
		return
	}

	t := Derive(Subtotal(cart.Items), cart.Coupon)
	cart.Subtotal = t.Subtotal
	cart.TaxAmount = t.TaxAmount
	cart.ShippingCost = t.ShippingCost
	cart.TotalAmount = t.TotalAmount
}
