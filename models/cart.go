package models

import (
	"errors"
	"time"
)

// CartStatus represents the current state of a cart
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusCompleted CartStatus = "completed"
)

// Coupon discount types
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Standard cart errors
var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartExpired     = errors.New("cart has expired")
	ErrItemNotInCart   = errors.New("item not in cart")
	ErrCouponNotValid  = errors.New("coupon not valid or expired")
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	ErrCartEmpty       = errors.New("cart is empty")
)

type Cart struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"index" json:"userId,omitempty"` // empty for guest carts
	Status       CartStatus `gorm:"type:VARCHAR(20);default:'active'" json:"status"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Coupon       *Coupon    `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"coupon,omitempty"`
	Subtotal     float64    `json:"subtotal"`
	TaxAmount    float64    `json:"taxAmount"`
	ShippingCost float64    `json:"shippingCost"`
	TotalAmount  float64    `json:"totalAmount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
}

type CartItem struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CartID      string    `gorm:"index" json:"-"`
	ProductID   string    `gorm:"index" json:"productId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Weight      string    `json:"weight,omitempty"`
	Image       string    `json:"image,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// Coupon is the discount currently attached to a cart. One per cart,
// reapplying replaces it.
type Coupon struct {
	CartID        string    `gorm:"primaryKey" json:"-"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discountType"` // percentage, fixed
	DiscountValue float64   `json:"discountValue"`
	AppliedAt     time.Time `json:"appliedAt"`
}

// CouponRule is a redeemable code definition managed by admins.
type CouponRule struct {
	Code          string     `gorm:"primaryKey" json:"code"`
	DiscountType  string     `gorm:"type:VARCHAR(20)" json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MinOrderValue float64    `json:"min_order_value"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
