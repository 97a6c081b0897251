package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
	"github.com/snackbasket/storefront-api/pricing"
)

// CartTTL is how long an untouched cart stays retrievable. Every mutation
// pushes the expiry out again.
const CartTTL = 72 * time.Hour

// loadCart fetches a cart with its items and coupon, in display order.
func loadCart(db *gorm.DB, cartID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("added_at, id") }).
		Preload("Coupon").
		First(&cart, "id = ?", cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCartNotFound
		}
		return nil, err
	}
	if time.Now().UTC().After(cart.ExpiresAt) {
		return nil, models.ErrCartExpired
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// saveTotals recomputes derived totals and persists them along with the
// refreshed timestamps. Must run after every item or coupon mutation so the
// stored totals are never stale.
func saveTotals(tx *gorm.DB, cart *models.Cart) error {
	pricing.Apply(cart)
	now := time.Now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(CartTTL)

	return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
		"subtotal":      cart.Subtotal,
		"tax_amount":    cart.TaxAmount,
		"shipping_cost": cart.ShippingCost,
		"total_amount":  cart.TotalAmount,
		"updated_at":    cart.UpdatedAt,
		"expires_at":    cart.ExpiresAt,
	}).Error
}

// ownerMismatch reports whether an owned cart is being touched by someone else.
// Guest carts (no owner) are open to whoever holds the id.
func ownerMismatch(c *gin.Context, cart *models.Cart) bool {
	return cart.UserID != "" && cart.UserID != c.GetString("user_id")
}

// respondCartError maps cart errors onto the HTTP contract.
func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
	case errors.Is(err, models.ErrCartExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Cart has expired"})
	case errors.Is(err, models.ErrItemNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
	case errors.Is(err, models.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, models.ErrCouponNotValid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon not valid or expired"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart operation failed"})
	}
}

func newCart(userID string) *models.Cart {
	now := time.Now().UTC()
	return &models.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    models.CartStatusActive,
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(CartTTL),
	}
}

// POST /carts
func CreateCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart := newCart(c.GetString("user_id"))
		if err := db.Create(cart).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart"})
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

// GET /carts/:id
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := loadCart(db, c.Param("id"))
		if err != nil {
			respondCartError(c, err)
			return
		}
		if ownerMismatch(c, cart) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this cart"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// GET /user/cart
// Returns the caller's newest live cart, creating one on demand. Expired
// carts are retired in the same step so they stop matching future lookups.
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User authentication required"})
			return
		}

		now := time.Now().UTC()
		var cart models.Cart
		err := db.
			Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("added_at, id") }).
			Preload("Coupon").
			Where("user_id = ? AND status = ? AND expires_at > ?", userID, models.CartStatusActive, now).
			Order("created_at DESC").
			First(&cart).Error

		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
				return
			}

			err = db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Model(&models.Cart{}).
					Where("user_id = ? AND status = ? AND expires_at <= ?", userID, models.CartStatusActive, now).
					Update("status", models.CartStatusCompleted).Error; err != nil {
					return err
				}
				fresh := newCart(userID)
				if err := tx.Create(fresh).Error; err != nil {
					return err
				}
				cart = *fresh
				return nil
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart"})
				return
			}
			c.JSON(http.StatusOK, &cart)
			return
		}

		if cart.Items == nil {
			cart.Items = []models.CartItem{}
		}
		c.JSON(http.StatusOK, &cart)
	}
}
