package cartControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
)

type ApplyCouponInput struct {
	Code string `json:"code" binding:"required"`
}

// validateRule checks a coupon rule against the cart's undiscounted subtotal.
func validateRule(rule *models.CouponRule, subtotal float64, now time.Time) error {
	if rule.ExpiresAt != nil && now.After(*rule.ExpiresAt) {
		return models.ErrCouponNotValid
	}
	if subtotal < rule.MinOrderValue {
		return models.ErrCouponNotValid
	}
	return nil
}

// POST /carts/:id/coupon
// Applies at most one coupon; reapplying replaces the previous one.
func ApplyCoupon(db *gorm.DB) gin.HandlerFunc {
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
		if len(cart.Items) == 0 {
			respondCartError(c, models.ErrCartEmpty)
			return
		}

		var input ApplyCouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon code is required"})
			return
		}
		code := strings.ToUpper(strings.TrimSpace(input.Code))

		var rule models.CouponRule
		if err := db.First(&rule, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondCartError(c, models.ErrCouponNotValid)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up coupon"})
			return
		}
		if err := validateRule(&rule, cart.Subtotal, time.Now().UTC()); err != nil {
			respondCartError(c, err)
			return
		}

		coupon := models.Coupon{
			CartID:        cart.ID,
			Code:          rule.Code,
			DiscountType:  rule.DiscountType,
			DiscountValue: rule.DiscountValue,
			AppliedAt:     time.Now().UTC(),
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			// replace any previously applied coupon
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.Coupon{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&coupon).Error; err != nil {
				return err
			}
			cart.Coupon = &coupon
			return saveTotals(tx, cart)
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply coupon"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /carts/:id/coupon
// Removing when no coupon is applied is a no-op returning the unchanged cart.
func RemoveCoupon(db *gorm.DB) gin.HandlerFunc {
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

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.Coupon{}).Error; err != nil {
				return err
			}
			cart.Coupon = nil
			return saveTotals(tx, cart)
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove coupon"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}
