package adminControllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snackbasket/storefront-api/models"
)

type CouponRuleInput struct {
	Code          string     `json:"code" binding:"required"`
	DiscountType  string     `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue float64    `json:"discount_value" binding:"required,gt=0"`
	MinOrderValue float64    `json:"min_order_value" binding:"min=0"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// POST /admin/coupons
// Upserts a coupon rule so admins can refresh an expiring code in place.
func CreateCouponRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CouponRuleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.DiscountType == models.DiscountTypePercentage && input.DiscountValue > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Percentage discount cannot exceed 100"})
			return
		}

		rule := models.CouponRule{
			Code:          strings.ToUpper(strings.TrimSpace(input.Code)),
			DiscountType:  input.DiscountType,
			DiscountValue: input.DiscountValue,
			MinOrderValue: input.MinOrderValue,
			ExpiresAt:     input.ExpiresAt,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).Create(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save coupon rule"})
			return
		}

		c.JSON(http.StatusCreated, rule)
	}
}

// GET /admin/coupons
func ListCouponRules(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rules []models.CouponRule
		if err := db.Order("code").Find(&rules).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupon rules"})
			return
		}
		c.JSON(http.StatusOK, rules)
	}
}

// DELETE /admin/coupons/:code
func DeleteCouponRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.ToUpper(c.Param("code"))
		result := db.Delete(&models.CouponRule{}, "code = ?", code)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon rule"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon rule not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Coupon rule deleted"})
	}
}
