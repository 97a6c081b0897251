package cartControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
)

type MergeCartInput struct {
	GuestCartID string `json:"guestCartId" binding:"required"`
}

// POST /carts/:id/checkout
// Marks the cart completed and returns the finalized snapshot for order
// creation. The expiry is left alone so the snapshot stays readable.
func CheckoutCart(db *gorm.DB) gin.HandlerFunc {
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

		now := time.Now().UTC()
		err = db.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
			"status":     models.CartStatusCompleted,
			"updated_at": now,
		}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to checkout cart"})
			return
		}

		cart.Status = models.CartStatusCompleted
		cart.UpdatedAt = now
		c.JSON(http.StatusOK, cart)
	}
}

// POST /carts/:id/merge
// Folds a guest cart's items into the caller's cart. Requires identity
// headers; quantities merge by product id and the guest cart is retired.
func MergeGuestCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_id") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required to merge carts"})
			return
		}

		cart, err := loadCart(db, c.Param("id"))
		if err != nil {
			respondCartError(c, err)
			return
		}
		if ownerMismatch(c, cart) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this cart"})
			return
		}

		var input MergeCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guestCartId is required"})
			return
		}
		if input.GuestCartID == cart.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot merge a cart into itself"})
			return
		}

		guest, err := loadCart(db, input.GuestCartID)
		if err != nil {
			respondCartError(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			byProduct := make(map[string]*models.CartItem, len(cart.Items))
			for i := range cart.Items {
				byProduct[cart.Items[i].ProductID] = &cart.Items[i]
			}

			for _, gi := range guest.Items {
				if existing, ok := byProduct[gi.ProductID]; ok {
					existing.Quantity += gi.Quantity
					if err := tx.Model(&models.CartItem{}).Where("id = ?", existing.ID).
						Update("quantity", existing.Quantity).Error; err != nil {
						return err
					}
					continue
				}
				moved := gi
				moved.ID = uuid.NewString()
				moved.CartID = cart.ID
				if err := tx.Create(&moved).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&models.Cart{}).Where("id = ?", guest.ID).
				Update("status", models.CartStatusCompleted).Error; err != nil {
				return err
			}

			updated, err := loadCart(tx, cart.ID)
			if err != nil {
				return err
			}
			*cart = *updated
			return saveTotals(tx, cart)
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to merge carts"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}
