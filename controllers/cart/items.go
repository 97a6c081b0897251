package cartControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
)

type AddItemInput struct {
	ProductID   string  `json:"productId" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	Weight      string  `json:"weight"`
	Image       string  `json:"image"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// POST /carts/:id/items
// Adding a product already in the cart increments the existing line rather
// than creating a duplicate row.
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
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

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var item models.CartItem
			err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, input.ProductID).First(&item).Error
			switch {
			case err == nil:
				item.Quantity += input.Quantity
				if err := tx.Save(&item).Error; err != nil {
					return err
				}
			case err == gorm.ErrRecordNotFound:
				item = models.CartItem{
					ID:          uuid.NewString(),
					CartID:      cart.ID,
					ProductID:   input.ProductID,
					Title:       input.Title,
					Description: input.Description,
					Price:       input.Price,
					Quantity:    input.Quantity,
					Weight:      input.Weight,
					Image:       input.Image,
					AddedAt:     time.Now().UTC(),
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			default:
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
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// PUT /carts/:id/items/:product_id
// Quantities below one are rejected; callers remove the line instead.
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
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

		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be greater than zero"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.CartItem{}).
				Where("cart_id = ? AND product_id = ?", cart.ID, c.Param("product_id")).
				Update("quantity", input.Quantity)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return models.ErrItemNotInCart
			}

			updated, err := loadCart(tx, cart.ID)
			if err != nil {
				return err
			}
			*cart = *updated
			return saveTotals(tx, cart)
		})
		if err != nil {
			respondCartError(c, err)
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /carts/:id/items/:product_id
// Removing the last item leaves an empty but still-active cart.
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
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
			result := tx.Where("cart_id = ? AND product_id = ?", cart.ID, c.Param("product_id")).
				Delete(&models.CartItem{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return models.ErrItemNotInCart
			}

			updated, err := loadCart(tx, cart.ID)
			if err != nil {
				return err
			}
			*cart = *updated
			return saveTotals(tx, cart)
		})
		if err != nil {
			respondCartError(c, err)
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /carts/:id/items
func ClearCart(db *gorm.DB) gin.HandlerFunc {
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
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			cart.Items = []models.CartItem{}
			return saveTotals(tx, cart)
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}
