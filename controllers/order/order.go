package orderControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
)

// -------- Request Structs --------

type PlaceOrderRequest struct {
	CartID        string `json:"cart_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	City          string `json:"city" binding:"required"`
	State         string `json:"state" binding:"required"`
	Pincode       string `json:"pincode" binding:"required"`
	PaymentMethod string `json:"payment_method"` // defaults to "prepaid"
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Helpers --------

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusConfirmed):
		return models.OrderStatusConfirmed, nil
	case string(models.OrderStatusReadyToShip):
		return models.OrderStatusReadyToShip, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// generateOrderRef builds a human-scannable unique reference, e.g.
// 20250908130500-3f2a...
func generateOrderRef() string {
	return time.Now().UTC().Format("20060102150405") + "-" + uuid.NewString()
}

// -------- Handlers --------

// POST /orders/place
// Builds an order from a checked-out cart snapshot. The cart must have gone
// through /carts/:id/checkout first.
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if req.PaymentMethod == "" {
			req.PaymentMethod = "prepaid"
		}

		var cart models.Cart
		if err := db.Preload("Items").First(&cart, "id = ?", req.CartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if cart.Status != models.CartStatusCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart has not been checked out"})
			return
		}
		if len(cart.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		order := models.Order{
			ID:            uuid.NewString(),
			Ref:           generateOrderRef(),
			UserID:        cart.UserID,
			CartID:        cart.ID,
			Subtotal:      cart.Subtotal,
			TaxAmount:     cart.TaxAmount,
			ShippingCost:  cart.ShippingCost,
			TotalAmount:   cart.TotalAmount,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			PaymentMethod: req.PaymentMethod,
			CustomerName:  req.CustomerName,
			Email:         req.Email,
			Phone:         req.Phone,
			Address:       req.Address,
			City:          req.City,
			State:         req.State,
			Pincode:       req.Pincode,
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		for _, item := range cart.Items {
			order.Items = append(order.Items, models.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Title:     item.Title,
				Image:     item.Image,
				Weight:    item.Weight,
				Price:     item.Price,
				Quantity:  item.Quantity,
			})
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&order).Error
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}

		// confirmation email and dashboard broadcast are best-effort
		sendOrderConfirmation(order)
		broadcastOrderPlaced(order)

		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders/
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/user/:user_id
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		var orders []models.Order
		if err := db.Preload("Items").Where("user_id = ?", userID).
			Order("created_at desc").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// PUT /orders/:order_id/status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		status, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result := db.Model(&models.Order{}).Where("id = ?", c.Param("order_id")).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
	}
}
