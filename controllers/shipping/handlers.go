package shippingControllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
)

func defaultPickupPincode() string {
	if p := os.Getenv("SHIPROCKET_PICKUP_PINCODE"); p != "" {
		return p
	}
	return "110001"
}

// GET /shipping/serviceability?pincode=&weight=&cod=
func CheckServiceabilityHandler(cl *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		pincode := c.Query("pincode")
		if len(pincode) != 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A 6-digit pincode is required"})
			return
		}

		weight := minWeightKg
		if raw := c.Query("weight"); raw != "" {
			if w, err := strconv.ParseFloat(raw, 64); err == nil && w > 0 {
				weight = w
			}
		}
		cod := c.Query("cod") == "1"

		pickup := c.Query("pickup_pincode")
		if pickup == "" {
			pickup = defaultPickupPincode()
		}

		result, err := cl.CheckServiceability(c.Request.Context(), pickup, pincode, weight, cod)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to check serviceability"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// POST /shipping/orders/:order_id/ship
// Registers the order with the courier and stores the shipment id.
func CreateShipmentHandler(db *gorm.DB, cl *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", c.Param("order_id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}
		if order.ShipmentID != "" {
			c.JSON(http.StatusConflict, gin.H{"error": "Order already has a shipment"})
			return
		}

		result, err := cl.CreateShipment(c.Request.Context(), order)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create shipment"})
			return
		}

		if err := db.Model(&order).Updates(map[string]interface{}{
			"shipment_id": strconv.FormatInt(result.ShipmentID, 10),
			"status":      models.OrderStatusReadyToShip,
			"updated_at":  time.Now().UTC(),
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Shipment created but order update failed"})
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

// GET /shipping/track/:shipment_id
func TrackShipmentHandler(cl *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := cl.TrackShipment(c.Request.Context(), c.Param("shipment_id"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch tracking"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
