package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	shippingControllers "github.com/snackbasket/storefront-api/controllers/shipping"
	"github.com/snackbasket/storefront-api/middleware"
)

func SetupShippingRoutes(router *gin.Engine, db *gorm.DB, cl *shippingControllers.Client) {
	shipping := router.Group("/shipping")
	{
		shipping.GET("/serviceability", shippingControllers.CheckServiceabilityHandler(cl))
		shipping.GET("/track/:shipment_id", shippingControllers.TrackShipmentHandler(cl))
		shipping.POST("/orders/:order_id/ship", middleware.ValidateAPIKey, shippingControllers.CreateShipmentHandler(db, cl))
	}
}
