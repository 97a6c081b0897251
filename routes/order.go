package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/snackbasket/storefront-api/controllers/order"
	"github.com/snackbasket/storefront-api/middleware"
)

func SetupOrderRoutes(router *gin.Engine, db *gorm.DB) {
	orders := router.Group("/orders")
	{
		orders.POST("/place", middleware.Identity, orderControllers.PlaceOrderHandler(db))
		orders.GET("/user/:user_id", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(db))

		orders.GET("", middleware.ValidateAPIKey, orderControllers.GetAllOrdersHandler(db))
		orders.PUT("/:order_id/status", middleware.ValidateAPIKey, orderControllers.UpdateOrderStatusHandler(db))
		orders.GET("/export", middleware.ValidateAPIKey, orderControllers.ExportOrdersToExcel(db))
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)
	}
}
