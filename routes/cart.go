package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/snackbasket/storefront-api/controllers/cart"
	"github.com/snackbasket/storefront-api/middleware"
)

func SetupCartRoutes(router *gin.Engine, db *gorm.DB) {
	carts := router.Group("/carts")
	carts.Use(middleware.Identity)
	{
		carts.POST("", cartControllers.CreateCart(db))
		carts.GET("/:id", cartControllers.GetCart(db))
		carts.POST("/:id/items", cartControllers.AddCartItem(db))
		carts.PUT("/:id/items/:product_id", cartControllers.UpdateCartItem(db))
		carts.DELETE("/:id/items/:product_id", cartControllers.DeleteCartItem(db))
		carts.DELETE("/:id/items", cartControllers.ClearCart(db))
		carts.POST("/:id/coupon", cartControllers.ApplyCoupon(db))
		carts.DELETE("/:id/coupon", cartControllers.RemoveCoupon(db))
		carts.POST("/:id/checkout", cartControllers.CheckoutCart(db))
		carts.POST("/:id/merge", cartControllers.MergeGuestCart(db))
	}

	user := router.Group("/user")
	user.Use(middleware.Identity)
	{
		user.GET("/cart", cartControllers.GetUserCart(db))
	}
}
