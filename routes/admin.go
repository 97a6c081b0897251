package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	adminControllers "github.com/snackbasket/storefront-api/controllers/admin"
	"github.com/snackbasket/storefront-api/middleware"
)

func SetupAdminRoutes(router *gin.Engine, db *gorm.DB) {
	admin := router.Group("/admin")
	admin.Use(middleware.ValidateAPIKey)
	{
		admin.POST("/coupons", adminControllers.CreateCouponRule(db))
		admin.GET("/coupons", adminControllers.ListCouponRules(db))
		admin.DELETE("/coupons/:code", adminControllers.DeleteCouponRule(db))
	}
}
