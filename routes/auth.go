package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/auth"
	"github.com/snackbasket/storefront-api/verify"
)

func SetupAuthRoutes(router *gin.Engine, db *gorm.DB, v *verify.Client) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/otp/request", auth.RequestOTP(v))
		authGroup.POST("/otp/verify", auth.VerifyOTP(db, v))
		authGroup.POST("/logout", auth.Logout())
	}
}
