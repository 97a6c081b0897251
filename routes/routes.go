package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	catalogControllers "github.com/snackbasket/storefront-api/controllers/catalog"
	shippingControllers "github.com/snackbasket/storefront-api/controllers/shipping"
	"github.com/snackbasket/storefront-api/verify"
)

// Deps carries the external-service clients the route groups need.
type Deps struct {
	Verify   *verify.Client
	Catalog  *catalogControllers.Client
	Shipping *shippingControllers.Client
}

func SetupRoutes(router *gin.Engine, db *gorm.DB, deps Deps) {
	SetupAuthRoutes(router, db, deps.Verify)
	SetupCartRoutes(router, db)
	SetupCatalogRoutes(router, deps.Catalog)
	SetupOrderRoutes(router, db)
	SetupShippingRoutes(router, db, deps.Shipping)
	SetupAdminRoutes(router, db)
}
