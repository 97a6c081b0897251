package routes

import (
	"github.com/gin-gonic/gin"

	catalogControllers "github.com/snackbasket/storefront-api/controllers/catalog"
)

func SetupCatalogRoutes(router *gin.Engine, cl *catalogControllers.Client) {
	catalog := router.Group("/catalog")
	{
		catalog.GET("/products", catalogControllers.GetProducts(cl))
		catalog.GET("/products/:handle", catalogControllers.GetProductByHandle(cl))
		catalog.GET("/collections/:handle", catalogControllers.GetCollection(cl))
	}
}
