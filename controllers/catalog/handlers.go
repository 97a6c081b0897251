package catalogControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

func pageSize(c *gin.Context) int {
	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit
}

// GET /catalog/products?limit=&cursor=
func GetProducts(cl *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := cl.ListProducts(c.Request.Context(), pageSize(c), c.Query("cursor"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /catalog/products/:handle
func GetProductByHandle(cl *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := cl.GetProductByHandle(c.Request.Context(), c.Param("handle"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch product"})
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GET /catalog/collections/:handle?limit=&cursor=
func GetCollection(cl *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		col, err := cl.GetCollectionByHandle(c.Request.Context(), c.Param("handle"), pageSize(c), c.Query("cursor"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch collection"})
			return
		}
		if col == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
			return
		}
		c.JSON(http.StatusOK, col)
	}
}
