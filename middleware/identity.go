package middleware

import "github.com/gin-gonic/gin"

// Identity picks up the first-party identity headers the storefront client
// attaches when a shopper is signed in. Carts created with these present are
// owned; without them the caller operates a guest cart.
func Identity(c *gin.Context) {
	if userID := c.GetHeader("X-User-Id"); userID != "" {
		c.Set("user_id", userID)
	}
	if phone := c.GetHeader("X-User-Phone"); phone != "" {
		c.Set("user_phone", phone)
	}
	c.Next()
}
