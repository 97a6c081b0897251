package cartControllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/snackbasket/storefront-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Cart{}, &models.CartItem{}, &models.Coupon{}))
	return db
}

func userCartRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/user/cart", func(c *gin.Context) { c.Set("user_id", userID) }, GetUserCart(db))
	return r
}

func getUserCart(t *testing.T, r *gin.Engine) models.Cart {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	return cart
}

func TestGetUserCartCreatesOnDemand(t *testing.T) {
	db := newTestDB(t)
	r := userCartRouter(db, "u1")

	first := getUserCart(t, r)
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, models.CartStatusActive, first.Status)
	assert.Empty(t, first.Items)

	second := getUserCart(t, r)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetUserCartRetiresExpiredCart(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	expired := &models.Cart{
		ID:        uuid.NewString(),
		UserID:    "u1",
		Status:    models.CartStatusActive,
		CreatedAt: now.Add(-96 * time.Hour),
		UpdatedAt: now.Add(-80 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	require.NoError(t, db.Create(expired).Error)

	r := userCartRouter(db, "u1")

	first := getUserCart(t, r)
	assert.NotEqual(t, expired.ID, first.ID)

	// the expired cart is no longer competing as active
	var retired models.Cart
	require.NoError(t, db.First(&retired, "id = ?", expired.ID).Error)
	assert.Equal(t, models.CartStatusCompleted, retired.Status)

	// repeated calls settle on the same fresh cart instead of minting more
	second := getUserCart(t, r)
	assert.Equal(t, first.ID, second.ID)

	var active int64
	require.NoError(t, db.Model(&models.Cart{}).
		Where("user_id = ? AND status = ?", "u1", models.CartStatusActive).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)
}

func TestGetUserCartPrefersNewestActive(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	older := newCart("u1")
	older.CreatedAt = now.Add(-2 * time.Hour)
	require.NoError(t, db.Create(older).Error)

	newer := newCart("u1")
	require.NoError(t, db.Create(newer).Error)

	r := userCartRouter(db, "u1")
	got := getUserCart(t, r)
	assert.Equal(t, newer.ID, got.ID)
}
