package auth

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/snackbasket/storefront-api/models"
	"github.com/snackbasket/storefront-api/verify"
)

// SessionTTL is how long an OTP-established session stays valid.
const SessionTTL = 24 * time.Hour

type RequestOTPInput struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyOTPInput struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// POST /auth/otp/request
func RequestOTP(v *verify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RequestOTPInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required"})
			return
		}

		phone, err := verify.NormalizePhone(input.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := v.SendCode(c.Request.Context(), phone); err != nil {
			if errors.Is(err, verify.ErrRateLimited) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Please try again later."})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send verification code"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"phone": phone, "status": "pending"})
	}
}

// POST /auth/otp/verify
// On approval, upserts the user record and issues a session token.
func VerifyOTP(db *gorm.DB, v *verify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input VerifyOTPInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number and code are required"})
			return
		}

		phone, err := verify.NormalizePhone(input.Phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		approved, err := v.CheckCode(c.Request.Context(), phone, input.Code)
		if err != nil {
			if errors.Is(err, verify.ErrRateLimited) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Please try again later."})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to verify code"})
			return
		}
		if !approved {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid OTP. Please try again."})
			return
		}

		user := models.User{
			ID:        "user_" + uuid.NewString(),
			Phone:     phone,
			Verified:  true,
			CreatedAt: time.Now().UTC(),
		}
		// an existing phone keeps its user id
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"verified": true}),
		}).Create(&user).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store user"})
			return
		}
		if err := db.First(&user, "phone = ?", phone).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		expiresAt := time.Now().UTC().Add(SessionTTL)
		token, err := issueSessionToken(user.ID, phone, expiresAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user":       user,
			"token":      token,
			"expires_at": expiresAt,
		})
	}
}

// POST /auth/logout
// Sessions are stateless; the client purges its own storage. Always succeeds.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
	}
}

func issueSessionToken(userID, phone string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"phone":   phone,
		"role":    "user",
		"exp":     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
