package cartControllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/snackbasket/storefront-api/models"
)

func TestValidateRule(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		rule     models.CouponRule
		subtotal float64
		wantErr  error
	}{
		{
			name:     "valid with no expiry",
			rule:     models.CouponRule{Code: "SAVE10", DiscountType: models.DiscountTypePercentage, DiscountValue: 10},
			subtotal: 100,
		},
		{
			name:     "valid before expiry",
			rule:     models.CouponRule{Code: "FLAT50", ExpiresAt: &future, MinOrderValue: 200},
			subtotal: 350,
		},
		{
			name:     "expired",
			rule:     models.CouponRule{Code: "OLD", ExpiresAt: &past},
			subtotal: 500,
			wantErr:  models.ErrCouponNotValid,
		},
		{
			name:     "below minimum order value",
			rule:     models.CouponRule{Code: "BIG", MinOrderValue: 500},
			subtotal: 499.99,
			wantErr:  models.ErrCouponNotValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRule(&tt.rule, tt.subtotal, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
