package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"already E.164", "+919876543210", "+919876543210", nil},
		{"country code without plus", "919876543210", "+919876543210", nil},
		{"bare ten digits", "9876543210", "+919876543210", nil},
		{"with separators", "98765-43210", "+919876543210", nil},
		{"with spaces and plus", "+91 98765 43210", "+919876543210", nil},
		{"empty", "", "", ErrPhoneRequired},
		{"leading zero", "0876543210", "", ErrPhoneInvalid},
		{"too short", "98765", "", ErrPhoneInvalid},
		{"E.164 wrong length", "+9198765", "", ErrPhoneInvalid},
		{"letters only", "not-a-phone", "", ErrPhoneInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
