package verify

import (
	"errors"
	"strings"
)

// Phone validation errors
var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrPhoneInvalid  = errors.New("invalid phone number format, use +91XXXXXXXXXX or a 10-digit number")
)

// NormalizePhone validates a phone number and returns it in E.164 form.
// Bare 10-digit numbers get the default +91 country code.
func NormalizePhone(phone string) (string, error) {
	if phone == "" {
		return "", ErrPhoneRequired
	}

	// Strip everything except digits and a leading +
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case strings.HasPrefix(cleaned, "+91"):
		if len(cleaned) == 13 {
			return cleaned, nil
		}
		return "", ErrPhoneInvalid
	case strings.HasPrefix(cleaned, "91") && len(cleaned) == 12:
		return "+" + cleaned, nil
	case len(cleaned) == 10 && !strings.HasPrefix(cleaned, "0"):
		return "+91" + cleaned, nil
	}

	return "", ErrPhoneInvalid
}
