package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Provider errors
var (
	ErrRateLimited = errors.New("too many verification attempts")
	ErrRejected    = errors.New("verification rejected by provider")
)

// Client talks to a Twilio Verify style OTP service: a send-code /
// check-code request pair keyed by phone number.
type Client struct {
	accountSID string
	authToken  string
	serviceSID string
	baseURL    string
	http       *http.Client
}

// NewClientFromEnv builds a client from TWILIO_* environment variables.
func NewClientFromEnv() (*Client, error) {
	c := &Client{
		accountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		authToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		serviceSID: os.Getenv("TWILIO_SERVICE_SID"),
		baseURL:    os.Getenv("TWILIO_BASE_URL"),
		http:       &http.Client{Timeout: 5 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = "https://verify.twilio.com/v2/Services"
	}
	if c.accountSID == "" || c.authToken == "" || c.serviceSID == "" {
		return nil, fmt.Errorf("twilio configuration missing")
	}
	return c, nil
}

type checkResponse struct {
	Status string `json:"status"`
}

// SendCode asks the provider to deliver an OTP over SMS.
func (c *Client) SendCode(ctx context.Context, phone string) error {
	endpoint := fmt.Sprintf("%s/%s/Verifications", c.baseURL, c.serviceSID)
	_, err := c.postForm(ctx, endpoint, url.Values{
		"To":      {phone},
		"Channel": {"sms"},
	})
	return err
}

// CheckCode verifies an OTP. A wrong-but-well-formed code returns (false, nil);
// provider-side failures return an error.
func (c *Client) CheckCode(ctx context.Context, phone, code string) (bool, error) {
	endpoint := fmt.Sprintf("%s/%s/VerificationCheck", c.baseURL, c.serviceSID)
	body, err := c.postForm(ctx, endpoint, url.Values{
		"To":   {phone},
		"Code": {code},
	})
	if err != nil {
		// Twilio answers 404 when no pending verification matches the code
		if errors.Is(err, errNotFound) {
			return false, nil
		}
		return false, err
	}

	var check checkResponse
	if err := json.Unmarshal(body, &check); err != nil {
		return false, fmt.Errorf("failed to parse verification response: %w", err)
	}
	return check.Status == "approved", nil
}

var errNotFound = errors.New("verification not found")

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach verification provider: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: provider error (%d): %s", ErrRejected, resp.StatusCode, string(body))
	}
	return body, nil
}
