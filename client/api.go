package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiClient wraps HTTP access to the storefront API and maps its status
// codes onto the SDK error taxonomy.
type apiClient struct {
	baseURL  string
	http     *http.Client
	identity func() (userID, phone string)
}

func newAPIClient(baseURL string, httpClient *http.Client, identity func() (string, string)) *apiClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &apiClient{baseURL: baseURL, http: httpClient, identity: identity}
}

func (a *apiClient) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.identity != nil {
		if userID, phone := a.identity(); userID != "" {
			req.Header.Set("X-User-Id", userID)
			req.Header.Set("X-User-Phone", phone)
		}
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("%w: bad response body", ErrServiceUnavailable)
			}
		}
		return nil
	}

	msg := serverMessage(raw)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: %s", ErrGone, msg)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthRequired, msg)
	default:
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
}

func serverMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return "request failed"
}
