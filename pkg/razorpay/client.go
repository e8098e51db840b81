// Package razorpay is a minimal client for the Razorpay orders and payments API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ClientConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type Client struct {
	// baseURL is the API root, e.g. https://api.razorpay.com.
	baseURL string

	// keyID and keySecret authenticate every request with basic auth.
	keyID     string
	keySecret string

	hc *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		hc:        &http.Client{Timeout: timeout},
	}
}

// KeyID is the public key handed to the browser checkout.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder creates a gateway order for amount minor units. It is not
// retried: a duplicate order is a second charge waiting to happen.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes Notes) (*Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("razorpay: amount must be positive, got %d", amount)
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: marshal order: %w", err)
	}

	var o Order
	if err := c.do(ctx, http.MethodPost, "/v1/orders", bytes.NewReader(body), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("razorpay: new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("razorpay: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("razorpay: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env struct {
			Error APIError `json:"error"`
		}
		if jsonErr := json.Unmarshal(data, &env); jsonErr != nil || env.Error.Code == "" {
			env.Error = APIError{Code: http.StatusText(resp.StatusCode), Description: strings.TrimSpace(string(data))}
		}
		env.Error.StatusCode = resp.StatusCode
		return &env.Error
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("razorpay: decode response: %w", err)
	}
	return nil
}
