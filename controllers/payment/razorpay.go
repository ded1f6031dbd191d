package paymentControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client talks to the Razorpay Orders API. Keys and base URL are injected so
// tests can point it at a stub server.
type Client struct {
	BaseURL    string
	KeyID      string
	KeySecret  string
	HTTPClient *http.Client
}

// NewClientFromEnv builds the gateway client from RAZORPAY_* variables.
func NewClientFromEnv() (*Client, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	baseURL := os.Getenv("RAZORPAY_API_URL")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay configuration missing")
	}
	return &Client{
		BaseURL:    baseURL,
		KeyID:      keyID,
		KeySecret:  keySecret,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// OrderRequest is the payment-session request. Amount is in minor currency
// units (paise).
type OrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// GatewayOrder is the session the hosted payment UI is opened with.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder requests a payment session from the gateway.
func (cl *Client) CreateOrder(ctx context.Context, order OrderRequest) (*GatewayOrder, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.BaseURL+"/v1/orders", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cl.KeyID, cl.KeySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := cl.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach razorpay: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayErrorResponse
		if json.Unmarshal(body, &gwErr) == nil && gwErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay error: %s", gwErr.Error.Description)
		}
		return nil, fmt.Errorf("razorpay API error (%d): %s", resp.StatusCode, string(body))
	}

	var gwOrder GatewayOrder
	if err := json.Unmarshal(body, &gwOrder); err != nil {
		return nil, fmt.Errorf("failed to parse razorpay response: %v", err)
	}
	if gwOrder.ID == "" {
		return nil, fmt.Errorf("razorpay returned empty order id")
	}
	return &gwOrder, nil
}
