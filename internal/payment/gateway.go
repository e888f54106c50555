// Package payment is the client of the external payment network.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

const (
	headerAPIKey    = "X-API-Key"
	contentTypeJSON = "application/json"
)

var _ model.PaymentGateway = (*Gateway)(nil)

// ErrNotConfigured is returned when no gateway URL was provided.
var ErrNotConfigured = errors.New("payment gateway is not configured")

type Gateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGateway(baseURL, apiKey string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateIntent registers a payment of amount minor units in currency.
func (g *Gateway) CreateIntent(ctx context.Context, amount int64, currency string) (model.PaymentIntent, error) {
	if g.baseURL == "" {
		return model.PaymentIntent{}, ErrNotConfigured
	}

	body, err := json.Marshal(createIntentRequest{Amount: amount, Currency: currency})
	if err != nil {
		return model.PaymentIntent{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	reqURL, err := url.JoinPath(g.baseURL, "/payment_intents")
	if err != nil {
		return model.PaymentIntent{}, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return model.PaymentIntent{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerAPIKey, g.apiKey)
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return model.PaymentIntent{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PaymentIntent{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return model.PaymentIntent{}, fmt.Errorf("payment gateway returned %d: %s", resp.StatusCode, respBody)
	}

	var intent model.PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return model.PaymentIntent{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if intent.ID == "" {
		return model.PaymentIntent{}, fmt.Errorf("payment gateway returned an intent without id")
	}
	return intent, nil
}
