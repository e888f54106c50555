// Package pricing talks to the external price and image lookup service.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

const userAgent = "cardkeeper-server/1.0"

var (
	_ model.PriceLookup = (*Client)(nil)
	_ model.ImageLookup = (*Client)(nil)
)

// Client queries the lookup service, never exceeding rps requests per second.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, rps float64, timeout time.Duration) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *Client) FetchPrice(ctx context.Context, name, category, language string) (model.PriceQuote, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("category", category)
	query.Set("language", language)

	var quote model.PriceQuote
	found, err := c.get(ctx, "/prices", query, &quote)
	if err != nil {
		return model.PriceQuote{}, err
	}
	if !found {
		return model.PriceQuote{}, model.ErrNotFound
	}
	if quote.UpdatedAt.IsZero() {
		quote.UpdatedAt = time.Now().UTC()
	}
	return quote, nil
}

// FetchImage returns an empty URL when the service knows no picture for name.
func (c *Client) FetchImage(ctx context.Context, name string) (string, error) {
	query := url.Values{}
	query.Set("name", name)

	var body struct {
		URL string `json:"url"`
	}
	found, err := c.get(ctx, "/images", query, &body)
	if err != nil || !found {
		return "", err
	}
	return body.URL, nil
}

// get decodes a JSON response into result. It reports false on 404.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return false, fmt.Errorf("failed to build URL: %w", err)
	}
	reqURL += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("lookup service returned %d: %s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return true, nil
}
