package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PriceLookup fetches market quotes for an item. Results are advisory.
type PriceLookup interface {
	FetchPrice(ctx context.Context, name, category, language string) (PriceQuote, error)
}

// ImageLookup finds a picture URL for an item name. An empty URL means none was found.
type ImageLookup interface {
	FetchImage(ctx context.Context, name string) (string, error)
}

// PriceQuote is a quote returned by the price collaborator.
type PriceQuote struct {
	Low       float64   `json:"low"`
	Trend     float64   `json:"trend"`
	Average   float64   `json:"average"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentGateway creates payment intents on the payment network.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (PaymentIntent, error)
}

// PaymentIntent is the gateway's handle for a pending payment.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

// PaymentStatus is the outcome reported by a confirmation event.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentEvent is the out-of-band confirmation of an intent.
type PaymentEvent struct {
	IntentID string
	UserID   uuid.UUID
	Status   PaymentStatus
}
