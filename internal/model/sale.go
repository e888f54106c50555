package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleStore persists the per-user sale log.
type SaleStore interface {
	Create(ctx context.Context, sale SaleRecord) (SaleRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]SaleRecord, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// SaleRecord is created once, when an item becomes sold, and never changes.
type SaleRecord struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	ItemID    uuid.UUID `json:"itemId"`
	SaleDate  time.Time `json:"saleDate"`
	SalePrice float64   `json:"salePrice"`
	Buyer     string    `json:"buyer,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaleDraft holds the attributes of a sale being recorded.
type SaleDraft struct {
	// SaleDate defaults to now when zero.
	SaleDate  time.Time
	SalePrice float64
	Buyer     string
	Platform  string
	Notes     string
}
