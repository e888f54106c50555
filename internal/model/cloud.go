package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PrimaryCollectionName is the name of the single cloud collection each user owns.
const PrimaryCollectionName = "primary collection"

// CloudCollectionStore persists cloud mirrors of user collections.
type CloudCollectionStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID, name string) (CloudCollection, error)
	GetByShareCode(ctx context.Context, code string) (CloudCollection, error)
	Create(ctx context.Context, collection CloudCollection) (CloudCollection, error)
	Update(ctx context.Context, collection CloudCollection) (CloudCollection, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// CloudCollection is the cloud-side snapshot of a user's collection.
type CloudCollection struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Name      string           `json:"name"`
	Items     []CollectionItem `json:"items"`
	Settings  Settings         `json:"settings"`
	IsPublic  bool             `json:"isPublic"`
	ShareCode string           `json:"shareCode,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	LastSync  *time.Time       `json:"lastSync,omitempty"`
}
