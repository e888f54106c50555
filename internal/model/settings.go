package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SettingsStore persists one settings object per user.
type SettingsStore interface {
	Get(ctx context.Context, userID uuid.UUID) (Settings, error)
	Save(ctx context.Context, userID uuid.UUID, settings Settings) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// Settings are user preferences mirrored alongside the collection.
type Settings struct {
	Currency      string    `json:"currency"`
	Locale        string    `json:"locale"`
	ShowSoldItems bool      `json:"showSoldItems"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DefaultSettings returns the settings of a user who never saved any.
func DefaultSettings() Settings {
	return Settings{Currency: "EUR", Locale: "en", ShowSoldItems: true}
}

// ExportEnvelope is the JSON import/export format of a collection.
type ExportEnvelope struct {
	Collection []CollectionItem `json:"collection"`
	Settings   Settings         `json:"settings"`
	ExportDate time.Time        `json:"exportDate"`
	Version    string           `json:"version"`
}

// ExportVersion is written into every exported envelope.
const ExportVersion = "1.0"
