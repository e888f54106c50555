package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var _ model.SettingsStore = (*SettingsRepository)(nil)

type SettingsRepository struct {
	db *Connection
}

func NewSettingsRepository(db *Connection) *SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

// Get returns the stored settings, or model.ErrNotFound when the user never saved any.
func (r *SettingsRepository) Get(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	var payload string
	err := r.db.executor(ctx).QueryRowContext(ctx, `SELECT payload FROM settings WHERE user_id = ?`, userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Settings{}, model.ErrNotFound
		}
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings model.Settings
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, userID uuid.UUID, settings model.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `INSERT INTO settings (user_id, payload, updated_at) VALUES (?, ?, ?)
			  ON CONFLICT (user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

	_, err = r.db.executor(ctx).ExecContext(ctx, query, userID, string(payload), formatTime(settings.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM settings WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
