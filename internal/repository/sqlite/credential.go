package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var _ model.CredentialStore = (*CredentialRepository)(nil)

type CredentialRepository struct {
	db *Connection
}

func NewCredentialRepository(db *Connection) *CredentialRepository {
	return &CredentialRepository{
		db: db,
	}
}

func (r *CredentialRepository) Upsert(ctx context.Context, credential model.Credential) error {
	query := `INSERT INTO credentials (user_id, hash, salt) VALUES (?, ?, ?)
			  ON CONFLICT (user_id) DO UPDATE SET hash = excluded.hash, salt = excluded.salt`

	_, err := r.db.executor(ctx).ExecContext(ctx, query, credential.UserID, credential.Hash, credential.Salt)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Credential, error) {
	credential := model.Credential{UserID: userID}

	err := r.db.executor(ctx).QueryRowContext(ctx,
		`SELECT hash, salt FROM credentials WHERE user_id = ?`, userID,
	).Scan(&credential.Hash, &credential.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to get credential: %w", err)
	}

	return credential, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM credentials WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
