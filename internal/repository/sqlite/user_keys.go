package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

// userKeysVersion follows the last embedded SQL migration.
const userKeysVersion = 2

// userKeysMigration adds the folded lookup columns for email and username.
// COLLATE NOCASE only folds ASCII, so uniqueness is enforced on model.FoldKey.
func userKeysMigration() *goose.Migration {
	return goose.NewGoMigration(userKeysVersion,
		&goose.GoFunc{RunTx: upUserKeys},
		&goose.GoFunc{RunTx: downUserKeys},
	)
}

func upUserKeys(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range []string{
		`ALTER TABLE users ADD COLUMN email_key TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE users ADD COLUMN username_key TEXT NOT NULL DEFAULT ''`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add user key column: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, email, username FROM users`)
	if err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}
	type userKeys struct {
		id, email, username string
	}
	var pending []userKeys
	for rows.Next() {
		var k userKeys
		if err := rows.Scan(&k.id, &k.email, &k.username); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan user: %w", err)
		}
		pending = append(pending, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}

	for _, k := range pending {
		_, err := tx.ExecContext(ctx, `UPDATE users SET email_key = ?, username_key = ? WHERE id = ?`,
			model.FoldKey(k.email), model.FoldKey(k.username), k.id)
		if err != nil {
			return fmt.Errorf("failed to backfill user keys: %w", err)
		}
	}

	for _, stmt := range []string{
		`CREATE UNIQUE INDEX users_email_key ON users (email_key)`,
		`CREATE UNIQUE INDEX users_username_key ON users (username_key)`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to index user keys: %w", err)
		}
	}
	return nil
}

func downUserKeys(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range []string{
		`DROP INDEX users_username_key`,
		`DROP INDEX users_email_key`,
		`ALTER TABLE users DROP COLUMN username_key`,
		`ALTER TABLE users DROP COLUMN email_key`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop user keys: %w", err)
		}
	}
	return nil
}
