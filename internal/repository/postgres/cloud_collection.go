package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var _ model.CloudCollectionStore = (*CloudCollectionRepository)(nil)

type CloudCollectionRepository struct {
	db *Connection
}

func NewCloudCollectionRepository(db *Connection) *CloudCollectionRepository {
	return &CloudCollectionRepository{
		db: db,
	}
}

const collectionColumns = `id, user_id, name, items, settings, is_public, COALESCE(share_code, ''), created_at, updated_at, last_sync`

func (r *CloudCollectionRepository) GetByUser(ctx context.Context, userID uuid.UUID, name string) (model.CloudCollection, error) {
	query := `SELECT ` + collectionColumns + ` FROM cloud_collections WHERE user_id = $1 AND name = $2`
	return r.getOne(ctx, query, userID, name)
}

func (r *CloudCollectionRepository) GetByShareCode(ctx context.Context, code string) (model.CloudCollection, error) {
	query := `SELECT ` + collectionColumns + ` FROM cloud_collections WHERE share_code = $1`
	return r.getOne(ctx, query, code)
}

func (r *CloudCollectionRepository) Create(ctx context.Context, collection model.CloudCollection) (model.CloudCollection, error) {
	items, settings, err := encodeCollection(collection)
	if err != nil {
		return model.CloudCollection{}, err
	}

	query := `INSERT INTO cloud_collections (id, user_id, name, items, settings, is_public, share_code, created_at, updated_at, last_sync)
			  VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
			  RETURNING ` + collectionColumns

	saved, err := scanCollection(r.db.QueryRow(ctx, query,
		collection.ID, collection.UserID, collection.Name, items, settings, collection.IsPublic,
		collection.ShareCode, collection.CreatedAt, collection.UpdatedAt, collection.LastSync,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.CloudCollection{}, model.NewConflictError("collection %q already exists", collection.Name)
		}
		return model.CloudCollection{}, fmt.Errorf("failed to create cloud collection: %w", err)
	}

	return saved, nil
}

func (r *CloudCollectionRepository) Update(ctx context.Context, collection model.CloudCollection) (model.CloudCollection, error) {
	items, settings, err := encodeCollection(collection)
	if err != nil {
		return model.CloudCollection{}, err
	}

	query := `UPDATE cloud_collections
			  SET items = $2, settings = $3, is_public = $4, share_code = NULLIF($5, ''), updated_at = $6, last_sync = $7
			  WHERE id = $1
			  RETURNING ` + collectionColumns

	saved, err := scanCollection(r.db.QueryRow(ctx, query,
		collection.ID, items, settings, collection.IsPublic, collection.ShareCode, collection.UpdatedAt, collection.LastSync,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CloudCollection{}, model.ErrNotFound
		}
		return model.CloudCollection{}, fmt.Errorf("failed to update cloud collection: %w", err)
	}

	return saved, nil
}

func (r *CloudCollectionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cloud_collections WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete cloud collections: %w", err)
	}
	return nil
}

func (r *CloudCollectionRepository) getOne(ctx context.Context, query string, args ...any) (model.CloudCollection, error) {
	collection, err := scanCollection(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CloudCollection{}, model.ErrNotFound
		}
		return model.CloudCollection{}, fmt.Errorf("failed to get cloud collection: %w", err)
	}
	return collection, nil
}

func scanCollection(row pgx.Row) (model.CloudCollection, error) {
	var (
		collection model.CloudCollection
		items      []byte
		settings   []byte
	)

	err := row.Scan(
		&collection.ID, &collection.UserID, &collection.Name, &items, &settings, &collection.IsPublic,
		&collection.ShareCode, &collection.CreatedAt, &collection.UpdatedAt, &collection.LastSync,
	)
	if err != nil {
		return model.CloudCollection{}, err
	}

	if err := decodeCollection(&collection, items, settings); err != nil {
		return model.CloudCollection{}, err
	}
	return collection, nil
}

func encodeCollection(collection model.CloudCollection) ([]byte, []byte, error) {
	list := collection.Items
	if list == nil {
		list = []model.CollectionItem{}
	}
	items, err := json.Marshal(list)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode items: %w", err)
	}
	settings, err := json.Marshal(collection.Settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return items, settings, nil
}

// decodeCollection restores the owner on every item, since owners are not serialized.
func decodeCollection(collection *model.CloudCollection, items, settings []byte) error {
	if err := json.Unmarshal(items, &collection.Items); err != nil {
		return fmt.Errorf("failed to decode items: %w", err)
	}
	if err := json.Unmarshal(settings, &collection.Settings); err != nil {
		return fmt.Errorf("failed to decode settings: %w", err)
	}
	for i := range collection.Items {
		collection.Items[i].UserID = collection.UserID
		if sale := collection.Items[i].Sale; sale != nil {
			sale.UserID = collection.UserID
		}
	}
	return nil
}
