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

var _ model.ItemStore = (*ItemRepository)(nil)

type ItemRepository struct {
	db *Connection
}

func NewItemRepository(db *Connection) *ItemRepository {
	return &ItemRepository{
		db: db,
	}
}

const itemSelect = `SELECT i.id, i.user_id, i.name, i.category, i.language, i.condition,
		i.purchased_price, i.estimated_value, i.purchase_date, i.storage_location, i.photo,
		i.price_snapshot, i.is_sold, i.quantity, i.created_at, i.updated_at,
		s.id, s.sale_date, s.sale_price, s.buyer, s.platform, s.notes, s.created_at
	FROM items i
	LEFT JOIN sales s ON s.id = i.sale_id`

func (r *ItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CollectionItem, error) {
	rows, err := r.db.executor(ctx).QueryContext(ctx,
		itemSelect+` WHERE i.user_id = ? ORDER BY i.created_at, i.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]model.CollectionItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

func (r *ItemRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (model.CollectionItem, error) {
	row := r.db.executor(ctx).QueryRowContext(ctx, itemSelect+` WHERE i.user_id = ? AND i.id = ?`, userID, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CollectionItem{}, model.ErrNotFound
		}
		return model.CollectionItem{}, err
	}
	return item, nil
}

func (r *ItemRepository) GetActiveByMergeKey(ctx context.Context, userID uuid.UUID, mergeKey string) (model.CollectionItem, error) {
	row := r.db.executor(ctx).QueryRowContext(ctx,
		itemSelect+` WHERE i.user_id = ? AND i.merge_key = ? AND i.is_sold = 0`, userID, mergeKey)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CollectionItem{}, model.ErrNotFound
		}
		return model.CollectionItem{}, err
	}
	return item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item model.CollectionItem) (model.CollectionItem, error) {
	price, err := encodePrice(item.Price)
	if err != nil {
		return model.CollectionItem{}, err
	}

	query := `INSERT INTO items (id, user_id, name, category, language, condition, purchased_price,
			  estimated_value, purchase_date, storage_location, photo, price_snapshot, is_sold, sale_id,
			  quantity, merge_key, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.executor(ctx).ExecContext(ctx, query,
		item.ID, item.UserID, item.Name, item.Category, item.Language, item.Condition, item.PurchasedPrice,
		item.EstimatedValue, formatNullTime(item.PurchaseDate), item.StorageLocation, item.Photo, price,
		item.IsSold, saleID(item), item.Quantity, item.MergeKey(), formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.CollectionItem{}, model.NewConflictError("an unsold %q already exists", item.Name)
		}
		return model.CollectionItem{}, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

func (r *ItemRepository) Update(ctx context.Context, item model.CollectionItem) (model.CollectionItem, error) {
	price, err := encodePrice(item.Price)
	if err != nil {
		return model.CollectionItem{}, err
	}

	query := `UPDATE items
			  SET name = ?, category = ?, language = ?, condition = ?, purchased_price = ?, estimated_value = ?,
			      purchase_date = ?, storage_location = ?, photo = ?, price_snapshot = ?, is_sold = ?, sale_id = ?,
			      quantity = ?, merge_key = ?, updated_at = ?
			  WHERE user_id = ? AND id = ?`

	res, err := r.db.executor(ctx).ExecContext(ctx, query,
		item.Name, item.Category, item.Language, item.Condition, item.PurchasedPrice, item.EstimatedValue,
		formatNullTime(item.PurchaseDate), item.StorageLocation, item.Photo, price, item.IsSold, saleID(item),
		item.Quantity, item.MergeKey(), formatTime(item.UpdatedAt), item.UserID, item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.CollectionItem{}, model.NewConflictError("an unsold %q already exists", item.Name)
		}
		return model.CollectionItem{}, fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.CollectionItem{}, model.ErrNotFound
	}

	return item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM items WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *ItemRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM items WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (model.CollectionItem, error) {
	var (
		item         model.CollectionItem
		purchaseDate sql.NullString
		price        sql.NullString
		createdAt    string
		updatedAt    string

		saleID        sql.NullString
		saleDate      sql.NullString
		salePrice     sql.NullFloat64
		saleBuyer     sql.NullString
		salePlatform  sql.NullString
		saleNotes     sql.NullString
		saleCreatedAt sql.NullString
	)

	err := row.Scan(
		&item.ID, &item.UserID, &item.Name, &item.Category, &item.Language, &item.Condition,
		&item.PurchasedPrice, &item.EstimatedValue, &purchaseDate, &item.StorageLocation, &item.Photo,
		&price, &item.IsSold, &item.Quantity, &createdAt, &updatedAt,
		&saleID, &saleDate, &salePrice, &saleBuyer, &salePlatform, &saleNotes, &saleCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CollectionItem{}, err
		}
		return model.CollectionItem{}, fmt.Errorf("failed to scan item: %w", err)
	}

	if item.PurchaseDate, err = parseNullTime(purchaseDate); err != nil {
		return model.CollectionItem{}, err
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.CollectionItem{}, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.CollectionItem{}, err
	}
	if price.Valid && price.String != "" {
		var snapshot model.PriceSnapshot
		if err := json.Unmarshal([]byte(price.String), &snapshot); err != nil {
			return model.CollectionItem{}, fmt.Errorf("failed to decode price snapshot: %w", err)
		}
		item.Price = &snapshot
	}

	if saleID.Valid {
		sale := model.SaleRecord{
			UserID:    item.UserID,
			ItemID:    item.ID,
			SalePrice: salePrice.Float64,
			Buyer:     saleBuyer.String,
			Platform:  salePlatform.String,
			Notes:     saleNotes.String,
		}
		if sale.ID, err = uuid.Parse(saleID.String); err != nil {
			return model.CollectionItem{}, fmt.Errorf("malformed sale id: %w", err)
		}
		if sale.SaleDate, err = parseTime(saleDate.String); err != nil {
			return model.CollectionItem{}, err
		}
		if sale.CreatedAt, err = parseTime(saleCreatedAt.String); err != nil {
			return model.CollectionItem{}, err
		}
		item.Sale = &sale
	}

	return item, nil
}

func encodePrice(p *model.PriceSnapshot) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode price snapshot: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func saleID(item model.CollectionItem) sql.NullString {
	if item.Sale == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: item.Sale.ID.String(), Valid: true}
}
