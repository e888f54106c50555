package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

var _ model.SaleStore = (*SaleRepository)(nil)

type SaleRepository struct {
	db *Connection
}

func NewSaleRepository(db *Connection) *SaleRepository {
	return &SaleRepository{
		db: db,
	}
}

func (r *SaleRepository) Create(ctx context.Context, sale model.SaleRecord) (model.SaleRecord, error) {
	query := `INSERT INTO sales (id, user_id, item_id, sale_date, sale_price, buyer, platform, notes, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		sale.ID, sale.UserID, sale.ItemID, formatTime(sale.SaleDate), sale.SalePrice,
		sale.Buyer, sale.Platform, sale.Notes, formatTime(sale.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.SaleRecord{}, model.NewConflictError("item %s is already sold", sale.ItemID)
		}
		return model.SaleRecord{}, fmt.Errorf("failed to create sale: %w", err)
	}

	return sale, nil
}

func (r *SaleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SaleRecord, error) {
	rows, err := r.db.executor(ctx).QueryContext(ctx,
		`SELECT id, item_id, sale_date, sale_price, buyer, platform, notes, created_at
		 FROM sales WHERE user_id = ? ORDER BY sale_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]model.SaleRecord, 0)
	for rows.Next() {
		var (
			sale      = model.SaleRecord{UserID: userID}
			saleDate  string
			createdAt string
		)
		if err := rows.Scan(&sale.ID, &sale.ItemID, &saleDate, &sale.SalePrice,
			&sale.Buyer, &sale.Platform, &sale.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if sale.SaleDate, err = parseTime(saleDate); err != nil {
			return nil, err
		}
		if sale.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}

	return sales, nil
}

func (r *SaleRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.executor(ctx).ExecContext(ctx, `DELETE FROM sales WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete sales: %w", err)
	}
	return nil
}
