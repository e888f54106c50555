package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

// ExportJSON returns the caller's collection and settings as an export envelope.
func (s *Collection) ExportJSON(ctx context.Context) (model.ExportEnvelope, error) {
	items, err := s.List(ctx)
	if err != nil {
		return model.ExportEnvelope{}, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return model.ExportEnvelope{}, err
	}

	return model.ExportEnvelope{
		Collection: items,
		Settings:   settings,
		ExportDate: s.now(),
		Version:    model.ExportVersion,
	}, nil
}

// ImportJSON adds the items of an envelope to the caller's collection. Unsold
// items go through Add, so they merge and count against the plan. Sold items
// are stored as new sold rows with their sale. Import stops at the first
// error and reports how many items were imported before it.
func (s *Collection) ImportJSON(ctx context.Context, envelope model.ExportEnvelope) (int, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return 0, err
	}
	if envelope.Version != "" && envelope.Version != model.ExportVersion {
		return 0, model.NewValidationError("version", fmt.Sprintf("unsupported export version %q", envelope.Version))
	}

	imported := 0
	for _, item := range envelope.Collection {
		if item.IsSold {
			err = s.importSold(ctx, user, item)
		} else {
			_, err = s.Add(ctx, draftOf(item))
		}
		if err != nil {
			s.logger.Warn("Collection service: import stopped", "user_id", user.ID, "imported", imported, "error", err.Error())
			return imported, err
		}
		imported++
	}

	s.logger.Info("Collection service: collection imported", "user_id", user.ID, "imported", imported)
	return imported, nil
}

func (s *Collection) importSold(ctx context.Context, user model.User, src model.CollectionItem) error {
	draft := draftOf(src)
	draft.Name = strings.TrimSpace(draft.Name)
	if err := validateDraft(draft); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		caps, err := s.capabilities(ctx, user)
		if err != nil {
			return err
		}
		if !caps.CanAddItem {
			return model.NewPlanLimitError(caps.Reason)
		}

		now := s.now()
		item := model.CollectionItem{
			ID:              uuid.New(),
			UserID:          user.ID,
			Name:            draft.Name,
			Category:        draft.Category,
			Language:        draft.Language,
			Condition:       draft.Condition,
			PurchasedPrice:  draft.PurchasedPrice,
			EstimatedValue:  draft.EstimatedValue,
			PurchaseDate:    draft.PurchaseDate,
			StorageLocation: draft.StorageLocation,
			Price:           src.Price,
			Quantity:        draft.Quantity,
			IsSold:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if caps.CanAddPhoto {
			item.Photo = src.Photo
		}

		sale := model.SaleRecord{
			ID:        uuid.New(),
			UserID:    user.ID,
			ItemID:    item.ID,
			SaleDate:  now,
			CreatedAt: now,
		}
		if src.Sale != nil {
			sale.SaleDate = src.Sale.SaleDate
			sale.SalePrice = src.Sale.SalePrice
			sale.Buyer = src.Sale.Buyer
			sale.Platform = src.Sale.Platform
			sale.Notes = src.Sale.Notes
		}

		sale, err = s.sales.Create(ctx, sale)
		if err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		item.Sale = &sale

		if _, err := s.items.Create(ctx, item); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return err
			}
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
}

func draftOf(item model.CollectionItem) model.ItemDraft {
	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return model.ItemDraft{
		Name:            item.Name,
		Category:        item.Category,
		Language:        item.Language,
		Condition:       item.Condition,
		PurchasedPrice:  item.PurchasedPrice,
		EstimatedValue:  item.EstimatedValue,
		PurchaseDate:    item.PurchaseDate,
		StorageLocation: item.StorageLocation,
		Photo:           item.Photo,
		Quantity:        quantity,
	}
}
