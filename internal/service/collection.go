package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/plan"
	"github.com/dtroode/cardkeeper-server/internal/validate"
)

const photoPlanReason = "photos are available on the premium plan"

// DefaultLookupTimeout bounds a price or image lookup when no timeout is configured.
const DefaultLookupTimeout = 3 * time.Second

var _ model.PartitionDropper = (*Collection)(nil)

// Collection manages the signed-in user's items, sale log and settings.
// Photo storage and the lookup collaborators are optional.
type Collection struct {
	users         UserResolver
	items         model.ItemStore
	sales         model.SaleStore
	settings      model.SettingsStore
	photos        model.PhotoStorage
	prices        model.PriceLookup
	images        model.ImageLookup
	tx            model.Transactor
	lookupTimeout time.Duration
	now           func() time.Time
	logger        *logger.Logger
}

func NewCollection(
	users UserResolver,
	items model.ItemStore,
	sales model.SaleStore,
	settings model.SettingsStore,
	photos model.PhotoStorage,
	prices model.PriceLookup,
	images model.ImageLookup,
	tx model.Transactor,
	lookupTimeout time.Duration,
	logger *logger.Logger,
) *Collection {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Collection{
		users:         users,
		items:         items,
		sales:         sales,
		settings:      settings,
		photos:        photos,
		prices:        prices,
		images:        images,
		tx:            tx,
		lookupTimeout: lookupTimeout,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger,
	}
}

// List returns the caller's items. Without a session the list is empty.
func (s *Collection) List(ctx context.Context) ([]model.CollectionItem, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.CollectionItem{}, nil
	}

	items, err := s.items.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Add stores a draft, merging it into the unsold item with the same name,
// category and language if there is one. A draft photo is dropped when the
// plan does not allow photos.
func (s *Collection) Add(ctx context.Context, draft model.ItemDraft) (model.CollectionItem, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return model.CollectionItem{}, err
	}

	item, created, err := s.add(ctx, user, draft)
	if err != nil {
		return model.CollectionItem{}, err
	}

	if created {
		item = s.enrich(ctx, user, item)
	}
	return item, nil
}

func (s *Collection) add(ctx context.Context, user model.User, draft model.ItemDraft) (model.CollectionItem, bool, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Quantity == 0 {
		draft.Quantity = 1
	}
	if err := validateDraft(draft); err != nil {
		return model.CollectionItem{}, false, err
	}

	var (
		item    model.CollectionItem
		created bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		caps, err := s.capabilities(ctx, user)
		if err != nil {
			return err
		}
		if !caps.CanAddItem {
			return model.NewPlanLimitError(caps.Reason)
		}

		existing, err := s.items.GetActiveByMergeKey(ctx, user.ID, model.MergeKey(draft.Name, draft.Category, draft.Language))
		switch {
		case err == nil:
			if existing.Quantity+draft.Quantity > model.MaxQuantity {
				return model.NewValidationError("quantity", fmt.Sprintf("merged quantity must be at most %d", model.MaxQuantity))
			}
			existing.Quantity += draft.Quantity
			existing.UpdatedAt = s.now()
			item, err = s.items.Update(ctx, existing)
			if err != nil {
				return fmt.Errorf("failed to merge item: %w", err)
			}
			return nil
		case !errors.Is(err, model.ErrNotFound):
			return fmt.Errorf("failed to look up item: %w", err)
		}

		now := s.now()
		item = model.CollectionItem{
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
			Quantity:        draft.Quantity,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if caps.CanAddPhoto {
			item.Photo = draft.Photo
		} else if draft.Photo != "" {
			s.logger.Debug("Collection service: dropping photo not allowed by plan", "user_id", user.ID)
		}

		item, err = s.items.Create(ctx, item)
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return err
			}
			return fmt.Errorf("failed to create item: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return model.CollectionItem{}, false, err
	}

	s.logger.Debug("Collection service: item added", "user_id", user.ID, "item_id", item.ID, "merged", !created)
	return item, created, nil
}

// enrich attaches a price snapshot and, when allowed, a looked-up picture to
// a new item. Lookup failures leave the item as stored.
func (s *Collection) enrich(ctx context.Context, user model.User, item model.CollectionItem) model.CollectionItem {
	changed := false

	if quote, ok := s.lookupPrice(ctx, item); ok {
		item.Price = snapshot(quote)
		changed = true
	}

	if item.Photo == "" && s.images != nil && plan.Evaluate(user, 0).CanAddPhoto {
		lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
		url, err := s.images.FetchImage(lookupCtx, item.Name)
		cancel()
		switch {
		case err != nil:
			s.logger.Warn("Collection service: image lookup failed", "item_id", item.ID, "error", err.Error())
		case url != "":
			item.Photo = url
			changed = true
		}
	}

	if !changed {
		return item
	}

	updated, err := s.items.Update(ctx, item)
	if err != nil {
		s.logger.Warn("Collection service: failed to store lookup results", "item_id", item.ID, "error", err.Error())
		return item
	}
	return updated
}

// Update applies a partial change to an item. Setting a photo on a plan
// without photos is rejected.
func (s *Collection) Update(ctx context.Context, id uuid.UUID, patch model.ItemPatch) (model.CollectionItem, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return model.CollectionItem{}, err
	}

	var item model.CollectionItem
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err = s.getItem(ctx, user.ID, id)
		if err != nil {
			return err
		}

		if patch.Photo != nil {
			caps, err := s.capabilities(ctx, user)
			if err != nil {
				return err
			}
			if !caps.CanAddPhoto {
				return model.NewPlanLimitError(photoPlanReason)
			}
		}

		applyPatch(&item, patch)
		if err := validateItem(item); err != nil {
			return err
		}
		item.UpdatedAt = s.now()

		item, err = s.items.Update(ctx, item)
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return err
			}
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.CollectionItem{}, err
	}

	s.logger.Debug("Collection service: item updated", "user_id", user.ID, "item_id", id)
	return item, nil
}

// Delete removes an item and reports whether it existed.
func (s *Collection) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return false, err
	}

	deleted, err := s.items.Delete(ctx, user.ID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	if deleted && s.photos != nil {
		if err := s.photos.Delete(ctx, model.PhotoKey(user.ID, id)); err != nil {
			s.logger.Warn("Collection service: failed to delete photo", "item_id", id, "error", err.Error())
		}
	}
	return deleted, nil
}

// Sell records the sale of an item. An item can be sold only once.
func (s *Collection) Sell(ctx context.Context, id uuid.UUID, draft model.SaleDraft) (model.CollectionItem, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return model.CollectionItem{}, err
	}

	if err := validate.New().NonNegative("salePrice", draft.SalePrice).Err(); err != nil {
		return model.CollectionItem{}, err
	}

	var item model.CollectionItem
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err = s.getItem(ctx, user.ID, id)
		if err != nil {
			return err
		}
		if item.IsSold {
			return model.NewConflictError("item %s is already sold", id)
		}

		now := s.now()
		saleDate := draft.SaleDate
		if saleDate.IsZero() {
			saleDate = now
		}

		sale, err := s.sales.Create(ctx, model.SaleRecord{
			ID:        uuid.New(),
			UserID:    user.ID,
			ItemID:    item.ID,
			SaleDate:  saleDate,
			SalePrice: draft.SalePrice,
			Buyer:     strings.TrimSpace(draft.Buyer),
			Platform:  strings.TrimSpace(draft.Platform),
			Notes:     draft.Notes,
			CreatedAt: now,
		})
		if err != nil {
			if errors.Is(err, model.ErrConflict) {
				return err
			}
			return fmt.Errorf("failed to record sale: %w", err)
		}

		item.IsSold = true
		item.Sale = &sale
		item.UpdatedAt = now

		item, err = s.items.Update(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to mark item sold: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.CollectionItem{}, err
	}

	s.logger.Info("Collection service: item sold", "user_id", user.ID, "item_id", id)
	return item, nil
}

// Sales returns the caller's sale log. Without a session the log is empty.
func (s *Collection) Sales(ctx context.Context) ([]model.SaleRecord, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.SaleRecord{}, nil
	}

	sales, err := s.sales.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// GetSettings returns the caller's settings, or the defaults.
func (s *Collection) GetSettings(ctx context.Context) (model.Settings, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if !ok {
		return model.DefaultSettings(), nil
	}
	return s.loadSettings(ctx, user.ID)
}

func (s *Collection) UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return model.Settings{}, err
	}

	settings.Currency = strings.ToUpper(strings.TrimSpace(settings.Currency))
	settings.Locale = strings.TrimSpace(settings.Locale)
	err = validate.New().
		Custom("currency", len(settings.Currency) != 3, "must be a three-letter currency code").
		Required("locale", settings.Locale).
		MaxLen("locale", settings.Locale, 35).
		Err()
	if err != nil {
		return model.Settings{}, err
	}

	settings.UpdatedAt = s.now()
	if err := s.settings.Save(ctx, user.ID, settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

// UploadPhoto stores a photo for an item. Plans without photos are rejected.
func (s *Collection) UploadPhoto(ctx context.Context, id uuid.UUID, reader io.Reader, size int64, contentType string) (model.CollectionItem, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return model.CollectionItem{}, err
	}
	if s.photos == nil {
		return model.CollectionItem{}, errors.New("photo storage is not configured")
	}

	item, err := s.getItem(ctx, user.ID, id)
	if err != nil {
		return model.CollectionItem{}, err
	}

	caps, err := s.capabilities(ctx, user)
	if err != nil {
		return model.CollectionItem{}, err
	}
	if !caps.CanAddPhoto {
		return model.CollectionItem{}, model.NewPlanLimitError(photoPlanReason)
	}

	key := model.PhotoKey(user.ID, id)
	if err := s.photos.Upload(ctx, key, reader, size, contentType); err != nil {
		return model.CollectionItem{}, fmt.Errorf("failed to upload photo: %w", err)
	}

	item.Photo = key
	item.UpdatedAt = s.now()
	item, err = s.items.Update(ctx, item)
	if err != nil {
		return model.CollectionItem{}, fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Info("Collection service: photo uploaded", "user_id", user.ID, "item_id", id)
	return item, nil
}

// Photo opens the stored photo of an item.
func (s *Collection) Photo(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if s.photos == nil {
		return nil, model.NewNotFoundError("photo", id)
	}

	if _, err := s.getItem(ctx, user.ID, id); err != nil {
		return nil, err
	}

	key := model.PhotoKey(user.ID, id)
	exists, err := s.photos.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check photo: %w", err)
	}
	if !exists {
		return nil, model.NewNotFoundError("photo", id)
	}

	rc, err := s.photos.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download photo: %w", err)
	}
	return rc, nil
}

// RefreshPrice fetches a fresh quote for an item. A failed lookup keeps the
// previous snapshot.
func (s *Collection) RefreshPrice(ctx context.Context, id uuid.UUID) (model.CollectionItem, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return model.CollectionItem{}, err
	}

	item, err := s.getItem(ctx, user.ID, id)
	if err != nil {
		return model.CollectionItem{}, err
	}

	quote, ok := s.lookupPrice(ctx, item)
	if !ok {
		return item, nil
	}

	item.Price = snapshot(quote)
	item.UpdatedAt = s.now()
	item, err = s.items.Update(ctx, item)
	if err != nil {
		return model.CollectionItem{}, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// DropPartition removes every item, sale, settings object and photo of userID.
func (s *Collection) DropPartition(ctx context.Context, userID uuid.UUID) error {
	if err := s.items.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to drop items: %w", err)
	}
	if err := s.sales.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to drop sales: %w", err)
	}
	if err := s.settings.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to drop settings: %w", err)
	}
	if s.photos != nil {
		if err := s.photos.DeletePrefix(ctx, model.PartitionKey(model.NamespacePhotos, userID)+"/"); err != nil {
			return fmt.Errorf("failed to drop photos: %w", err)
		}
	}

	s.logger.Info("Collection service: partition dropped", "user_id", userID)
	return nil
}

func (s *Collection) lookupPrice(ctx context.Context, item model.CollectionItem) (model.PriceQuote, bool) {
	if s.prices == nil {
		return model.PriceQuote{}, false
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	quote, err := s.prices.FetchPrice(lookupCtx, item.Name, item.Category, item.Language)
	if err != nil {
		s.logger.Warn("Collection service: price lookup failed", "item_id", item.ID, "error", err.Error())
		return model.PriceQuote{}, false
	}
	return quote, true
}

func (s *Collection) capabilities(ctx context.Context, user model.User) (model.Capabilities, error) {
	size, err := s.items.CountByUser(ctx, user.ID)
	if err != nil {
		return model.Capabilities{}, fmt.Errorf("failed to count items: %w", err)
	}
	return plan.Evaluate(user, size), nil
}

func (s *Collection) getItem(ctx context.Context, userID, id uuid.UUID) (model.CollectionItem, error) {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.CollectionItem{}, model.NewNotFoundError("item", id)
		}
		return model.CollectionItem{}, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *Collection) loadSettings(ctx context.Context, userID uuid.UUID) (model.Settings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func (s *Collection) requireUser(ctx context.Context) (model.User, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, model.ErrNoSession
	}
	return user, nil
}

func snapshot(quote model.PriceQuote) *model.PriceSnapshot {
	return &model.PriceSnapshot{
		Low:       quote.Low,
		Trend:     quote.Trend,
		Average:   quote.Average,
		UpdatedAt: quote.UpdatedAt,
	}
}

func applyPatch(item *model.CollectionItem, patch model.ItemPatch) {
	if patch.Name != nil {
		item.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Language != nil {
		item.Language = *patch.Language
	}
	if patch.Condition != nil {
		item.Condition = *patch.Condition
	}
	if patch.PurchasedPrice != nil {
		item.PurchasedPrice = *patch.PurchasedPrice
	}
	if patch.EstimatedValue != nil {
		item.EstimatedValue = *patch.EstimatedValue
	}
	if patch.PurchaseDate != nil {
		item.PurchaseDate = patch.PurchaseDate
	}
	if patch.StorageLocation != nil {
		item.StorageLocation = *patch.StorageLocation
	}
	if patch.Photo != nil {
		item.Photo = *patch.Photo
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
}

func validateDraft(draft model.ItemDraft) error {
	return validate.New().
		Required("name", draft.Name).
		MaxLen("name", draft.Name, 200).
		NonNegative("purchasedPrice", draft.PurchasedPrice).
		NonNegative("estimatedValue", draft.EstimatedValue).
		Positive("quantity", draft.Quantity).
		AtMost("quantity", draft.Quantity, model.MaxQuantity).
		Err()
}

func validateItem(item model.CollectionItem) error {
	return validate.New().
		Required("name", item.Name).
		MaxLen("name", item.Name, 200).
		NonNegative("purchasedPrice", item.PurchasedPrice).
		NonNegative("estimatedValue", item.EstimatedValue).
		Positive("quantity", item.Quantity).
		AtMost("quantity", item.Quantity, model.MaxQuantity).
		Err()
}
