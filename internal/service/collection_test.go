package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cardkeeper-server/internal/mocks"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/plan"
	"github.com/dtroode/cardkeeper-server/internal/testutil"
)

func TestCollection_Add_MergesCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	first, err := svc.Add(ctx, model.ItemDraft{Name: "Booster Écarlate", Category: "Booster", Language: "FR", Quantity: 2})
	require.NoError(t, err)

	second, err := svc.Add(ctx, model.ItemDraft{Name: "  booster écarlate ", Category: "booster", Language: "fr", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCollection_Add_DefaultsQuantity(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	item, err := svc.Add(ctx, draft("Display"))
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.False(t, item.IsSold)
	assert.NotEqual(t, uuid.Nil, item.ID)
}

func TestCollection_Add_DifferentLanguageDoesNotMerge(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	_, err := svc.Add(ctx, model.ItemDraft{Name: "ETB", Category: "box", Language: "fr"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, model.ItemDraft{Name: "ETB", Category: "box", Language: "en"})
	require.NoError(t, err)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCollection_Add_SoldItemIsNotMergeTarget(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	sold, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	_, err = svc.Sell(ctx, sold.ID, model.SaleDraft{SalePrice: 20})
	require.NoError(t, err)

	fresh, err := svc.Add(ctx, draft("tin"))
	require.NoError(t, err)
	assert.NotEqual(t, sold.ID, fresh.ID)
	assert.Equal(t, 1, fresh.Quantity)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCollection_Add_FreePlanLimit(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	for i := range plan.FreeItemLimit {
		_, err := svc.Add(ctx, draft(fmt.Sprintf("Card %d", i)))
		require.NoError(t, err)
	}

	_, err := svc.Add(ctx, draft("One too many"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlanLimit)

	// At the cap even a merge is refused.
	_, err = svc.Add(ctx, draft("Card 0"))
	assert.ErrorIs(t, err, model.ErrPlanLimit)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, plan.FreeItemLimit)
}

func TestCollection_Add_PremiumIsUnlimited(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanPremium), collectionDeps{})

	for i := range plan.FreeItemLimit + 5 {
		_, err := svc.Add(ctx, draft(fmt.Sprintf("Card %d", i)))
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, plan.FreeItemLimit+5)
}

func TestCollection_Add_AdministratorIsUnlimited(t *testing.T) {
	ctx := context.Background()
	admin := signedIn(model.PlanFree)
	admin.user.Administrator = true
	svc := newTestCollection(t, admin, collectionDeps{})

	for i := range plan.FreeItemLimit + 1 {
		_, err := svc.Add(ctx, draft(fmt.Sprintf("Card %d", i)))
		require.NoError(t, err)
	}
}

func TestCollection_Add_Photo(t *testing.T) {
	tests := []struct {
		name      string
		plan      model.Plan
		wantPhoto string
	}{
		{name: "free plan drops the photo", plan: model.PlanFree, wantPhoto: ""},
		{name: "premium plan keeps the photo", plan: model.PlanPremium, wantPhoto: "https://img.example.com/tin.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestCollection(t, signedIn(tt.plan), collectionDeps{})

			d := draft("Tin")
			d.Photo = "https://img.example.com/tin.png"

			item, err := svc.Add(ctx, d)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPhoto, item.Photo)
		})
	}
}

func TestCollection_Add_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	tests := []struct {
		name  string
		draft model.ItemDraft
		field string
	}{
		{name: "blank name", draft: model.ItemDraft{Name: "   "}, field: "name"},
		{name: "negative price", draft: model.ItemDraft{Name: "x", PurchasedPrice: -1}, field: "purchasedPrice"},
		{name: "negative estimate", draft: model.ItemDraft{Name: "x", EstimatedValue: -0.5}, field: "estimatedValue"},
		{name: "negative quantity", draft: model.ItemDraft{Name: "x", Quantity: -2}, field: "quantity"},
		{name: "quantity above limit", draft: model.ItemDraft{Name: "x", Quantity: model.MaxQuantity + 1}, field: "quantity"},
		{name: "huge quantity", draft: model.ItemDraft{Name: "x", Quantity: math.MaxInt}, field: "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.draft)
			require.Error(t, err)
			var typed *model.Error
			require.True(t, errors.As(err, &typed))
			assert.Equal(t, model.KindValidation, typed.Kind)
			assert.Equal(t, tt.field, typed.Field)
		})
	}
}

func TestCollection_WithoutSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, anonymous, collectionDeps{})

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	sales, err := svc.Sales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)

	_, err = svc.Add(ctx, draft("x"))
	assert.ErrorIs(t, err, model.ErrAuth)

	_, err = svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrAuth)

	_, err = svc.Sell(ctx, uuid.New(), model.SaleDraft{})
	assert.ErrorIs(t, err, model.ErrAuth)
}

func TestCollection_Add_ResolverError(t *testing.T) {
	svc := newTestCollection(t, staticUser{err: errors.New("session store down")}, collectionDeps{})

	_, err := svc.Add(context.Background(), draft("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session store down")
}

func TestCollection_PartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	conn := newLocalStore(t)
	alice := signedIn(model.PlanFree)
	bob := signedIn(model.PlanFree)

	svcAlice := newCollectionOn(conn, alice)
	svcBob := newCollectionOn(conn, bob)

	item, err := svcAlice.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	items, err := svcBob.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svcBob.Update(ctx, item.ID, model.ItemPatch{Name: ptr("stolen")})
	assert.ErrorIs(t, err, model.ErrResourceNotFound)

	deleted, err := svcBob.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCollection_Update(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, model.ItemPatch{
		EstimatedValue:  ptr(12.5),
		StorageLocation: ptr("shelf B"),
		Quantity:        ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.EstimatedValue)
	assert.Equal(t, "shelf B", updated.StorageLocation)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, "Tin", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(item.UpdatedAt))
}

func TestCollection_Update_NotFound(t *testing.T) {
	svc := newTestCollection(t, signedIn(model.PlanPremium), collectionDeps{})

	_, err := svc.Update(context.Background(), uuid.New(), model.ItemPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, model.ErrResourceNotFound)
}

func TestCollection_Update_PhotoOnFreePlanIsRejected(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, item.ID, model.ItemPatch{Photo: ptr("https://img.example.com/tin.png"), Name: ptr("Renamed")})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlanLimit)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Tin", stored[0].Name)
	assert.Empty(t, stored[0].Photo)
}

func TestCollection_Update_PhotoOnPremiumPlan(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanPremium), collectionDeps{})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, model.ItemPatch{Photo: ptr("https://img.example.com/tin.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/tin.png", updated.Photo)
}

func TestCollection_Update_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, item.ID, model.ItemPatch{Quantity: ptr(0)})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Update(ctx, item.ID, model.ItemPatch{Name: ptr(" ")})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Update(ctx, item.ID, model.ItemPatch{Quantity: ptr(model.MaxQuantity + 1)})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCollection_Add_MergeBeyondMaxQuantity(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	full := draft("Booster Box")
	full.Quantity = model.MaxQuantity
	item, err := svc.Add(ctx, full)
	require.NoError(t, err)
	assert.Equal(t, model.MaxQuantity, item.Quantity)

	_, err = svc.Add(ctx, draft("booster box"))
	require.Error(t, err)
	var typed *model.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, model.KindValidation, typed.Kind)
	assert.Equal(t, "quantity", typed.Field)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.MaxQuantity, items[0].Quantity)
}

func TestCollection_Update_RenameIntoExistingItemConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	_, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	other, err := svc.Add(ctx, draft("Display"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, model.ItemPatch{Name: ptr("TIN")})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestCollection_Delete_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCollection_Delete_RemovesPhoto(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanPremium)
	photos := mocks.NewPhotoStorage(t)
	svc := newTestCollection(t, user, collectionDeps{photos: photos})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	photos.On("Delete", mock.Anything, model.PhotoKey(user.user.ID, item.ID)).Return(errors.New("bucket unavailable"))

	deleted, err := svc.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestCollection_Sell(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	saleDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sold, err := svc.Sell(ctx, item.ID, model.SaleDraft{SaleDate: saleDate, SalePrice: 42, Buyer: " Ada ", Platform: "market"})
	require.NoError(t, err)
	assert.True(t, sold.IsSold)
	require.NotNil(t, sold.Sale)
	assert.Equal(t, item.ID, sold.Sale.ItemID)
	assert.Equal(t, 42.0, sold.Sale.SalePrice)
	assert.Equal(t, "Ada", sold.Sale.Buyer)
	assert.True(t, saleDate.Equal(sold.Sale.SaleDate))

	sales, err := svc.Sales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sold.Sale.ID, sales[0].ID)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsSold)
	require.NotNil(t, items[0].Sale)
	assert.Equal(t, sold.Sale.ID, items[0].Sale.ID)
}

func TestCollection_Sell_Twice(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	_, err = svc.Sell(ctx, item.ID, model.SaleDraft{SalePrice: 10})
	require.NoError(t, err)

	_, err = svc.Sell(ctx, item.ID, model.SaleDraft{SalePrice: 11})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConflict)

	sales, err := svc.Sales(ctx)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestCollection_Sell_NotFound(t *testing.T) {
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	_, err := svc.Sell(context.Background(), uuid.New(), model.SaleDraft{SalePrice: 1})
	assert.ErrorIs(t, err, model.ErrResourceNotFound)
}

func TestCollection_Sell_NegativePrice(t *testing.T) {
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	_, err := svc.Sell(context.Background(), uuid.New(), model.SaleDraft{SalePrice: -1})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCollection_Sell_DefaultsSaleDate(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})
	fixed := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	sold, err := svc.Sell(ctx, item.ID, model.SaleDraft{SalePrice: 1})
	require.NoError(t, err)
	assert.True(t, fixed.Equal(sold.Sale.SaleDate))
}

func TestCollection_Add_LooksUpPriceAndImage(t *testing.T) {
	ctx := context.Background()
	prices := mocks.NewPriceLookup(t)
	images := mocks.NewImageLookup(t)
	svc := newTestCollection(t, signedIn(model.PlanPremium), collectionDeps{prices: prices, images: images})

	quotedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	prices.On("FetchPrice", mock.Anything, "Tin", "booster", "fr").
		Return(model.PriceQuote{Low: 1, Trend: 2, Average: 3, UpdatedAt: quotedAt}, nil).Once()
	images.On("FetchImage", mock.Anything, "Tin").Return("https://img.example.com/tin.png", nil).Once()

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	require.NotNil(t, item.Price)
	assert.Equal(t, 3.0, item.Price.Average)
	assert.Equal(t, "https://img.example.com/tin.png", item.Photo)

	// A merge does not look anything up again.
	merged, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Quantity)
	require.NotNil(t, merged.Price)
	assert.True(t, quotedAt.Equal(merged.Price.UpdatedAt))
}

func TestCollection_Add_LookupFailuresDoNotFailAdd(t *testing.T) {
	ctx := context.Background()
	prices := mocks.NewPriceLookup(t)
	images := mocks.NewImageLookup(t)
	svc := newTestCollection(t, signedIn(model.PlanPremium), collectionDeps{prices: prices, images: images})

	prices.On("FetchPrice", mock.Anything, "Tin", "booster", "fr").Return(model.PriceQuote{}, errors.New("timeout"))
	images.On("FetchImage", mock.Anything, "Tin").Return("", errors.New("timeout"))

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	assert.Nil(t, item.Price)
	assert.Empty(t, item.Photo)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCollection_Add_FreePlanSkipsImageLookup(t *testing.T) {
	ctx := context.Background()
	images := mocks.NewImageLookup(t)
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{images: images})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	assert.Empty(t, item.Photo)
	images.AssertNotCalled(t, "FetchImage", mock.Anything, mock.Anything)
}

func TestCollection_RefreshPrice(t *testing.T) {
	ctx := context.Background()
	prices := mocks.NewPriceLookup(t)
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{prices: prices})

	prices.On("FetchPrice", mock.Anything, "Tin", "booster", "fr").Return(model.PriceQuote{Average: 3}, nil).Once()
	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	prices.On("FetchPrice", mock.Anything, "Tin", "booster", "fr").Return(model.PriceQuote{Average: 9}, nil).Once()
	refreshed, err := svc.RefreshPrice(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.Price)
	assert.Equal(t, 9.0, refreshed.Price.Average)

	prices.On("FetchPrice", mock.Anything, "Tin", "booster", "fr").Return(model.PriceQuote{}, errors.New("down")).Once()
	kept, err := svc.RefreshPrice(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, kept.Price)
	assert.Equal(t, 9.0, kept.Price.Average)
}

func TestCollection_Settings(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{})

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)

	saved, err := svc.UpdateSettings(ctx, model.Settings{Currency: "usd", Locale: "en-US", ShowSoldItems: false})
	require.NoError(t, err)
	assert.Equal(t, "USD", saved.Currency)

	loaded, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", loaded.Currency)
	assert.Equal(t, "en-US", loaded.Locale)
	assert.False(t, loaded.ShowSoldItems)

	_, err = svc.UpdateSettings(ctx, model.Settings{Currency: "euro", Locale: "fr"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCollection_UploadPhoto(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanPremium)
	photos := mocks.NewPhotoStorage(t)
	svc := newTestCollection(t, user, collectionDeps{photos: photos})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	key := model.PhotoKey(user.user.ID, item.ID)
	photos.On("Upload", mock.Anything, key, mock.Anything, int64(3), "image/png").Return(nil)

	updated, err := svc.UploadPhoto(ctx, item.ID, bytes.NewReader([]byte("png")), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, key, updated.Photo)
}

func TestCollection_UploadPhoto_FreePlan(t *testing.T) {
	ctx := context.Background()
	photos := mocks.NewPhotoStorage(t)
	svc := newTestCollection(t, signedIn(model.PlanFree), collectionDeps{photos: photos})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)

	_, err = svc.UploadPhoto(ctx, item.ID, strings.NewReader("png"), 3, "image/png")
	assert.ErrorIs(t, err, model.ErrPlanLimit)
	photos.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCollection_Photo(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanPremium)
	photos := mocks.NewPhotoStorage(t)
	svc := newTestCollection(t, user, collectionDeps{photos: photos})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	key := model.PhotoKey(user.user.ID, item.ID)

	photos.On("Exists", mock.Anything, key).Return(true, nil).Once()
	photos.On("Download", mock.Anything, key).Return(io.NopCloser(strings.NewReader("png")), nil).Once()

	rc, err := svc.Photo(ctx, item.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", string(body))

	photos.On("Exists", mock.Anything, key).Return(false, nil).Once()
	_, err = svc.Photo(ctx, item.ID)
	assert.ErrorIs(t, err, model.ErrResourceNotFound)
}

func TestCollection_DropPartition(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanFree)
	photos := mocks.NewPhotoStorage(t)
	svc := newTestCollection(t, user, collectionDeps{photos: photos})

	item, err := svc.Add(ctx, draft("Tin"))
	require.NoError(t, err)
	_, err = svc.Sell(ctx, item.ID, model.SaleDraft{SalePrice: 1})
	require.NoError(t, err)
	_, err = svc.UpdateSettings(ctx, model.Settings{Currency: "USD", Locale: "en"})
	require.NoError(t, err)

	photos.On("DeletePrefix", mock.Anything, model.PartitionKey(model.NamespacePhotos, user.user.ID)+"/").Return(nil)

	require.NoError(t, svc.DropPartition(ctx, user.user.ID))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	sales, err := svc.Sales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestCollection_TransactionFailure(t *testing.T) {
	items := mocks.NewItemStore(t)
	tx := mocks.NewTransactor(t)
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(errors.New("database is locked"))

	svc := NewCollection(signedIn(model.PlanFree), items, mocks.NewSaleStore(t), mocks.NewSettingsStore(t), nil, nil, nil, tx, 0, testutil.MakeNoopLogger())

	_, err := svc.Add(context.Background(), draft("Tin"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestCollection_Add_CountError(t *testing.T) {
	user := signedIn(model.PlanFree)
	items := mocks.NewItemStore(t)
	tx := mocks.NewTransactor(t)
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
	items.On("CountByUser", mock.Anything, user.user.ID).Return(0, errors.New("disk I/O error"))

	svc := NewCollection(user, items, mocks.NewSaleStore(t), mocks.NewSettingsStore(t), nil, nil, nil, tx, 0, testutil.MakeNoopLogger())

	_, err := svc.Add(context.Background(), draft("Tin"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count items")
}

func ptr[T any](v T) *T {
	return &v
}
