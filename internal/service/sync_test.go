package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cardkeeper-server/internal/mocks"
	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/testutil"
)

func newTestSync(t *testing.T, users UserResolver, now time.Time) (*Sync, *mocks.CloudCollectionStore) {
	t.Helper()
	store := mocks.NewCloudCollectionStore(t)
	svc := NewSync(users, store, 0, testutil.MakeNoopLogger())
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestSync_Push_CreatesOnFirstUse(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanFree)
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc, store := newTestSync(t, user, now)

	items := []model.CollectionItem{{ID: uuid.New(), Name: "Tin", Quantity: 1}}
	settings := model.DefaultSettings()

	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(model.CloudCollection{}, model.ErrNotFound)
	store.On("Create", mock.Anything, mock.MatchedBy(func(c model.CloudCollection) bool {
		return c.UserID == user.user.ID &&
			c.Name == model.PrimaryCollectionName &&
			len(c.Items) == 1 &&
			!c.IsPublic &&
			c.ShareCode == "" &&
			c.LastSync != nil && c.LastSync.Equal(now) &&
			c.UpdatedAt.Equal(now)
	})).Return(model.CloudCollection{}, nil)

	ok, err := svc.Push(ctx, items, settings)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSync_Push_ReplacesItems(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanFree)
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc, store := newTestSync(t, user, now)

	earlier := now.Add(-time.Hour)
	existing := model.CloudCollection{
		ID:        uuid.New(),
		UserID:    user.user.ID,
		Name:      model.PrimaryCollectionName,
		Items:     []model.CollectionItem{{ID: uuid.New(), Name: "Old"}, {ID: uuid.New(), Name: "Older"}},
		IsPublic:  true,
		ShareCode: "ABCDEFGHIJ",
		CreatedAt: earlier,
		UpdatedAt: earlier,
		LastSync:  &earlier,
	}
	pushed := []model.CollectionItem{{ID: uuid.New(), Name: "New"}}

	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(existing, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(c model.CloudCollection) bool {
		return c.ID == existing.ID &&
			len(c.Items) == 1 && c.Items[0].Name == "New" &&
			c.Settings.Currency == "USD" &&
			c.IsPublic && c.ShareCode == "ABCDEFGHIJ" &&
			c.CreatedAt.Equal(earlier) &&
			c.LastSync.Equal(now)
	})).Return(existing, nil)

	ok, err := svc.Push(ctx, pushed, model.Settings{Currency: "USD", Locale: "en"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSync_Push_RaceOnCreateFallsBackToUpdate(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanFree)
	svc, store := newTestSync(t, user, time.Now())

	existing := model.CloudCollection{ID: uuid.New(), UserID: user.user.ID, Name: model.PrimaryCollectionName}
	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(model.CloudCollection{}, model.ErrNotFound).Once()
	store.On("Create", mock.Anything, mock.Anything).Return(model.CloudCollection{}, model.NewConflictError("exists"))
	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(existing, nil).Once()
	store.On("Update", mock.Anything, mock.MatchedBy(func(c model.CloudCollection) bool { return c.ID == existing.ID })).Return(existing, nil)

	ok, err := svc.Push(ctx, nil, model.DefaultSettings())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSync_Push_WithoutUser(t *testing.T) {
	svc, _ := newTestSync(t, anonymous, time.Now())

	ok, err := svc.Push(context.Background(), nil, model.DefaultSettings())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSync_Push_StoreError(t *testing.T) {
	user := signedIn(model.PlanFree)
	svc, store := newTestSync(t, user, time.Now())

	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(model.CloudCollection{}, errors.New("connection refused"))

	ok, err := svc.Push(context.Background(), nil, model.DefaultSettings())
	require.Error(t, err)
	assert.False(t, ok)
}

func TestSync_Pull(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanFree)
	svc, store := newTestSync(t, user, time.Now())

	existing := model.CloudCollection{ID: uuid.New(), UserID: user.user.ID}
	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(model.CloudCollection{}, model.ErrNotFound).Once()
	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(existing, nil).Once()

	_, ok, err := svc.Pull(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := svc.Pull(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, existing.ID, got.ID)
}

func TestSync_Pull_WithoutUser(t *testing.T) {
	svc, _ := newTestSync(t, anonymous, time.Now())

	_, ok, err := svc.Pull(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSync_Share(t *testing.T) {
	ctx := context.Background()
	user := signedIn(model.PlanFree)
	svc, store := newTestSync(t, user, time.Now())

	collection := model.CloudCollection{ID: uuid.New(), UserID: user.user.ID, Name: model.PrimaryCollectionName}
	want := ShareCode(collection.ID)

	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(collection, nil).Once()
	store.On("Update", mock.Anything, mock.MatchedBy(func(c model.CloudCollection) bool {
		return c.IsPublic && c.ShareCode == want
	})).Return(collection, nil).Once()

	code, ok, err := svc.Share(ctx, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, code)
	assert.Len(t, code, 10)

	// Going private keeps the code.
	shared := collection
	shared.IsPublic = true
	shared.ShareCode = want
	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(shared, nil).Once()
	store.On("Update", mock.Anything, mock.MatchedBy(func(c model.CloudCollection) bool {
		return !c.IsPublic && c.ShareCode == want
	})).Return(shared, nil).Once()

	code, ok, err = svc.Share(ctx, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, code)
}

func TestSync_Share_KeepsExistingCode(t *testing.T) {
	user := signedIn(model.PlanFree)
	svc, store := newTestSync(t, user, time.Now())

	collection := model.CloudCollection{ID: uuid.New(), UserID: user.user.ID, ShareCode: "KEEPME1234"}
	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(collection, nil)
	store.On("Update", mock.Anything, mock.MatchedBy(func(c model.CloudCollection) bool {
		return c.ShareCode == "KEEPME1234"
	})).Return(collection, nil)

	code, ok, err := svc.Share(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "KEEPME1234", code)
}

func TestSync_Share_WithoutCollection(t *testing.T) {
	user := signedIn(model.PlanFree)
	svc, store := newTestSync(t, user, time.Now())

	store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).Return(model.CloudCollection{}, model.ErrNotFound)

	code, ok, err := svc.Share(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestSync_Share_WithoutUser(t *testing.T) {
	svc, _ := newTestSync(t, anonymous, time.Now())

	_, _, err := svc.Share(context.Background(), true)
	assert.ErrorIs(t, err, model.ErrAuth)
}

func TestSync_ResolveShareCode(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestSync(t, anonymous, time.Now())

	public := model.CloudCollection{ID: uuid.New(), IsPublic: true, ShareCode: "PUBLIC0001"}
	private := model.CloudCollection{ID: uuid.New(), IsPublic: false, ShareCode: "PRIVATE001"}

	store.On("GetByShareCode", mock.Anything, "PUBLIC0001").Return(public, nil)
	store.On("GetByShareCode", mock.Anything, "PRIVATE001").Return(private, nil)
	store.On("GetByShareCode", mock.Anything, "UNKNOWN001").Return(model.CloudCollection{}, model.ErrNotFound)

	got, ok, err := svc.ResolveShareCode(ctx, "PUBLIC0001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, public.ID, got.ID)

	for _, code := range []string{"PRIVATE001", "UNKNOWN001", ""} {
		got, ok, err := svc.ResolveShareCode(ctx, code)
		require.NoError(t, err)
		assert.False(t, ok, code)
		assert.Equal(t, model.CloudCollection{}, got, code)
	}
}

func TestSync_NeedsSync(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastSync *time.Time
		found    bool
		want     bool
	}{
		{name: "never pushed", found: false, want: true},
		{name: "no timestamp", found: true, want: true},
		{name: "fresh", found: true, lastSync: ptr(now.Add(-4 * time.Minute)), want: false},
		{name: "exactly at the window", found: true, lastSync: ptr(now.Add(-5 * time.Minute)), want: false},
		{name: "stale", found: true, lastSync: ptr(now.Add(-6 * time.Minute)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := signedIn(model.PlanFree)
			svc, store := newTestSync(t, user, now)

			if tt.found {
				store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).
					Return(model.CloudCollection{ID: uuid.New(), LastSync: tt.lastSync}, nil)
			} else {
				store.On("GetByUser", mock.Anything, user.user.ID, model.PrimaryCollectionName).
					Return(model.CloudCollection{}, model.ErrNotFound)
			}

			got, err := svc.NeedsSync(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSync_DropPartition(t *testing.T) {
	svc, store := newTestSync(t, anonymous, time.Now())
	userID := uuid.New()

	store.On("DeleteByUser", mock.Anything, userID).Return(nil).Once()
	require.NoError(t, svc.DropPartition(context.Background(), userID))

	store.On("DeleteByUser", mock.Anything, userID).Return(errors.New("boom")).Once()
	assert.Error(t, svc.DropPartition(context.Background(), userID))
}

func TestShareCode_IsStable(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	assert.Equal(t, ShareCode(id), ShareCode(id))
	assert.Len(t, ShareCode(id), 10)
	assert.NotEqual(t, ShareCode(id), ShareCode(uuid.New()))
	assert.Regexp(t, `^[A-Z2-7]{10}$`, ShareCode(id))
}

func TestMergeByID(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	local := []model.CollectionItem{
		{ID: a, Name: "local a", UpdatedAt: base.Add(time.Hour)},
		{ID: b, Name: "local b", UpdatedAt: base},
	}
	remote := []model.CollectionItem{
		{ID: b, Name: "remote b", UpdatedAt: base.Add(time.Minute)},
		{ID: a, Name: "remote a", UpdatedAt: base},
		{ID: c, Name: "remote c", UpdatedAt: base},
	}

	merged := MergeByID(local, remote)
	require.Len(t, merged, 3)
	assert.Equal(t, "local a", merged[0].Name)
	assert.Equal(t, "remote b", merged[1].Name)
	assert.Equal(t, "remote c", merged[2].Name)
}
