package service

import (
	"context"
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cardkeeper-server/internal/logger"
	"github.com/dtroode/cardkeeper-server/internal/model"
)

// DefaultStaleness is the age after which a sync timestamp is considered stale.
const DefaultStaleness = 5 * time.Minute

const shareCodeLength = 10

var _ model.PartitionDropper = (*Sync)(nil)

// Sync mirrors the caller's collection into the cloud store and resolves
// public share codes.
type Sync struct {
	users     UserResolver
	store     model.CloudCollectionStore
	staleness time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

func NewSync(users UserResolver, store model.CloudCollectionStore, staleness time.Duration, logger *logger.Logger) *Sync {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	return &Sync{
		users:     users,
		store:     store,
		staleness: staleness,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// Push replaces the caller's cloud item list and settings with the given
// snapshot, creating the cloud collection on first use. It reports false when
// nobody is signed in.
func (s *Sync) Push(ctx context.Context, items []model.CollectionItem, settings model.Settings) (bool, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if items == nil {
		items = []model.CollectionItem{}
	}
	now := s.now()

	existing, err := s.get(ctx, user.ID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		_, err = s.store.Create(ctx, model.CloudCollection{
			ID:        uuid.New(),
			UserID:    user.ID,
			Name:      model.PrimaryCollectionName,
			Items:     items,
			Settings:  settings,
			CreatedAt: now,
			UpdatedAt: now,
			LastSync:  &now,
		})
		if err == nil {
			s.logger.Info("Sync service: cloud collection created", "user_id", user.ID, "items", len(items))
			return true, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return false, fmt.Errorf("failed to create cloud collection: %w", err)
		}
		// Another push created it first.
		existing, err = s.get(ctx, user.ID)
		if err != nil {
			return false, err
		}
	case err != nil:
		return false, err
	}

	existing.Items = items
	existing.Settings = settings
	existing.UpdatedAt = now
	existing.LastSync = &now
	if _, err := s.store.Update(ctx, existing); err != nil {
		return false, fmt.Errorf("failed to update cloud collection: %w", err)
	}

	s.logger.Debug("Sync service: collection pushed", "user_id", user.ID, "items", len(items))
	return true, nil
}

// Pull returns the caller's cloud collection. ok is false when nobody is
// signed in or nothing was pushed yet.
func (s *Sync) Pull(ctx context.Context) (model.CloudCollection, bool, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil || !ok {
		return model.CloudCollection{}, false, err
	}

	collection, err := s.get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.CloudCollection{}, false, nil
		}
		return model.CloudCollection{}, false, err
	}
	return collection, true, nil
}

// Share sets the public flag of the caller's cloud collection. The first time
// the collection becomes public a share code is generated and kept for good.
// ok is false when there is no cloud collection. The code is empty for a
// collection that was never public.
func (s *Sync) Share(ctx context.Context, makePublic bool) (code string, ok bool, err error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return "", false, err
	}

	collection, err := s.get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	collection.IsPublic = makePublic
	if makePublic && collection.ShareCode == "" {
		collection.ShareCode = ShareCode(collection.ID)
	}
	collection.UpdatedAt = s.now()

	if _, err := s.store.Update(ctx, collection); err != nil {
		return "", false, fmt.Errorf("failed to update cloud collection: %w", err)
	}

	s.logger.Info("Sync service: sharing changed", "user_id", user.ID, "public", makePublic)
	return collection.ShareCode, true, nil
}

// ResolveShareCode returns the public collection behind code. Unknown codes
// and private collections are both reported as absent.
func (s *Sync) ResolveShareCode(ctx context.Context, code string) (model.CloudCollection, bool, error) {
	if code == "" {
		return model.CloudCollection{}, false, nil
	}

	collection, err := s.store.GetByShareCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.CloudCollection{}, false, nil
		}
		return model.CloudCollection{}, false, fmt.Errorf("failed to resolve share code: %w", err)
	}
	if !collection.IsPublic {
		return model.CloudCollection{}, false, nil
	}
	return collection, true, nil
}

// NeedsSync reports whether the caller never synced or synced longer ago
// than the staleness window.
func (s *Sync) NeedsSync(ctx context.Context) (bool, error) {
	collection, ok, err := s.Pull(ctx)
	if err != nil {
		return false, err
	}
	if !ok || collection.LastSync == nil {
		return true, nil
	}
	return s.now().Sub(*collection.LastSync) > s.staleness, nil
}

// DropPartition removes the cloud collection of userID.
func (s *Sync) DropPartition(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to drop cloud collection: %w", err)
	}
	return nil
}

func (s *Sync) get(ctx context.Context, userID uuid.UUID) (model.CloudCollection, error) {
	collection, err := s.store.GetByUser(ctx, userID, model.PrimaryCollectionName)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.CloudCollection{}, model.ErrNotFound
		}
		return model.CloudCollection{}, fmt.Errorf("failed to get cloud collection: %w", err)
	}
	return collection, nil
}

func (s *Sync) requireUser(ctx context.Context) (model.User, error) {
	user, ok, err := s.users.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, model.ErrNoSession
	}
	return user, nil
}

// ShareCode derives the share code of a collection from its id.
func ShareCode(collectionID uuid.UUID) string {
	sum := sha256.Sum256(collectionID[:])
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:])[:shareCodeLength]
}

// MergeByID combines a local and a remote item list. Items are matched by id
// and the most recently updated copy wins. Local order is kept, remote-only
// items follow.
func MergeByID(local, remote []model.CollectionItem) []model.CollectionItem {
	merged := make([]model.CollectionItem, 0, len(local)+len(remote))
	index := make(map[uuid.UUID]int, len(local)+len(remote))

	for _, list := range [][]model.CollectionItem{local, remote} {
		for _, item := range list {
			if i, ok := index[item.ID]; ok {
				if item.UpdatedAt.After(merged[i].UpdatedAt) {
					merged[i] = item
				}
				continue
			}
			index[item.ID] = len(merged)
			merged = append(merged, item)
		}
	}
	return merged
}
