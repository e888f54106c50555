package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

const keyPrefix = "cardkeeper:"

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository keeps one session slot per user. Opening a session for
// a user closes the one it displaces; other users are unaffected.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

type sessionEntry struct {
	UserID    uuid.UUID `json:"userId"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

func sessionKey(id uuid.UUID) string {
	return keyPrefix + "session:" + id.String()
}

func slotKey(userID uuid.UUID) string {
	return keyPrefix + model.PartitionKey(model.NamespaceSession, userID)
}

func (r *SessionRepository) Save(ctx context.Context, session model.Session) error {
	payload, err := json.Marshal(sessionEntry{UserID: session.UserID, Token: session.Token, CreatedAt: session.CreatedAt})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	previous, err := r.client.Get(ctx, slotKey(session.UserID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read session slot: %w", err)
	}

	pipe := r.client.TxPipeline()
	if previous != "" && previous != session.ID.String() {
		pipe.Del(ctx, keyPrefix+"session:"+previous)
	}
	pipe.Set(ctx, sessionKey(session.ID), payload, r.ttl)
	pipe.Set(ctx, slotKey(session.UserID), session.ID.String(), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (model.Session, error) {
	entry, err := r.entry(ctx, id)
	if err != nil {
		return model.Session{}, err
	}

	return model.Session{
		ID:        id,
		UserID:    entry.UserID,
		Token:     entry.Token,
		CreatedAt: entry.CreatedAt,
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	entry, err := r.entry(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return err
	}

	slot, err := r.client.Get(ctx, slotKey(entry.UserID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read session slot: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	if slot == id.String() {
		pipe.Del(ctx, slotKey(entry.UserID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (r *SessionRepository) entry(ctx context.Context, id uuid.UUID) (sessionEntry, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessionEntry{}, model.ErrNotFound
		}
		return sessionEntry{}, fmt.Errorf("failed to get session: %w", err)
	}

	var entry sessionEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return sessionEntry{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return entry, nil
}
