package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cardkeeper-server/internal/model"
	"github.com/dtroode/cardkeeper-server/internal/testutil"
)

type countingLookup struct {
	calls int
	quote model.PriceQuote
	err   error
}

func (l *countingLookup) FetchPrice(_ context.Context, _, _, _ string) (model.PriceQuote, error) {
	l.calls++
	return l.quote, l.err
}

func TestCache_FetchPrice(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	next := &countingLookup{quote: model.PriceQuote{Average: 4.5, UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	cache := NewCache(next, client, time.Hour, testutil.MakeNoopLogger())
	ctx := context.Background()

	q, err := cache.FetchPrice(ctx, "Booster X", "booster", "fr")
	require.NoError(t, err)
	assert.Equal(t, 4.5, q.Average)

	// same merge key, different spelling
	q, err = cache.FetchPrice(ctx, "booster  x", "BOOSTER", "FR")
	require.NoError(t, err)
	assert.Equal(t, 4.5, q.Average)
	assert.Equal(t, 1, next.calls)

	srv.FastForward(2 * time.Hour)
	_, err = cache.FetchPrice(ctx, "Booster X", "booster", "fr")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCache_MissErrorNotCached(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	next := &countingLookup{err: errors.New("upstream down")}
	cache := NewCache(next, client, time.Hour, testutil.MakeNoopLogger())

	_, err := cache.FetchPrice(context.Background(), "Booster X", "booster", "fr")
	assert.Error(t, err)
	assert.False(t, srv.Exists(cacheKey("Booster X", "booster", "fr")))
}

func TestCache_RedisDownFallsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	next := &countingLookup{quote: model.PriceQuote{Average: 1}}
	cache := NewCache(next, client, time.Hour, testutil.MakeNoopLogger())

	q, err := cache.FetchPrice(context.Background(), "Booster X", "booster", "fr")
	require.NoError(t, err)
	assert.Equal(t, 1.0, q.Average)
	assert.Equal(t, 1, next.calls)
}
