package translation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb)

	entry, _ := json.Marshal(cachedResult{
		Data:        json.RawMessage(`{"name":"Jean"}`),
		Confidence:  0.9,
		NeedsReview: false,
	})
	mock.ExpectGet("translation:123:fr").SetVal(string(entry))

	result := cache.Get(context.Background(), 123, "fr")
	require.NotNil(t, result)
	assert.True(t, result.Cached)
	assert.Equal(t, 123, result.ResumeID)
	assert.Equal(t, "fr", result.Language)
	assert.JSONEq(t, `{"name":"Jean"}`, string(result.Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb)

	mock.ExpectGet("translation:123:fr").RedisNil()

	assert.Nil(t, cache.Get(context.Background(), 123, "fr"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_BackendErrorIsMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb)

	mock.ExpectGet("translation:123:fr").SetErr(assert.AnError)

	assert.Nil(t, cache.Get(context.Background(), 123, "fr"))
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb)

	mock.ExpectGet("translation:123:fr").SetVal("not json")

	assert.Nil(t, cache.Get(context.Background(), 123, "fr"))
}

func TestCache_SetThenInvalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb)

	result := &Result{
		ResumeID:   123,
		Language:   "fr",
		Data:       []byte(`{"name":"Jean"}`),
		Confidence: 0.9,
	}
	entry, _ := json.Marshal(cachedResult{
		Data:       json.RawMessage(result.Data),
		Confidence: 0.9,
	})

	mock.ExpectSet("translation:123:fr", entry, 24*time.Hour).SetVal("OK")
	mock.ExpectDel("translation:123:fr").SetVal(1)

	cache.Set(context.Background(), 123, "fr", result)
	cache.Invalidate(context.Background(), 123, "fr")

	assert.NoError(t, mock.ExpectationsWereMet())
}
