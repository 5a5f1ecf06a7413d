package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/redis/go-redis/v9"

	"github.com/KhanPromiseP/cverra-sub006/internal/logger"
)

const cacheTTL = 24 * time.Hour

// Cache is a Redis read-through cache for completed translations, keyed by
// (resume, language). The resume_translations table stays the source of
// truth; losing the cache only costs a database read.
type Cache struct {
	rdb *redis.Client
}

type cachedResult struct {
	Data        json.RawMessage `json:"data"`
	Confidence  float64         `json:"confidence"`
	NeedsReview bool            `json:"needs_review"`
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func cacheKey(resumeID int, language string) string {
	return fmt.Sprintf("translation:%d:%s", resumeID, language)
}

// Get returns the cached result or nil on a miss. Cache failures are treated
// as misses; the database still has the answer.
func (c *Cache) Get(ctx context.Context, resumeID int, language string) *Result {
	raw, err := c.rdb.Get(ctx, cacheKey(resumeID, language)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("translation cache read failed for %d/%s: %v", resumeID, language, err)
		}
		return nil
	}

	var cached cachedResult
	if err := json.Unmarshal(raw, &cached); err != nil {
		logger.Warnf("bad translation cache entry for %d/%s: %v", resumeID, language, err)
		return nil
	}

	return &Result{
		ResumeID:    resumeID,
		Language:    language,
		Data:        types.JSONText(cached.Data),
		Confidence:  cached.Confidence,
		NeedsReview: cached.NeedsReview,
		Cached:      true,
	}
}

func (c *Cache) Set(ctx context.Context, resumeID int, language string, result *Result) {
	raw, err := json.Marshal(cachedResult{
		Data:        json.RawMessage(result.Data),
		Confidence:  result.Confidence,
		NeedsReview: result.NeedsReview,
	})
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, cacheKey(resumeID, language), raw, cacheTTL).Err(); err != nil {
		logger.Warnf("translation cache write failed for %d/%s: %v", resumeID, language, err)
	}
}

// Invalidate drops the cached entry, used on force re-translation.
func (c *Cache) Invalidate(ctx context.Context, resumeID int, language string) {
	if err := c.rdb.Del(ctx, cacheKey(resumeID, language)).Err(); err != nil {
		logger.Warnf("translation cache invalidation failed for %d/%s: %v", resumeID, language, err)
	}
}
