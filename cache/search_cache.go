package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"partyfm/model"

	"github.com/redis/go-redis/v9"
)

// SearchCache keeps recent combined-search bundles so repeated guest queries
// skip the whole search pipeline. Purely an accelerator: every error is
// treated as a miss.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache creates a search cache. A nil client disables caching.
func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{client: client, ttl: ttl}
}

func searchKey(query string, localLimit, youtubeLimit int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return fmt.Sprintf("partyfm:search:%s:%d:%d", normalized, localLimit, youtubeLimit)
}

// GetBundle returns the cached bundle for the query, or nil on a miss.
func (c *SearchCache) GetBundle(ctx context.Context, query string, localLimit, youtubeLimit int) *model.SearchBundle {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, searchKey(query, localLimit, youtubeLimit)).Bytes()
	if err != nil {
		return nil
	}

	var bundle model.SearchBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil
	}
	return &bundle
}

// SetBundle stores the bundle for the query.
func (c *SearchCache) SetBundle(ctx context.Context, query string, localLimit, youtubeLimit int, bundle *model.SearchBundle) {
	if c == nil || c.client == nil || bundle == nil {
		return
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return
	}
	c.client.Set(ctx, searchKey(query, localLimit, youtubeLimit), data, c.ttl)
}

func recommendationsKey(limit int) string {
	return fmt.Sprintf("partyfm:recs:%d", limit)
}

// GetRecommendations returns cached recommendations, or nil on a miss.
func (c *SearchCache) GetRecommendations(ctx context.Context, limit int) []model.TrackResult {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, recommendationsKey(limit)).Bytes()
	if err != nil {
		return nil
	}

	var tracks []model.TrackResult
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil
	}
	return tracks
}

// SetRecommendations stores a recommendation set.
func (c *SearchCache) SetRecommendations(ctx context.Context, limit int, tracks []model.TrackResult) {
	if c == nil || c.client == nil || len(tracks) == 0 {
		return
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return
	}
	c.client.Set(ctx, recommendationsKey(limit), data, c.ttl)
}

// InvalidateAll drops every cached search bundle and recommendation set.
// Called after a library index run so stale local results do not linger.
func (c *SearchCache) InvalidateAll(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	for _, pattern := range []string{"partyfm:search:*", "partyfm:recs:*"} {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			c.client.Del(ctx, iter.Val())
		}
	}
}
