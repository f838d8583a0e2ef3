package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"geo-news/internal/article"

	"github.com/redis/go-redis/v9"
)

const articleKeyFmt = "article:%s"

// ArticleCache keeps fetched articles as JSON. A nil *ArticleCache is valid
// and caches nothing.
type ArticleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewArticleCache(rdb *redis.Client, ttl time.Duration) *ArticleCache {
	if rdb == nil {
		return nil
	}
	return &ArticleCache{rdb: rdb, ttl: ttl}
}

func articleKey(url string) string {
	return fmt.Sprintf(articleKeyFmt, url)
}

// Get reports a miss as (nil, nil).
func (c *ArticleCache) Get(ctx context.Context, url string) (*article.Article, error) {
	if c == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, articleKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", url, err)
	}
	var a article.Article
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", url, err)
	}
	return &a, nil
}

func (c *ArticleCache) Set(ctx context.Context, a *article.Article) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", a.URL, err)
	}
	return c.rdb.Set(ctx, articleKey(a.URL), string(raw), c.ttl).Err()
}

func (c *ArticleCache) Invalidate(ctx context.Context, url string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, articleKey(url)).Err()
}
