package db

import (
	"context"
	"errors"
	"fmt"

	"geo-news/internal/article"
	redisdb "geo-news/internal/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrArticleNotFound = errors.New("article not found")

// ArticleRepository stores scraped articles keyed by URL, with an optional
// read-through cache in front of the database.
type ArticleRepository struct {
	db    *gorm.DB
	cache *redisdb.ArticleCache
	log   *zap.Logger
}

func NewArticleRepository(conn *gorm.DB, cache *redisdb.ArticleCache) *ArticleRepository {
	return &ArticleRepository{
		db:    conn,
		cache: cache,
		log:   zap.L().Named("articles"),
	}
}

func (r *ArticleRepository) Exists(ctx context.Context, url string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&article.Article{}).Where("url = ?", url).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check article %s: %w", url, err)
	}
	r.log.Debug("checked article existence", zap.String("url", url), zap.Bool("exists", count > 0))
	return count > 0, nil
}

// Save inserts the article unless one with the same URL is already stored.
// It reports whether a row was created.
func (r *ArticleRepository) Save(ctx context.Context, a *article.Article) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, DoNothing: true}).
		Create(a)
	if res.Error != nil {
		return false, fmt.Errorf("save article %s: %w", a.URL, res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Info("article already exists, not saved", zap.String("url", a.URL))
		return false, nil
	}
	if err := r.cache.Invalidate(ctx, a.URL); err != nil {
		r.log.Warn("cache invalidate failed", zap.String("url", a.URL), zap.Error(err))
	}
	r.log.Info("article saved", zap.String("url", a.URL))
	return true, nil
}

func (r *ArticleRepository) GetByURL(ctx context.Context, url string) (*article.Article, error) {
	cached, err := r.cache.Get(ctx, url)
	if err != nil {
		r.log.Warn("cache read failed, using database", zap.String("url", url), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	var a article.Article
	err = r.db.WithContext(ctx).Where("url = ?", url).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Warn("article not found", zap.String("url", url))
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article %s: %w", url, err)
	}

	if err := r.cache.Set(ctx, &a); err != nil {
		r.log.Warn("cache write failed", zap.String("url", url), zap.Error(err))
	}
	return &a, nil
}
