package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"geo-news/internal/article"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewArticleCache(db, time.Minute)

	mock.ExpectGet("article:https://geo.tv/latest/1").RedisNil()
	a, err := cache.Get(context.TODO(), "https://geo.tv/latest/1")
	assert.NoError(t, err)
	assert.Nil(t, a)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleCache_SetThenHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewArticleCache(db, 15*time.Minute)
	ctx := context.TODO()

	a := &article.Article{URL: "https://geo.tv/latest/2", Title: "Rain", Date: "2024-07-01T00:00:00", Text: "Heavy rain."}
	raw, err := json.Marshal(a)
	require.NoError(t, err)

	mock.ExpectSet("article:https://geo.tv/latest/2", string(raw), 15*time.Minute).SetVal("OK")
	require.NoError(t, cache.Set(ctx, a))

	mock.ExpectGet("article:https://geo.tv/latest/2").SetVal(string(raw))
	got, err := cache.Get(ctx, a.URL)
	require.NoError(t, err)
	assert.Equal(t, "Rain", got.Title)
	assert.Equal(t, "Heavy rain.", got.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewArticleCache(db, time.Minute)

	mock.ExpectGet("article:x").SetErr(errors.New("connection refused"))
	_, err := cache.Get(context.TODO(), "x")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cache get x")
}

func TestArticleCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewArticleCache(db, time.Minute)

	mock.ExpectDel("article:x").SetVal(1)
	assert.NoError(t, cache.Invalidate(context.TODO(), "x"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleCache_NilIsNoop(t *testing.T) {
	var cache *ArticleCache
	assert.Nil(t, NewArticleCache(nil, time.Minute))

	a, err := cache.Get(context.TODO(), "x")
	assert.NoError(t, err)
	assert.Nil(t, a)
	assert.NoError(t, cache.Set(context.TODO(), &article.Article{URL: "x"}))
	assert.NoError(t, cache.Invalidate(context.TODO(), "x"))
}
