package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"geo-news/internal/config"
	"geo-news/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter_BasicRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	r := SetupRouter(cfg, nil)

	for _, p := range []string{"/health", "/config", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, w.Code, p)
	}

	// summarize works without a database
	w := postJSON(r, "/summarize", `{"text":"The council approved the transport budget after a long debate on Monday."}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRouter_Subpath(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Subpath = "/news"
	r := SetupRouter(cfg, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/news/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_WithDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn, err := db.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	prev := db.DB
	db.DB = conn
	t.Cleanup(func() { db.DB = prev })

	cfg := &config.Config{}
	cfg.Database.DSN = "unused"
	cfg.ApplyDefaults()
	cfg.Images.Folder = t.TempDir()
	r := SetupRouter(cfg, nil)

	w := postJSON(r, "/fetch", `{"url":"https://geo.tv/latest/none"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(r, "/scrape", `{"url":"not-a-url"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Scraped 0 new articles")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scrapes", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "not-a-url")
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&config.Config{}, Services{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
