package api

import (
	"net/http"

	"geo-news/internal/config"

	"github.com/gin-gonic/gin"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"database": gin.H{"driver": cfg.Database.Driver},
			"cache":    cfg.Redis.Addr != "",
			"scraper": gin.H{
				"concurrency":         cfg.Scraper.Concurrency,
				"requests_per_second": cfg.Scraper.RequestsPerSecond,
				"link_filter":         cfg.Scraper.LinkFilter,
			},
			"summarizer": gin.H{
				"remote":          cfg.Summarizer.APIURL != "",
				"max_input_chars": cfg.Summarizer.MaxInputChars,
			},
		})
	}
}
