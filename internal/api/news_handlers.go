package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"geo-news/internal/article"
	"geo-news/internal/db"
	"geo-news/internal/summarizer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type CategoryScraper interface {
	ScrapeCategory(ctx context.Context, categoryURL string) ([]string, error)
}

type ArticleGetter interface {
	GetByURL(ctx context.Context, url string) (*article.Article, error)
}

type RunRecorder interface {
	Record(ctx context.Context, run *article.ScrapeRun) error
	Recent(ctx context.Context, limit int) ([]article.ScrapeRun, error)
}

type urlRequest struct {
	URL string `json:"url"`
}

type textRequest struct {
	Text string `json:"text"`
}

type scrapeResponse struct {
	Message     string   `json:"message"`
	ScrapedURLs []string `json:"scraped_urls"`
}

type fetchResponse struct {
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Text      string  `json:"text"`
	ImagePath *string `json:"image_path"`
}

// POST /scrape
// A failing category scrape is logged and reported as zero new articles.
func ScrapeHandler(s CategoryScraper, runs RunRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger(c)
		var req urlRequest
		_ = c.ShouldBindJSON(&req)
		if req.URL == "" {
			log.Warn("scrape request missing category URL")
			observe("scrape", "bad_request")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing category URL"})
			return
		}

		run := &article.ScrapeRun{CategoryURL: req.URL, StartedAt: time.Now()}
		scraped, err := s.ScrapeCategory(c.Request.Context(), req.URL)
		run.FinishedAt = time.Now()
		scrapeDuration.Observe(run.Duration().Seconds())
		if err != nil {
			log.Error("category scrape failed", zap.String("url", req.URL), zap.Error(err))
			run.Error = err.Error()
			scraped = nil
			observe("scrape", "error")
		} else {
			observe("scrape", "ok")
		}
		if scraped == nil {
			scraped = []string{}
		}
		run.ScrapedURLs = datatypes.JSONSlice[string](scraped)

		if runs != nil {
			if err := runs.Record(c.Request.Context(), run); err != nil {
				log.Warn("failed to record scrape run", zap.Error(err))
			}
		}

		log.Info("scrape finished", zap.Int("scraped", len(scraped)))
		c.JSON(http.StatusOK, scrapeResponse{
			Message:     fmt.Sprintf("✅ Scraped %d new articles.", len(scraped)),
			ScrapedURLs: scraped,
		})
	}
}

// POST /fetch
func FetchHandler(articles ArticleGetter, subpath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger(c)
		var req urlRequest
		_ = c.ShouldBindJSON(&req)
		if req.URL == "" {
			log.Warn("fetch request missing article URL")
			observe("fetch", "bad_request")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article URL"})
			return
		}

		a, err := articles.GetByURL(c.Request.Context(), req.URL)
		if errors.Is(err, db.ErrArticleNotFound) {
			log.Warn("article not found", zap.String("url", req.URL))
			observe("fetch", "not_found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		if err != nil {
			log.Error("article lookup failed", zap.String("url", req.URL), zap.Error(err))
			observe("fetch", "error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load article"})
			return
		}

		resp := fetchResponse{Title: a.Title, Date: a.DisplayDate(), Text: a.Text}
		if img := a.ImageURL(); img != "" {
			img = path.Join("/", subpath, img)
			resp.ImagePath = &img
		}
		observe("fetch", "ok")
		c.JSON(http.StatusOK, resp)
	}
}

// POST /summarize
func SummarizeHandler(s summarizer.Summarizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger(c)
		var req textRequest
		_ = c.ShouldBindJSON(&req)
		if req.Text == "" {
			log.Warn("summarize request missing article text")
			observe("summarize", "bad_request")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article text"})
			return
		}

		summary, err := s.Summarize(c.Request.Context(), req.Text)
		if err != nil {
			summary = "Error: " + err.Error()
			observe("summarize", "error")
		} else {
			observe("summarize", "ok")
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	}
}

// GET /images/:filename
func ImagesHandler(folder string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := filepath.Base(c.Param("filename"))
		if name == "." || name == "/" || strings.HasPrefix(name, "..") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		full := filepath.Join(folder, name)
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.File(full)
	}
}

// GET /scrapes
func ScrapeRunsHandler(runs RunRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		recent, err := runs.Recent(c.Request.Context(), 20)
		if err != nil {
			logger(c).Error("failed to list scrape runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list scrape runs"})
			return
		}
		c.JSON(http.StatusOK, recent)
	}
}
