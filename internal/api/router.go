package api

import (
	"net/http"
	"os"
	"path"
	"time"

	"geo-news/internal/config"
	"geo-news/internal/db"
	redisdb "geo-news/internal/redis"
	"geo-news/internal/scraper"
	"geo-news/internal/summarizer"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const indexTemplate = "./frontend/index.html"

// Services are the backends the news endpoints talk to. Nil services leave
// their routes unregistered.
type Services struct {
	Scraper    CategoryScraper
	Articles   ArticleGetter
	Runs       RunRecorder
	Summarizer summarizer.Summarizer
}

// SetupRouter wires the services from the global database handle and the
// optional redis client.
func SetupRouter(cfg *config.Config, rdb *redis.Client) *gin.Engine {
	svc := Services{Summarizer: summarizer.New(cfg.Summarizer)}
	if db.DB != nil {
		cache := redisdb.NewArticleCache(rdb, time.Duration(cfg.Redis.CacheTTLMinutes)*time.Minute)
		articles := db.NewArticleRepository(db.DB, cache)
		svc.Articles = articles
		svc.Runs = db.NewRunRepository(db.DB)
		svc.Scraper = scraper.New(cfg.Scraper, cfg.Images.Folder, articles)
	}
	return NewRouter(cfg, svc)
}

func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(), gin.Recovery())
	subpath := cfg.Server.Subpath // "" or a path starting with '/'

	if _, err := os.Stat(indexTemplate); err == nil {
		r.LoadHTMLFiles(indexTemplate)
		r.GET(path.Join("/", subpath), func(c *gin.Context) {
			c.HTML(http.StatusOK, "index.html", gin.H{"subpath": subpath})
		})
	}
	r.Static(path.Join("/", subpath, "static"), "./frontend/static")
	r.Static(path.Join("/", subpath, "js"), "./frontend/js")

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))
		group.GET("/metrics", gin.WrapH(promhttp.Handler()))
		group.GET("/images/:filename", ImagesHandler(cfg.Images.Folder))

		if svc.Scraper != nil {
			group.POST("/scrape", ScrapeHandler(svc.Scraper, svc.Runs))
		}
		if svc.Articles != nil {
			group.POST("/fetch", FetchHandler(svc.Articles, subpath))
		}
		if svc.Runs != nil {
			group.GET("/scrapes", ScrapeRunsHandler(svc.Runs))
		}
		if svc.Summarizer != nil {
			group.POST("/summarize", SummarizeHandler(svc.Summarizer))
		}
	}
	return r
}
