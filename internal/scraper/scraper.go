package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geo-news/internal/article"
	"geo-news/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrAlreadyStored means the article URL was scraped before.
var ErrAlreadyStored = errors.New("article already stored")

// Store is where scraped articles end up.
type Store interface {
	Exists(ctx context.Context, url string) (bool, error)
	// Save reports false when an article with the same URL already exists.
	Save(ctx context.Context, a *article.Article) (bool, error)
}

type Scraper struct {
	cfg         config.ScraperConfig
	imageFolder string
	store       Store
	client      *http.Client
	limiter     *rate.Limiter
	log         *zap.Logger
}

type Option func(*Scraper)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

func WithRateLimiter(l *rate.Limiter) Option {
	return func(s *Scraper) { s.limiter = l }
}

func New(cfg config.ScraperConfig, imageFolder string, store Store, opts ...Option) *Scraper {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	cfg.Concurrency = concurrency
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	s := &Scraper{
		cfg:         cfg,
		imageFolder: imageFolder,
		store:       store,
		client:      newHTTPClient(time.Duration(cfg.TimeoutSeconds) * time.Second),
		limiter:     rate.NewLimiter(limit, concurrency),
		log:         zap.L().Named("scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeCategory scrapes every new article linked from a category page and
// returns the URLs that were stored, in the order they appear on the page.
// Failures on single articles are logged and skipped.
func (s *Scraper) ScrapeCategory(ctx context.Context, categoryURL string) ([]string, error) {
	s.log.Info("scraping category", zap.String("url", categoryURL))

	base, err := url.Parse(categoryURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid category URL %q", categoryURL)
	}

	body, err := s.fetchPage(ctx, categoryURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse category: %w", err)
	}

	links := s.articleLinks(base, doc)
	s.log.Info("found potential article URLs", zap.Int("count", len(links)))

	stored := make([]bool, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, link := range links {
		g.Go(func() error {
			_, err := s.ScrapeArticle(gctx, link)
			switch {
			case errors.Is(err, ErrAlreadyStored):
				s.log.Debug("article already exists", zap.String("url", link))
			case err != nil:
				s.log.Error("failed to scrape article", zap.String("url", link), zap.Error(err))
			default:
				stored[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var scraped []string
	for i, ok := range stored {
		if ok {
			scraped = append(scraped, links[i])
		}
	}
	s.log.Info("category scrape finished", zap.Int("scraped", len(scraped)))
	return scraped, nil
}

// articleLinks resolves matching hrefs against the category URL and drops
// duplicates, keeping first-seen order.
func (s *Scraper) articleLinks(base *url.URL, doc *goquery.Document) []string {
	seen := map[string]bool{}
	var links []string
	doc.Find(s.cfg.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || !strings.Contains(href, s.cfg.LinkFilter) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		full := base.ResolveReference(ref).String()
		if !seen[full] {
			seen[full] = true
			links = append(links, full)
		}
	})
	return links
}

// ScrapeArticle fetches one article page, downloads its lead image and stores
// it. ErrAlreadyStored is returned for URLs the store already holds.
func (s *Scraper) ScrapeArticle(ctx context.Context, articleURL string) (*article.Article, error) {
	exists, err := s.store.Exists(ctx, articleURL)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyStored
	}

	body, err := s.fetchPage(ctx, articleURL)
	if err != nil {
		return nil, err
	}
	a, imgURL, err := s.parseArticle(articleURL, body)
	if err != nil {
		return nil, err
	}

	if imgURL != "" {
		path, err := s.DownloadImage(ctx, imgURL)
		if err != nil {
			s.log.Warn("image download failed", zap.String("url", imgURL), zap.Error(err))
		} else {
			a.ImagePath = path
		}
	}

	created, err := s.store.Save(ctx, a)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyStored
	}
	s.log.Info("scraped and saved article", zap.String("url", articleURL))
	return a, nil
}

// parseArticle extracts the article and the absolute URL of its lead image.
// Pages without the expected title or body markup fall back to readability.
func (s *Scraper) parseArticle(articleURL string, body []byte) (*article.Article, string, error) {
	pageURL, err := url.Parse(articleURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid article URL %q: %w", articleURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("parse article: %w", err)
	}

	title := strings.TrimSpace(doc.Find(s.cfg.TitleSelector).First().Text())

	rawDate := strings.TrimSpace(doc.Find(s.cfg.DateSelector).First().Text())
	published, err := time.Parse(s.cfg.DateLayout, rawDate)
	if err != nil {
		return nil, "", fmt.Errorf("parse date %q: %w", rawDate, err)
	}

	var paragraphs []string
	doc.Find(s.cfg.ParagraphSelector).Each(func(_ int, sel *goquery.Selection) {
		if p := strings.TrimSpace(sel.Text()); p != "" {
			paragraphs = append(paragraphs, p)
		}
	})
	text := strings.Join(paragraphs, "\n")

	var imgURL string
	if src, ok := doc.Find(s.cfg.ImageSelector).First().Attr("src"); ok && src != "" {
		imgURL = resolve(pageURL, src)
	}

	if title == "" || text == "" {
		readable, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err != nil {
			return nil, "", fmt.Errorf("readability fallback: %w", err)
		}
		if title == "" {
			title = strings.TrimSpace(readable.Title)
		}
		if text == "" {
			text = strings.TrimSpace(readable.TextContent)
		}
		if imgURL == "" && readable.Image != "" {
			imgURL = resolve(pageURL, readable.Image)
		}
	}
	if title == "" {
		return nil, "", fmt.Errorf("no title found on %s", articleURL)
	}

	return &article.Article{
		URL:   articleURL,
		Title: title,
		Date:  published.Format(article.DateLayout),
		Text:  text,
	}, imgURL, nil
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
