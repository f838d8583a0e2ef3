package dispatcher

// Element IDs shared with the page markup in frontend/index.html.
const (
	ScrapeButton    = "scrape-btn"
	ScrapeURL       = "scrape-url"
	ScrapeStatus    = "scrape-status"
	ScrapedURLs     = "scraped-urls"
	FetchButton     = "fetch-btn"
	FetchURL        = "fetch-url"
	ArticleDisplay  = "article-display"
	ArticleTitle    = "article-title"
	ArticleDate     = "article-date"
	ArticleText     = "article-text"
	ArticleSummary  = "article-summary"
	ArticleImage    = "article-image"
	SummarizeButton = "summarize-btn"
)

// Placeholders shown while a request is pending.
const (
	ScrapingPlaceholder    = "Scraping..."
	SummarizingPlaceholder = "Summarizing..."
)

var elementIDs = []string{
	ScrapeButton, ScrapeURL, ScrapeStatus, ScrapedURLs,
	FetchButton, FetchURL,
	ArticleDisplay, ArticleTitle, ArticleDate, ArticleText, ArticleSummary, ArticleImage,
	SummarizeButton,
}
