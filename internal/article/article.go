package article

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is how article dates are stored: ISO-8601 without zone.
const DateLayout = "2006-01-02T15:04:05"

type Article struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	URL       string    `json:"url" gorm:"uniqueIndex;not null"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Text      string    `json:"text" gorm:"type:text"`
	ImagePath string    `json:"image_path"` // local file path, empty when no image was saved
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// DisplayDate drops the time part of the stored date.
func (a *Article) DisplayDate() string {
	if i := strings.Index(a.Date, "T"); i >= 0 {
		return a.Date[:i]
	}
	return a.Date
}

// ImageURL is the public path the image is served from, or "" without an image.
func (a *Article) ImageURL() string {
	if a.ImagePath == "" {
		return ""
	}
	return path.Join("/images", filepath.Base(a.ImagePath))
}

// ScrapeRun records one category scrape.
type ScrapeRun struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	CategoryURL string                      `json:"category_url" gorm:"index"`
	ScrapedURLs datatypes.JSONSlice[string] `json:"scraped_urls"`
	Error       string                      `json:"error,omitempty"`
	StartedAt   time.Time                   `json:"started_at"`
	FinishedAt  time.Time                   `json:"finished_at"`
}

func (r *ScrapeRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
