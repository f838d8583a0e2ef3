package scraper

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DownloadImage saves the image under the images folder and returns the local
// path. The file keeps the basename of the URL path; an existing file with the
// same name is replaced. Images larger than the size limit are rejected and
// leave nothing behind.
func (s *Scraper) DownloadImage(ctx context.Context, imgURL string) (string, error) {
	resp, err := s.get(ctx, imgURL, "image/avif,image/webp,image/*,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name := imageFileName(imgURL, resp.Header.Get("Content-Type"))
	if err := os.MkdirAll(s.imageFolder, 0o755); err != nil {
		return "", fmt.Errorf("create image folder: %w", err)
	}
	filePath := filepath.Join(s.imageFolder, name)

	// written next to the target and renamed into place once complete
	f, err := os.CreateTemp(s.imageFolder, "."+name+"-*")
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	tmpPath := f.Name()
	if err := s.writeImage(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write image %s: %w", filePath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close image %s: %w", filePath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("store image %s: %w", filePath, err)
	}

	s.log.Info("downloaded image", zap.String("url", imgURL), zap.String("path", filePath))
	return filePath, nil
}

// writeImage copies body into f, failing once it exceeds the size limit.
func (s *Scraper) writeImage(f *os.File, body io.Reader) error {
	maxBytes := int64(s.cfg.MaxPageSizeMB) * 1024 * 1024
	n, err := io.Copy(f, io.LimitReader(body, maxBytes+1))
	if err != nil {
		return err
	}
	if n > maxBytes {
		return fmt.Errorf("content exceeds size limit of %dMB", s.cfg.MaxPageSizeMB)
	}
	return nil
}

func imageFileName(imgURL, contentType string) string {
	if u, err := url.Parse(imgURL); err == nil {
		base := path.Base(u.Path)
		if base != "." && base != "/" && base != "" {
			return base
		}
	}

	ext := ".bin"
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
				ext = exts[0]
			}
		}
	}
	return uuid.New().String() + strings.ToLower(ext)
}
