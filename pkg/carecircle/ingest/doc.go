package ingest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RawItem is one scraped content unit as handed over by a site extractor.
// The pipeline treats it as read-only.
type RawItem struct {
	SourceID    string         `json:"source_id"`
	SourceURL   string         `json:"source_url"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	ContentType string         `json:"content_type,omitempty"`
	Language    string         `json:"language"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CrawledAt   time.Time      `json:"crawled_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SupportedLanguages lists the accepted values of RawItem.Language.
var SupportedLanguages = []string{"vi", "en"}

// Validate checks if the item has the required fields
func (r *RawItem) Validate() error {
	if strings.TrimSpace(r.SourceID) == "" {
		return errors.New("source_id is required")
	}

	if strings.TrimSpace(r.SourceURL) == "" {
		return errors.New("source_url is required")
	}

	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}

	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content is required")
	}

	if strings.TrimSpace(r.Language) == "" {
		return errors.New("language is required")
	}

	if r.CrawledAt.IsZero() {
		return errors.New("crawled_at is required")
	}

	u, err := url.Parse(r.SourceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid source_url %q", r.SourceURL)
	}

	if !isSupportedLanguage(r.Language) {
		return fmt.Errorf("unsupported language %q", r.Language)
	}

	return nil
}

// SourceType returns metadata["source_type"], or "unknown".
func (r *RawItem) SourceType() string {
	if r.Metadata == nil {
		return "unknown"
	}
	if st, ok := r.Metadata["source_type"].(string); ok && st != "" {
		return st
	}
	return "unknown"
}

// CopyMetadata returns a shallow copy of the metadata map.
func (r *RawItem) CopyMetadata() map[string]any {
	out := make(map[string]any, len(r.Metadata))
	for k, v := range r.Metadata {
		out[k] = v
	}
	return out
}

func isSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if lang == l {
			return true
		}
	}
	return false
}
