package ingest

import (
	"testing"
	"time"
)

func validItem() RawItem {
	return RawItem{
		SourceID:  "moh",
		SourceURL: "https://moh.gov.vn/tin-tuc/1",
		Title:     "Phòng chống sốt xuất huyết",
		Content:   "Nội dung bài viết",
		Language:  "vi",
		CrawledAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestRawItemValidate(t *testing.T) {
	item := validItem()
	if err := item.Validate(); err != nil {
		t.Errorf("Valid item should pass validation: %v", err)
	}
}

func TestRawItemValidateMissingFields(t *testing.T) {
	cases := map[string]func(*RawItem){
		"source_id":  func(r *RawItem) { r.SourceID = "" },
		"source_url": func(r *RawItem) { r.SourceURL = "" },
		"title":      func(r *RawItem) { r.Title = "   " },
		"content":    func(r *RawItem) { r.Content = "\n\t" },
		"language":   func(r *RawItem) { r.Language = "" },
		"crawled_at": func(r *RawItem) { r.CrawledAt = time.Time{} },
	}

	for field, mutate := range cases {
		item := validItem()
		mutate(&item)
		if err := item.Validate(); err == nil {
			t.Errorf("Expected error for missing %s", field)
		}
	}
}

func TestRawItemValidateMalformedURL(t *testing.T) {
	for _, u := range []string{"moh.gov.vn/tin-tuc", "https://", "://broken", "/relative/path"} {
		item := validItem()
		item.SourceURL = u
		if err := item.Validate(); err == nil {
			t.Errorf("Expected error for URL %q", u)
		}
	}
}

func TestRawItemValidateLanguage(t *testing.T) {
	item := validItem()
	item.Language = "en"
	if err := item.Validate(); err != nil {
		t.Errorf("English should be accepted: %v", err)
	}

	item.Language = "fr"
	if err := item.Validate(); err == nil {
		t.Error("French should be rejected")
	}
}

func TestRawItemSourceType(t *testing.T) {
	item := validItem()
	if got := item.SourceType(); got != "unknown" {
		t.Errorf("Expected unknown, got %q", got)
	}

	item.Metadata = map[string]any{"source_type": "hospital"}
	if got := item.SourceType(); got != "hospital" {
		t.Errorf("Expected hospital, got %q", got)
	}

	item.Metadata = map[string]any{"source_type": 42}
	if got := item.SourceType(); got != "unknown" {
		t.Errorf("Non-string source_type should fall back to unknown, got %q", got)
	}
}

func TestRawItemCopyMetadata(t *testing.T) {
	item := validItem()
	item.Metadata = map[string]any{"source_type": "news"}

	cp := item.CopyMetadata()
	cp["source_type"] = "blog"

	if item.Metadata["source_type"] != "news" {
		t.Error("CopyMetadata must not alias the original map")
	}
}
