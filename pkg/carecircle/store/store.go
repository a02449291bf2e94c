package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/canhta/CareCircle/pkg/carecircle"
)

// Store persists processed items and processing runs. Every Store is a
// carecircle.Sink.
type Store interface {
	Close() error

	// PutItems upserts items keyed by content ID. Chunks and keywords of an
	// existing item are replaced.
	PutItems(ctx context.Context, runID string, items []carecircle.ProcessedItem) error
	GetItem(ctx context.Context, contentID string) (carecircle.ProcessedItem, bool, error)

	// SearchByKeyword returns items whose search keywords contain keyword or
	// whose title mentions it, best quality first. limit <= 0 means no limit.
	SearchByKeyword(ctx context.Context, keyword string, limit int) ([]carecircle.ProcessedItem, error)

	PutRun(ctx context.Context, run Run) error
	// ListRuns returns runs newest first. limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Run records one batch invocation.
type Run struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Workers    int              `json:"workers"`
	Admitted   int              `json:"admitted"`
	Stats      carecircle.Stats `json:"stats"`
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// NormalizeKeyword lowercases and trims a search keyword.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// Matches reports whether item answers a normalized keyword query.
func Matches(item carecircle.ProcessedItem, keyword string) bool {
	if keyword == "" {
		return false
	}
	for _, kw := range item.SearchKeywords {
		if strings.ToLower(kw) == keyword {
			return true
		}
	}
	return strings.Contains(strings.ToLower(item.Title), keyword)
}

// SortByQuality orders items by quality score descending, then content ID.
func SortByQuality(items []carecircle.ProcessedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].QualityScore != items[j].QualityScore {
			return items[i].QualityScore > items[j].QualityScore
		}
		return items[i].ContentID < items[j].ContentID
	})
}

// SortRuns orders runs newest first.
func SortRuns(runs []Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})
}

var _ carecircle.Sink = (Store)(nil)
