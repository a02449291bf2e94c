package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/canhta/CareCircle/pkg/carecircle"
)

func TestMatches(t *testing.T) {
	item := carecircle.ProcessedItem{
		Title:          "Hướng dẫn theo dõi Tiểu Đường tại nhà",
		SearchKeywords: []string{"insulin", "đường huyết"},
	}

	assert.True(t, Matches(item, "insulin"))
	assert.True(t, Matches(item, "đường huyết"))
	assert.True(t, Matches(item, NormalizeKeyword("  TIỂU ĐƯỜNG ")))
	assert.False(t, Matches(item, "insu"), "keywords match whole")
	assert.False(t, Matches(item, ""))
}

func TestSortByQuality(t *testing.T) {
	items := []carecircle.ProcessedItem{
		{ContentID: "b", QualityScore: 0.7},
		{ContentID: "c", QualityScore: 0.9},
		{ContentID: "a", QualityScore: 0.7},
	}
	SortByQuality(items)

	ids := []string{items[0].ContentID, items[1].ContentID, items[2].ContentID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestSortRuns(t *testing.T) {
	base := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: "r1", StartedAt: base},
		{ID: "r3", StartedAt: base.Add(2 * time.Hour)},
		{ID: "r2", StartedAt: base.Add(time.Hour)},
	}
	SortRuns(runs)

	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
	assert.Equal(t, "r1", runs[2].ID)
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	r := Run{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}
