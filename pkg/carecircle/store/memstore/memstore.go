package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/canhta/CareCircle/pkg/carecircle"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
	"github.com/canhta/CareCircle/pkg/carecircle/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	items   map[string]carecircle.ProcessedItem
	itemRun map[string]string
	runs    map[string]store.Run
	closed  bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		items:   make(map[string]carecircle.ProcessedItem),
		itemRun: make(map[string]string),
		runs:    make(map[string]store.Run),
	}
}

// Close implements store.Store. Later calls fail with ErrStoreUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// PutItems upserts items keyed by content ID.
func (s *Store) PutItems(ctx context.Context, runID string, items []carecircle.ProcessedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return internalerr.ErrStoreUnavailable
	}
	for _, item := range items {
		if item.ContentID == "" {
			return fmt.Errorf("item %q has no content id: %w", item.SourceURL, internalerr.ErrInvalidInput)
		}
	}
	for _, item := range items {
		s.items[item.ContentID] = copyItem(item)
		s.itemRun[item.ContentID] = runID
	}
	return nil
}

// GetItem returns an item by content ID.
func (s *Store) GetItem(ctx context.Context, contentID string) (carecircle.ProcessedItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return carecircle.ProcessedItem{}, false, internalerr.ErrStoreUnavailable
	}
	item, ok := s.items[contentID]
	if !ok {
		return carecircle.ProcessedItem{}, false, nil
	}
	return copyItem(item), true, nil
}

// RunOf returns the run that last wrote the item.
func (s *Store) RunOf(contentID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runID, ok := s.itemRun[contentID]
	return runID, ok
}

// SearchByKeyword scans every item.
func (s *Store) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]carecircle.ProcessedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, internalerr.ErrStoreUnavailable
	}

	keyword = store.NormalizeKeyword(keyword)
	var out []carecircle.ProcessedItem
	for _, item := range s.items {
		if store.Matches(item, keyword) {
			out = append(out, copyItem(item))
		}
	}
	store.SortByQuality(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PutRun inserts or replaces a run.
func (s *Store) PutRun(ctx context.Context, run store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return internalerr.ErrStoreUnavailable
	}
	if run.ID == "" {
		return fmt.Errorf("run has no id: %w", internalerr.ErrInvalidInput)
	}
	run.Stats.RejectedByReason = maps.Clone(run.Stats.RejectedByReason)
	s.runs[run.ID] = run
	return nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, internalerr.ErrStoreUnavailable
	}

	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	store.SortRuns(runs)

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func copyItem(item carecircle.ProcessedItem) carecircle.ProcessedItem {
	item.Metadata = maps.Clone(item.Metadata)
	item.Entities = slices.Clone(item.Entities)
	item.KeyPhrases = slices.Clone(item.KeyPhrases)
	item.Chunks = slices.Clone(item.Chunks)
	item.SearchKeywords = slices.Clone(item.SearchKeywords)
	item.SemanticTags = slices.Clone(item.SemanticTags)
	return item
}

var _ store.Store = (*Store)(nil)
