// Package carecircle turns raw scraped healthcare articles into
// quality-scored, deduplicated, chunked and enriched items ready for
// retrieval.
package carecircle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/canhta/CareCircle/pkg/carecircle/analytics"
	"github.com/canhta/CareCircle/pkg/carecircle/chunk"
	"github.com/canhta/CareCircle/pkg/carecircle/config"
	"github.com/canhta/CareCircle/pkg/carecircle/dedup"
	"github.com/canhta/CareCircle/pkg/carecircle/enrich"
	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
	"github.com/canhta/CareCircle/pkg/carecircle/quality"
)

// ProcessedItem is an admitted item with its analysis, chunks and
// retrieval metadata. It is never modified after Process returns it.
type ProcessedItem struct {
	ContentID        string          `json:"content_id"`
	SourceID         string          `json:"source_id"`
	SourceURL        string          `json:"source_url"`
	Title            string          `json:"title"`
	Content          string          `json:"content"`
	ContentType      string          `json:"content_type"`
	Language         string          `json:"language"`
	PublishedAt      *time.Time      `json:"published_at,omitempty"`
	CrawledAt        time.Time       `json:"crawled_at"`
	ProcessedAt      time.Time       `json:"processed_at"`
	Metadata         map[string]any  `json:"metadata"`
	MedicalSpecialty string          `json:"medical_specialty"`
	MedicalRelevance float64         `json:"medical_relevance"`
	QualityScore     float64         `json:"quality_score"`
	Entities         []ingest.Entity `json:"entities"`
	KeyPhrases       []string        `json:"key_phrases"`
	Chunks           []chunk.Chunk   `json:"chunks"`
	ChunkCount       int             `json:"chunk_count"`
	SearchKeywords   []string        `json:"search_keywords"`
	SemanticTags     []string        `json:"semantic_tags"`
}

// Observer is notified of every item outcome and batch. Implementations
// must be safe for concurrent use.
type Observer interface {
	ItemProcessed(item ProcessedItem, elapsed time.Duration)
	ItemRejected(reason string, elapsed time.Duration)
	BatchCompleted(stats Stats)
}

// Sink receives the items of a processing run.
type Sink interface {
	PutItems(ctx context.Context, runID string, items []ProcessedItem) error
}

type nopObserver struct{}

func (nopObserver) ItemProcessed(ProcessedItem, time.Duration) {}
func (nopObserver) ItemRejected(string, time.Duration)         {}
func (nopObserver) BatchCompleted(Stats)                       {}

// Options configures a Processor
type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	// Components defaults to the built-in Vietnamese dictionaries.
	Components *config.Components
	Logger     zerolog.Logger
	Observer   Observer
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Processor runs raw items through the content pipeline. It owns its
// statistics and duplicate fingerprints; both live until Reset.
type Processor struct {
	cfg       *config.Config
	pipeline  *ingest.Pipeline
	analyzer  *analytics.Analyzer
	scorer    *quality.Scorer
	validator *quality.Validator
	dedup     *dedup.Detector
	chunker   *chunk.Chunker
	enricher  *enrich.Enricher
	logger    zerolog.Logger
	observer  Observer

	mu        sync.Mutex
	counters  counters
	lastRunID string
}

// New creates a Processor with the given dependencies
func New(opts Options) (*Processor, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	comp := opts.Components
	if comp == nil {
		var err error
		if comp, err = (&config.Loader{}).Load(); err != nil {
			return nil, err
		}
	}
	if comp.Tokenizer == nil || comp.Taxonomy == nil {
		return nil, fmt.Errorf("tokenizer and taxonomy are required: %w", internalerr.ErrInvalidConfig)
	}

	normalizer, err := ingest.NewNormalizer(cfg.Content.BoilerplatePatterns...)
	if err != nil {
		return nil, fmt.Errorf("boilerplate patterns: %w", errors.Join(internalerr.ErrInvalidConfig, err))
	}

	var standardizer ingest.Standardizer
	if cfg.Features.TerminologyStandardization && comp.Lexicon != nil {
		standardizer = comp.Lexicon
	}
	pipeline := ingest.NewPipeline(normalizer, standardizer, cfg.Content.MinContentLength, cfg.Content.MaxContentLength).
		WithLogger(opts.Logger)

	var termNormalizer analytics.TermNormalizer
	if comp.Lexicon != nil {
		termNormalizer = comp.Lexicon
	}
	analyzer := analytics.NewAnalyzer(comp.Taxonomy, comp.Tokenizer, termNormalizer, cfg.Features.EnhancedEntities)

	validator := quality.NewValidator(cfg.ValidatorConfig())
	scorer, err := quality.NewScorer(quality.DefaultConfig(cfg.Quality.Profile), validator)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.New(cfg.Chunking, analyzer)
	if err != nil {
		return nil, err
	}

	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	return &Processor{
		cfg:       cfg,
		pipeline:  pipeline,
		analyzer:  analyzer,
		scorer:    scorer,
		validator: validator,
		dedup:     dedup.NewDetector(),
		chunker:   chunker,
		enricher:  enrich.New(comp.Tokenizer, opts.Clock),
		logger:    opts.Logger,
		observer:  observer,
		counters:  newCounters(),
	}, nil
}

// NewFromConfig loads the dictionaries named by cfg and creates a Processor.
func NewFromConfig(cfg *config.Config, opts Options) (*Processor, error) {
	comp, err := config.NewLoader(cfg.Dictionaries).Load()
	if err != nil {
		return nil, err
	}
	opts.Config = cfg
	opts.Components = comp
	return New(opts)
}

// Config returns the processor configuration.
func (p *Processor) Config() *config.Config { return p.cfg }

// Validator returns the validator used for base quality.
func (p *Processor) Validator() *quality.Validator { return p.validator }

// Process runs one item through the pipeline. A rejected item yields an
// error carrying one of the internalerr rejection kinds; panics inside the
// pipeline are reported as internalerr.ErrUnexpected.
func (p *Processor) Process(item ingest.RawItem) (out ProcessedItem, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = ProcessedItem{}
			err = internalerr.Reject(internalerr.ErrUnexpected, item.SourceURL, fmt.Errorf("panic: %v", r))
		}
		p.record(item, out, err, time.Since(start))
	}()

	return p.process(item)
}

func (p *Processor) process(item ingest.RawItem) (ProcessedItem, error) {
	if err := item.Validate(); err != nil {
		return ProcessedItem{}, internalerr.Reject(internalerr.ErrStructural, item.SourceURL, err)
	}

	content, err := p.pipeline.Process(item.Content)
	if err != nil {
		return ProcessedItem{}, internalerr.Reject(internalerr.ErrCleaning, item.SourceURL, err)
	}

	analysis := p.analyzer.Analyze(analytics.Input{
		Title:     item.Title,
		Content:   content,
		SourceURL: item.SourceURL,
	})

	if strategy, dup := p.dedup.IsDuplicate(content, ingest.EntityTexts(analysis.Entities)); dup {
		return ProcessedItem{}, internalerr.Reject(internalerr.ErrDuplicate, item.SourceURL,
			fmt.Errorf("%s fingerprint match", strategy))
	}

	if analysis.Relevance < p.cfg.Quality.MedicalRelevanceThreshold {
		return ProcessedItem{}, internalerr.RejectRelevance(item.SourceURL,
			fmt.Errorf("medical relevance %.2f below %.2f", analysis.Relevance, p.cfg.Quality.MedicalRelevanceThreshold))
	}

	score := p.scorer.Score(quality.Candidate{
		Document: quality.Document{
			Title:      item.Title,
			Content:    content,
			SourceURL:  item.SourceURL,
			SourceType: item.SourceType(),
		},
		WordCount:   analysis.WordCount,
		Relevance:   analysis.Relevance,
		EntityCount: len(analysis.Entities),
		Specialty:   analysis.Specialty,
	})
	if score < p.cfg.Quality.MinContentQuality {
		return ProcessedItem{}, internalerr.Reject(internalerr.ErrQuality, item.SourceURL,
			fmt.Errorf("quality %.2f below %.2f", score, p.cfg.Quality.MinContentQuality))
	}

	chunks := p.chunker.Chunk(content, analysis.Entities)

	md := p.enricher.Enrich(enrich.Source{SourceURL: item.SourceURL, SourceType: item.SourceType()}, analysis, score)

	return ProcessedItem{
		ContentID:        p.enricher.ContentID(item.SourceURL),
		SourceID:         item.SourceID,
		SourceURL:        item.SourceURL,
		Title:            item.Title,
		Content:          content,
		ContentType:      analysis.ContentType,
		Language:         item.Language,
		PublishedAt:      item.PublishedAt,
		CrawledAt:        item.CrawledAt,
		ProcessedAt:      md.ProcessedAt,
		Metadata:         md.Map(item.CopyMetadata()),
		MedicalSpecialty: analysis.Specialty,
		MedicalRelevance: analysis.Relevance,
		QualityScore:     score,
		Entities:         analysis.Entities,
		KeyPhrases:       analysis.KeyPhrases,
		Chunks:           chunks,
		ChunkCount:       len(chunks),
		SearchKeywords:   md.SearchKeywords,
		SemanticTags:     md.SemanticTags,
	}, nil
}

// record updates counters, logs the outcome and notifies the observer.
func (p *Processor) record(item ingest.RawItem, out ProcessedItem, err error, elapsed time.Duration) {
	if err == nil {
		p.mu.Lock()
		p.counters.processed++
		p.counters.chunks += out.ChunkCount
		p.mu.Unlock()

		p.logger.Info().
			Str("content_id", out.ContentID).
			Str("source_url", out.SourceURL).
			Float64("quality", out.QualityScore).
			Int("chunks", out.ChunkCount).
			Msg("item processed")
		p.observer.ItemProcessed(out, elapsed)
		return
	}

	reason := internalerr.Reason(err)

	p.mu.Lock()
	if errors.Is(err, internalerr.ErrDuplicate) {
		p.counters.duplicates++
	} else {
		p.counters.rejected++
	}
	p.counters.byReason[reason]++
	p.mu.Unlock()

	var event *zerolog.Event
	switch reason {
	case internalerr.ReasonUnexpected:
		event = p.logger.Error()
	case internalerr.ReasonStructural, internalerr.ReasonCleaning:
		event = p.logger.Warn()
	default:
		event = p.logger.Info()
	}
	event.Err(err).
		Str("source_url", item.SourceURL).
		Str("reason", reason).
		Msg("item rejected")

	p.observer.ItemRejected(reason, elapsed)
}

// ProcessBatch processes items sequentially and returns the admitted ones in
// input order. Rejections are counted, never returned. A cancelled context
// stops the batch before the next item.
func (p *Processor) ProcessBatch(ctx context.Context, items []ingest.RawItem) []ProcessedItem {
	runID := p.startRun(len(items), 1)

	out := make([]ProcessedItem, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			p.logger.Warn().Str("run_id", runID).Msg("batch cancelled")
			break
		}
		if processed, err := p.Process(item); err == nil {
			out = append(out, processed)
		}
	}

	p.finishRun(runID, len(out))
	return out
}

// ProcessBatchConcurrent processes items on up to workers goroutines and
// returns the admitted ones in input order. Duplicate detection between
// items in flight at the same time is best effort: two identical items
// processed concurrently are both checked against the same fingerprint
// sets, and whichever registers first wins.
func (p *Processor) ProcessBatchConcurrent(ctx context.Context, items []ingest.RawItem, workers int) []ProcessedItem {
	if workers <= 1 {
		return p.ProcessBatch(ctx, items)
	}

	runID := p.startRun(len(items), workers)

	results := make([]*ProcessedItem, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		if gctx.Err() != nil {
			p.logger.Warn().Str("run_id", runID).Msg("batch cancelled")
			break
		}
		i, item := i, item
		g.Go(func() error {
			if processed, err := p.Process(item); err == nil {
				results[i] = &processed
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]ProcessedItem, 0, len(items))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}

	p.finishRun(runID, len(out))
	return out
}

func (p *Processor) startRun(items, workers int) string {
	runID := p.enricher.NewRunID()

	p.mu.Lock()
	p.lastRunID = runID
	p.mu.Unlock()

	p.logger.Info().
		Str("run_id", runID).
		Int("items", items).
		Int("workers", workers).
		Msg("batch started")
	return runID
}

func (p *Processor) finishRun(runID string, admitted int) {
	stats := p.Stats()
	p.logger.Info().
		Str("run_id", runID).
		Int("admitted", admitted).
		Int("total", stats.TotalItems).
		Int("processed", stats.ProcessedItems).
		Int("rejected", stats.RejectedItems).
		Int("duplicates", stats.DuplicateItems).
		Int("chunks", stats.GeneratedChunks).
		Float64("success_rate", stats.SuccessRate).
		Msg("batch completed")
	p.observer.BatchCompleted(stats)
}

// LastRunID returns the ID of the most recent batch, or "".
func (p *Processor) LastRunID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRunID
}
