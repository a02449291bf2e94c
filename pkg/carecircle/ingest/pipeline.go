package ingest

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// maxPasses bounds the clean+standardize fixed-point loop.
const maxPasses = 4

var (
	// ErrEmptyContent is returned when nothing is left after cleaning.
	ErrEmptyContent = errors.New("empty content")
	// ErrContentTooShort is returned when cleaned content is below the minimum length.
	ErrContentTooShort = errors.New("content too short")
)

// Standardizer rewrites domain terminology into a preferred form.
// *lexicon.Lexicon satisfies it.
type Standardizer interface {
	Standardize(text string) string
}

// Pipeline orchestrates text normalization:
// raw text → markup/boilerplate cleaning → terminology standardization → length bounds
type Pipeline struct {
	normalizer   *Normalizer
	standardizer Standardizer
	minLength    int
	maxLength    int
	logger       zerolog.Logger
}

// NewPipeline creates a normalization pipeline. A nil standardizer disables
// terminology standardization; a maxLength <= 0 disables truncation.
func NewPipeline(normalizer *Normalizer, standardizer Standardizer, minLength, maxLength int) *Pipeline {
	return &Pipeline{
		normalizer:   normalizer,
		standardizer: standardizer,
		minLength:    minLength,
		maxLength:    maxLength,
		logger:       zerolog.Nop(),
	}
}

// WithLogger sets the logger used for truncation warnings.
func (p *Pipeline) WithLogger(logger zerolog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Process cleans and standardizes raw text. Lengths are counted in runes.
// Content above the maximum is truncated and processing continues.
func (p *Pipeline) Process(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyContent
	}

	text := p.normalize(raw)
	if text == "" {
		return "", ErrEmptyContent
	}

	length := utf8.RuneCountInString(text)
	if length < p.minLength {
		return "", ErrContentTooShort
	}

	if p.maxLength > 0 && length > p.maxLength {
		p.logger.Warn().
			Int("length", length).
			Int("max_length", p.maxLength).
			Msg("content too long, truncating")
		text = strings.TrimRightFunc(truncateRunes(text, p.maxLength), unicode.IsSpace)
	}

	return text, nil
}

// normalize applies clean then standardize until the text stops changing.
func (p *Pipeline) normalize(text string) string {
	for i := 0; i < maxPasses; i++ {
		next := p.normalizer.Clean(text)
		if p.standardizer != nil {
			next = p.standardizer.Standardize(next)
		}
		if next == text {
			break
		}
		text = next
	}
	return text
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
