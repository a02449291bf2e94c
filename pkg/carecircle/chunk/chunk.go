// Package chunk splits admitted content into overlapping, sentence-aligned
// chunks sized for embedding.
package chunk

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
)

// Chunk types
const (
	TypeComplete = "complete"
	TypeSemantic = "semantic"
	TypeFixed    = "fixed"
)

const (
	minSentenceRunes  = 10
	completeThreshold = 3
	maxOverlapRatio   = 0.3
	locatorRunes      = 50

	baseChunkQuality = 0.5
	densityHigh      = 0.5
	densityLow       = 0.2
)

// sentenceEnd matches terminal punctuation followed by whitespace or end of
// text. The first submatch is the trailing whitespace.
var sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)

// pointNamespace roots the deterministic chunk point IDs.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://carecircle.vn/chunks"))

// Config controls chunk sizes. Sizes are runes for semantic chunking and
// words for the fixed fallback.
type Config struct {
	MaxChunkSize int  `yaml:"max_chunk_size" split_words:"true"`
	OverlapSize  int  `yaml:"overlap_size" split_words:"true"`
	MinChunkSize int  `yaml:"min_chunk_size" split_words:"true"`
	Semantic     bool `yaml:"semantic_chunking" split_words:"true"`
}

// DefaultConfig returns the default chunking settings.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize: 1000,
		OverlapSize:  200,
		MinChunkSize: 100,
		Semantic:     true,
	}
}

// Validate checks size relationships.
func (c Config) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be positive, got %d: %w", c.MaxChunkSize, internalerr.ErrInvalidConfig)
	}
	if c.OverlapSize < 0 || c.OverlapSize >= c.MaxChunkSize {
		return fmt.Errorf("overlap_size must be in [0, %d), got %d: %w", c.MaxChunkSize, c.OverlapSize, internalerr.ErrInvalidConfig)
	}
	if c.MinChunkSize < 0 || c.MinChunkSize > c.MaxChunkSize {
		return fmt.Errorf("min_chunk_size must be in [0, %d], got %d: %w", c.MaxChunkSize, c.MinChunkSize, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Entity is the part of a document entity repeated on each chunk.
type Entity struct {
	Text             string  `json:"text"`
	Type             string  `json:"type"`
	Confidence       float64 `json:"confidence"`
	StandardizedText string  `json:"standardized_text"`
}

// Chunk is one embedding unit. Positions are rune offsets into the full
// normalized content and are best effort for semantic chunks.
type Chunk struct {
	ChunkID          int      `json:"chunk_id"`
	Content          string   `json:"content"`
	StartPosition    int      `json:"start_position"`
	EndPosition      int      `json:"end_position"`
	WordCount        int      `json:"word_count"`
	CharacterCount   int      `json:"character_count"`
	SentenceCount    int      `json:"sentence_count"`
	ChunkType        string   `json:"chunk_type"`
	Entities         []Entity `json:"entities"`
	QualityScore     float64  `json:"quality_score"`
	MedicalRelevance float64  `json:"medical_relevance"`
}

// PointID derives a stable UUID for a chunk of a content item, usable as a
// vector store point ID.
func PointID(contentID string, chunkID int) string {
	return uuid.NewSHA1(pointNamespace, []byte(contentID+"#"+strconv.Itoa(chunkID))).String()
}

// RelevanceScorer scores the medical relevance of a text.
// *analytics.Analyzer satisfies it.
type RelevanceScorer interface {
	Relevance(text string) float64
}

// Chunker splits content into chunks. It is stateless and safe for
// concurrent use.
type Chunker struct {
	cfg       Config
	relevance RelevanceScorer
}

// New creates a chunker. The config must be valid.
func New(cfg Config, relevance RelevanceScorer) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if relevance == nil {
		return nil, fmt.Errorf("relevance scorer is required: %w", internalerr.ErrInvalidConfig)
	}
	return &Chunker{cfg: cfg, relevance: relevance}, nil
}

// Config returns the chunker settings.
func (c *Chunker) Config() Config { return c.cfg }

// Chunk splits content using semantic or fixed chunking. entities are the
// document-level entities; each chunk keeps those whose text it contains.
func (c *Chunker) Chunk(content string, entities []ingest.Entity) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if !c.cfg.Semantic {
		return c.fixed(content, entities)
	}

	sentences := SplitSentences(content)
	if len(sentences) <= completeThreshold {
		ch := c.build(content, 0, entities)
		ch.ChunkType = TypeComplete
		ch.StartPosition = 0
		ch.EndPosition = ch.CharacterCount
		return []Chunk{ch}
	}

	var (
		chunks  []Chunk
		current []string
		length  int
	)

	emit := func() {
		text := strings.Join(current, " ")
		if utf8.RuneCountInString(text) < c.cfg.MinChunkSize {
			return
		}
		ch := c.build(text, len(chunks), entities)
		ch.StartPosition, ch.EndPosition = locate(content, text, ch.CharacterCount)
		chunks = append(chunks, ch)
	}

	for _, sentence := range sentences {
		n := utf8.RuneCountInString(sentence)
		if length+n > c.cfg.MaxChunkSize && len(current) > 0 {
			emit()
			current = append(overlapSuffix(current, c.cfg.OverlapSize), sentence)
			length = runeSum(current)
			continue
		}
		current = append(current, sentence)
		length += n
	}
	if len(current) > 0 {
		emit()
	}

	return chunks
}

// fixed cuts content into word windows of MaxChunkSize words with a stride
// of MaxChunkSize-OverlapSize words. Every window is kept, including short
// trailing windows that lie inside the previous one.
func (c *Chunker) fixed(content string, entities []ingest.Entity) []Chunk {
	words := wordSpans(content)
	stride := c.cfg.MaxChunkSize - c.cfg.OverlapSize

	var chunks []Chunk
	for i := 0; i < len(words); i += stride {
		end := min(i+c.cfg.MaxChunkSize, len(words))

		parts := make([]string, 0, end-i)
		for _, w := range words[i:end] {
			parts = append(parts, w.text)
		}

		ch := c.build(strings.Join(parts, " "), len(chunks), entities)
		ch.ChunkType = TypeFixed
		ch.StartPosition = words[i].start
		ch.EndPosition = words[end-1].end
		chunks = append(chunks, ch)
	}
	return chunks
}

// build fills the counts, entity subset and scores of a semantic chunk.
func (c *Chunker) build(text string, id int, entities []ingest.Entity) Chunk {
	chunkEntities := EntitiesIn(text, entities)
	relevance := c.relevance.Relevance(text)
	words := len(strings.Fields(text))

	return Chunk{
		ChunkID:          id,
		Content:          text,
		WordCount:        words,
		CharacterCount:   utf8.RuneCountInString(text),
		SentenceCount:    len(SplitSentences(text)),
		ChunkType:        TypeSemantic,
		Entities:         chunkEntities,
		QualityScore:     Quality(text, words, len(chunkEntities), relevance),
		MedicalRelevance: relevance,
	}
}

// SplitSentences splits text after runs of '.', '!' or '?' followed by
// whitespace or the end of text. Sentences keep their punctuation; fragments
// of 10 runes or fewer, not counting the terminal punctuation, are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	keep := func(s string) {
		s = strings.TrimSpace(s)
		body := strings.TrimSpace(strings.TrimRight(s, ".!?"))
		if utf8.RuneCountInString(body) > minSentenceRunes {
			sentences = append(sentences, s)
		}
	}

	last := 0
	for _, m := range sentenceEnd.FindAllStringSubmatchIndex(text, -1) {
		keep(text[last:m[2]])
		last = m[1]
	}
	if last < len(text) {
		keep(text[last:])
	}
	return sentences
}

// EntitiesIn returns the entities whose lowercased text occurs in the
// lowercased chunk, one per distinct text and type.
func EntitiesIn(text string, entities []ingest.Entity) []Entity {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})

	var out []Entity
	for _, e := range entities {
		if !strings.Contains(lower, strings.ToLower(e.Text)) {
			continue
		}
		key := e.Type + "\x00" + e.Text
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		standardized := e.StandardizedText
		if standardized == "" {
			standardized = e.Text
		}
		out = append(out, Entity{
			Text:             e.Text,
			Type:             e.Type,
			Confidence:       e.Confidence,
			StandardizedText: standardized,
		})
	}
	return out
}

// Quality scores a chunk for embedding: base 0.5, entity density per ten
// words, a complete final sentence and the chunk's own relevance.
func Quality(text string, words, entityCount int, relevance float64) float64 {
	score := baseChunkQuality

	density := float64(entityCount) / max(1, float64(words)/10)
	switch {
	case density > densityHigh:
		score += 0.2
	case density > densityLow:
		score += 0.1
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" && strings.ContainsRune(".!?", rune(trimmed[len(trimmed)-1])) {
		score += 0.1
	}

	score += 0.2 * relevance

	return min(1, score)
}

// overlapSuffix returns the last sentences of a closed chunk that seed the
// next one: max(1, n*min(0.3, overlap/total)) of them.
func overlapSuffix(sentences []string, overlap int) []string {
	total := runeSum(sentences)
	if total == 0 {
		return nil
	}

	ratio := min(maxOverlapRatio, float64(overlap)/float64(total))
	count := max(1, int(float64(len(sentences))*ratio))

	return append([]string(nil), sentences[len(sentences)-count:]...)
}

// locate finds a chunk in content by its first 50 runes. A miss maps to 0.
func locate(content, text string, length int) (int, int) {
	prefix := text
	if runes := []rune(text); len(runes) > locatorRunes {
		prefix = string(runes[:locatorRunes])
	}

	i := strings.Index(content, prefix)
	if i < 0 {
		return 0, length
	}
	start := utf8.RuneCountInString(content[:i])
	return start, start + length
}

func runeSum(sentences []string) int {
	n := 0
	for _, s := range sentences {
		n += utf8.RuneCountInString(s)
	}
	return n
}

type wordSpan struct {
	text       string
	start, end int
}

// wordSpans splits on whitespace and records rune offsets of each word.
func wordSpans(content string) []wordSpan {
	var spans []wordSpan
	pos := 0
	for _, field := range strings.Fields(content) {
		i := strings.Index(content, field)
		start := pos + utf8.RuneCountInString(content[:i])
		end := start + utf8.RuneCountInString(field)
		spans = append(spans, wordSpan{text: field, start: start, end: end})

		content = content[i+len(field):]
		pos = end
	}
	return spans
}
