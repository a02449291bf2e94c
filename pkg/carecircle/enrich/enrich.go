// Package enrich builds the retrieval metadata attached to processed items.
package enrich

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/canhta/CareCircle/pkg/carecircle/analytics"
	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
)

// ProcessingVersion stamps every enriched item.
const ProcessingVersion = "2.0.0"

const (
	maxSearchKeywords   = 20
	maxKeyEntities      = 5
	minKeywordRunes     = 3
	minPhraseWordRunes  = 4
	authorityBoost      = 0.05
	defaultAuthority    = 0.30
	generalSpecialty    = "general"
	contentIDPrefix     = "content_"
	contentIDHashLength = 8
)

var authorityScores = map[string]float64{
	"government":          0.95,
	"hospital":            0.90,
	"medical_institution": 0.85,
	"university":          0.80,
	"news":                0.60,
	"blog":                0.40,
	"unknown":             defaultAuthority,
}

// authorityDomains earn a fixed boost; the first match wins.
var authorityDomains = []string{"moh.gov.vn", "vinmec.com", "bachmai.edu.vn", "choray.vn"}

// Source identifies where an item came from.
type Source struct {
	SourceURL  string
	SourceType string
}

// Metadata is the enriched metadata of one item.
type Metadata struct {
	ProcessingVersion string    `json:"processing_version"`
	ProcessedAt       time.Time `json:"processed_at"`
	QualityScore      float64   `json:"quality_score"`
	MedicalSpecialty  string    `json:"medical_specialty"`
	ContentType       string    `json:"content_type"`
	MedicalRelevance  float64   `json:"medical_relevance"`
	EntityCount       int       `json:"entity_count"`
	EntityTypes       []string  `json:"entity_types"`
	KeyEntities       []string  `json:"key_entities"`
	WordCount         int       `json:"word_count"`
	HasTemporalInfo   bool      `json:"has_temporal_info"`
	SeverityLevel     string    `json:"severity_level"`
	SourceAuthority   float64   `json:"source_authority"`
	SearchKeywords    []string  `json:"search_keywords"`
	SemanticTags      []string  `json:"semantic_tags"`
}

// Map merges the enriched fields over a copy of base.
func (m Metadata) Map(base map[string]any) map[string]any {
	out := make(map[string]any, len(base)+15)
	for k, v := range base {
		out[k] = v
	}

	out["processing_version"] = m.ProcessingVersion
	out["processed_at"] = m.ProcessedAt.UTC().Format(time.RFC3339Nano)
	out["quality_score"] = m.QualityScore
	out["medical_specialty"] = m.MedicalSpecialty
	out["content_type"] = m.ContentType
	out["medical_relevance"] = m.MedicalRelevance
	out["entity_count"] = m.EntityCount
	out["entity_types"] = m.EntityTypes
	out["key_entities"] = m.KeyEntities
	out["word_count"] = m.WordCount
	out["has_temporal_info"] = m.HasTemporalInfo
	out["severity_level"] = m.SeverityLevel
	out["source_authority"] = m.SourceAuthority
	out["search_keywords"] = m.SearchKeywords
	out["semantic_tags"] = m.SemanticTags
	return out
}

// Enricher derives metadata and content IDs. Apart from the clock and the
// ID entropy it is a pure function of its inputs.
type Enricher struct {
	tokenizer *ingest.Tokenizer
	now       func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates an enricher. A nil clock means time.Now.
func New(tokenizer *ingest.Tokenizer, now func() time.Time) *Enricher {
	if now == nil {
		now = time.Now
	}
	if tokenizer == nil {
		tokenizer = ingest.NewDefaultTokenizer()
	}
	return &Enricher{
		tokenizer: tokenizer,
		now:       now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Now returns the current time of the enricher's clock in UTC.
func (e *Enricher) Now() time.Time {
	return e.now().UTC()
}

// Enrich builds the metadata for an analyzed item.
func (e *Enricher) Enrich(src Source, an analytics.Analysis, quality float64) Metadata {
	keyEntities := make([]string, 0, maxKeyEntities)
	for _, ent := range an.Entities {
		if len(keyEntities) == maxKeyEntities {
			break
		}
		keyEntities = append(keyEntities, ent.StandardizedText)
	}

	return Metadata{
		ProcessingVersion: ProcessingVersion,
		ProcessedAt:       e.Now(),
		QualityScore:      quality,
		MedicalSpecialty:  an.Specialty,
		ContentType:       an.ContentType,
		MedicalRelevance:  an.Relevance,
		EntityCount:       len(an.Entities),
		EntityTypes:       an.EntityTypes(),
		KeyEntities:       keyEntities,
		WordCount:         an.WordCount,
		HasTemporalInfo:   an.Temporal.HasDuration(),
		SeverityLevel:     an.Severity.Level,
		SourceAuthority:   SourceAuthority(src.SourceType, src.SourceURL),
		SearchKeywords:    e.SearchKeywords(an),
		SemanticTags:      SemanticTags(an),
	}
}

// ContentID returns content_<ULID>_<md5(sourceURL)[:8]>. The ULID carries
// the clock's millisecond timestamp and monotonic entropy.
func (e *Enricher) ContentID(sourceURL string) string {
	e.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(e.now()), e.entropy)
	e.mu.Unlock()

	sum := md5.Sum([]byte(sourceURL))
	return contentIDPrefix + id.String() + "_" + hex.EncodeToString(sum[:])[:contentIDHashLength]
}

// NewRunID returns a fresh ULID for a processing run.
func (e *Enricher) NewRunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}

// SourceAuthority scores a source by type, with a bonus for known
// high-authority domains, capped at 1.
func SourceAuthority(sourceType, sourceURL string) float64 {
	score, ok := authorityScores[sourceType]
	if !ok {
		score = defaultAuthority
	}

	lowerURL := strings.ToLower(sourceURL)
	for _, domain := range authorityDomains {
		if strings.Contains(lowerURL, domain) {
			score += authorityBoost
			break
		}
	}

	return min(1, score)
}

// SearchKeywords collects lowercase retrieval keywords: entity texts and
// their standardized forms, significant key-phrase words and the specialty.
// Only purely alphabetic keywords longer than two runes are kept, so
// multi-word terms are dropped. The result is sorted and holds at most 20
// entries.
func (e *Enricher) SearchKeywords(an analytics.Analysis) []string {
	candidates := make(map[string]struct{})
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if utf8.RuneCountInString(kw) < minKeywordRunes || !isAlphabetic(kw) {
			return
		}
		candidates[kw] = struct{}{}
	}

	for _, ent := range an.Entities {
		add(ent.Text)
		add(ent.StandardizedText)
	}

	for _, phrase := range an.KeyPhrases {
		for _, word := range e.tokenizer.Tokenize(phrase) {
			if utf8.RuneCountInString(word) >= minPhraseWordRunes {
				add(word)
			}
		}
	}

	if an.Specialty != "" && an.Specialty != generalSpecialty {
		add(an.Specialty)
	}

	keywords := make([]string, 0, len(candidates))
	for kw := range candidates {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	if len(keywords) > maxSearchKeywords {
		keywords = keywords[:maxSearchKeywords]
	}
	return keywords
}

// SemanticTags returns category:value tags for an analysis.
func SemanticTags(an analytics.Analysis) []string {
	var tags []string

	if an.Specialty != "" && an.Specialty != generalSpecialty {
		tags = append(tags, "specialty:"+an.Specialty)
	}
	tags = append(tags, "type:"+an.ContentType)
	tags = append(tags, "severity:"+an.Severity.Level)

	for _, t := range an.EntityTypes() {
		tags = append(tags, "entity:"+t)
	}

	if an.Temporal.HasDuration() {
		tags = append(tags, "has:treatment_duration")
	}
	if len(an.Temporal.AgeGroups) > 0 {
		tags = append(tags, "has:age_groups")
	}
	return tags
}

// isAlphabetic reports whether s is non-empty and made of letters only.
func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			return false
		}
	}
	return true
}
