package analytics

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
)

// Analysis limits
const (
	// ContextWindow is the number of runes kept on each side of an entity.
	ContextWindow = 50

	// MaxKeyPhrases is the number of key phrases returned per document.
	MaxKeyPhrases = 10

	minPhraseRunes        = 10
	maxPhraseRunes        = 100
	relevanceKeywordBonus = 0.1
)

// Severity levels
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	// severityThreshold is the keyword count a level must exceed.
	severityThreshold = 2
)

var (
	durationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*(ngày|tuần|tháng|năm)\s*điều trị`),
		regexp.MustCompile(`(?i)điều trị\s*(\d+)\s*(ngày|tuần|tháng|năm)`),
		regexp.MustCompile(`(?i)trong\s*(\d+)\s*(ngày|tuần|tháng|năm)`),
	}
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)trẻ em\s*(\d+)\s*-\s*(\d+)\s*tuổi`),
		regexp.MustCompile(`(?i)người lớn\s*trên\s*(\d+)\s*tuổi`),
		regexp.MustCompile(`(?i)từ\s*(\d+)\s*đến\s*(\d+)\s*tuổi`),
	}
	phraseBoundary = regexp.MustCompile(`[.!?]+`)
)

// TermNormalizer maps a term to its canonical form. *lexicon.Lexicon satisfies it.
type TermNormalizer interface {
	Normalize(term string) string
}

// Analyzer extracts entities and medical signals from normalized content.
// It holds only read-only dictionaries and is safe for concurrent use.
type Analyzer struct {
	taxonomy   *ingest.Taxonomy
	tokenizer  *ingest.Tokenizer
	normalizer TermNormalizer
	enhanced   bool
}

// NewAnalyzer creates an analyzer. When enhanced is true, entities carry
// their surrounding context, a standardized form (via normalizer, if set) and
// inferred relationships.
func NewAnalyzer(taxonomy *ingest.Taxonomy, tokenizer *ingest.Tokenizer, normalizer TermNormalizer, enhanced bool) *Analyzer {
	return &Analyzer{
		taxonomy:   taxonomy,
		tokenizer:  tokenizer,
		normalizer: normalizer,
		enhanced:   enhanced,
	}
}

// Input is the part of an item the analyzer looks at.
type Input struct {
	Title     string
	Content   string // normalized content
	SourceURL string
}

// Analysis is the result of analyzing one item.
type Analysis struct {
	Entities    []ingest.Entity
	KeyPhrases  []string
	WordCount   int
	Relevance   float64
	Specialty   string
	ContentType string
	Temporal    Temporal
	Severity    Severity
}

// Temporal holds time-related signals found in the content.
type Temporal struct {
	TreatmentDuration string   `json:"treatment_duration,omitempty"`
	AgeGroups         []string `json:"age_groups,omitempty"`
}

// HasDuration reports whether a treatment duration was found.
func (t Temporal) HasDuration() bool { return t.TreatmentDuration != "" }

// Severity counts emergency and chronic indicators.
type Severity struct {
	EmergencyKeywords int    `json:"emergency_keywords"`
	ChronicKeywords   int    `json:"chronic_keywords"`
	Level             string `json:"severity_level"`
}

// Analyze runs every analysis step over one item.
func (a *Analyzer) Analyze(in Input) Analysis {
	return Analysis{
		Entities:    a.Entities(in.Content),
		KeyPhrases:  a.KeyPhrases(in.Content),
		WordCount:   a.tokenizer.WordCount(in.Content),
		Relevance:   a.Relevance(in.Content),
		Specialty:   a.taxonomy.ClassifySpecialty(in.Title, in.Content),
		ContentType: a.taxonomy.ClassifyContentType(in.Title, in.SourceURL),
		Temporal:    a.Temporal(in.Content),
		Severity:    a.Severity(in.Content),
	}
}

// Entities extracts dictionary entities, enriched when enhanced mode is on.
func (a *Analyzer) Entities(text string) []ingest.Entity {
	base := a.taxonomy.ExtractEntities(text)
	if !a.enhanced || len(base) == 0 {
		return base
	}

	runes := []rune(text)
	entities := make([]ingest.Entity, len(base))
	for i, e := range base {
		from := max(0, e.Start-ContextWindow)
		to := min(len(runes), e.End+ContextWindow)

		e.Context = string(runes[from:to])
		e.Relationships = InferRelationships(e, base)
		if a.normalizer != nil {
			e.StandardizedText = a.normalizer.Normalize(e.Text)
		}
		entities[i] = e
	}
	return entities
}

// Relevance scores how medical a text is: term occurrences per word plus a
// fixed bonus for each core healthcare keyword present, clamped to [0,1].
func (a *Analyzer) Relevance(text string) float64 {
	words := a.tokenizer.WordCount(text)
	if words == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	score := float64(a.taxonomy.CountTermOccurrences(lower)) / float64(words)
	score += relevanceKeywordBonus * float64(a.taxonomy.CountRelevanceKeywords(lower))

	if score > 1 {
		return 1
	}
	return score
}

// KeyPhrases returns up to MaxKeyPhrases sentences that mention a medical
// term, most relevant first. Long sentences are cut to 100 runes plus "...".
func (a *Analyzer) KeyPhrases(text string) []string {
	type scored struct {
		phrase    string
		relevance float64
	}

	var phrases []scored
	for _, sentence := range phraseBoundary.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if utf8.RuneCountInString(sentence) < minPhraseRunes {
			continue
		}
		if !a.taxonomy.ContainsTerm(strings.ToLower(sentence)) {
			continue
		}

		phrase := sentence
		if runes := []rune(sentence); len(runes) > maxPhraseRunes {
			phrase = string(runes[:maxPhraseRunes]) + "..."
		}
		phrases = append(phrases, scored{phrase: phrase, relevance: a.Relevance(phrase)})
	}

	sort.SliceStable(phrases, func(i, j int) bool {
		return phrases[i].relevance > phrases[j].relevance
	})

	if len(phrases) > MaxKeyPhrases {
		phrases = phrases[:MaxKeyPhrases]
	}

	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = p.phrase
	}
	return out
}

// Temporal finds the first treatment duration and every age-group phrase.
func (a *Analyzer) Temporal(text string) Temporal {
	var t Temporal

	for _, re := range durationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			t.TreatmentDuration = m[1] + " " + m[2]
			break
		}
	}

	for _, re := range agePatterns {
		t.AgeGroups = append(t.AgeGroups, re.FindAllString(text, -1)...)
	}

	return t
}

// Severity classifies content as high when emergency indicators occur more
// than twice, medium when chronic indicators do, low otherwise.
func (a *Analyzer) Severity(text string) Severity {
	lower := strings.ToLower(text)
	s := Severity{
		EmergencyKeywords: ingest.CountKeywords(lower, a.taxonomy.EmergencyKeywords()),
		ChronicKeywords:   ingest.CountKeywords(lower, a.taxonomy.ChronicKeywords()),
		Level:             SeverityLow,
	}

	switch {
	case s.EmergencyKeywords > severityThreshold:
		s.Level = SeverityHigh
	case s.ChronicKeywords > severityThreshold:
		s.Level = SeverityMedium
	}
	return s
}

// EntityTypes returns the distinct entity types of the analysis, sorted.
func (an Analysis) EntityTypes() []string {
	seen := make(map[string]struct{})
	var types []string
	for _, e := range an.Entities {
		if _, ok := seen[e.Type]; ok {
			continue
		}
		seen[e.Type] = struct{}{}
		types = append(types, e.Type)
	}
	sort.Strings(types)
	return types
}
