package ingest

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Confidence model for dictionary matches.
const (
	baseConfidence     = 0.7
	boundaryPenalty    = 0.1
	longTermBonus      = 0.1
	longTermRunes      = 10
	contextBonus       = 0.05
	contextWindowRunes = 50
	defaultSpecialty   = "general"
	defaultContentType = "article"
)

// KeywordGroup is a named, ordered keyword list. Group order matters: the
// first group reaching the best score wins a classification.
type KeywordGroup struct {
	Name     string
	Keywords []string
}

// Taxonomy holds the curated healthcare vocabulary: entity term lists,
// specialty and content-type keywords, and the keyword lists used by
// relevance and severity scoring. It is built once and read concurrently.
type Taxonomy struct {
	terms        []KeywordGroup // entity type → terms
	specialties  []KeywordGroup
	contentTypes []KeywordGroup // matched against the title
	urlTypes     []KeywordGroup // matched against the source URL

	relevanceKeywords []string
	contextWords      []string
	emergency         []string
	chronic           []string
}

// NewTaxonomy creates an empty taxonomy
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{}
}

// AddTerms adds (or replaces) the term list of an entity type.
func (t *Taxonomy) AddTerms(entityType string, terms []string) {
	t.terms = upsertGroup(t.terms, entityType, terms)
}

// AddSpecialty adds a medical specialty with its keywords
func (t *Taxonomy) AddSpecialty(name string, keywords []string) {
	t.specialties = upsertGroup(t.specialties, name, keywords)
}

// AddContentType adds a content type recognised from title keywords
func (t *Taxonomy) AddContentType(name string, keywords []string) {
	t.contentTypes = upsertGroup(t.contentTypes, name, keywords)
}

// AddURLType adds a content type recognised from URL fragments
func (t *Taxonomy) AddURLType(name string, fragments []string) {
	t.urlTypes = upsertGroup(t.urlTypes, name, fragments)
}

// SetRelevanceKeywords sets the core healthcare vocabulary that earns a
// fixed relevance bonus when present.
func (t *Taxonomy) SetRelevanceKeywords(keywords []string) {
	t.relevanceKeywords = lowerAll(keywords)
}

// SetContextWords sets the words that raise match confidence nearby.
func (t *Taxonomy) SetContextWords(words []string) {
	t.contextWords = lowerAll(words)
}

// SetSeverityKeywords sets the emergency and chronic indicator lists.
func (t *Taxonomy) SetSeverityKeywords(emergency, chronic []string) {
	t.emergency = lowerAll(emergency)
	t.chronic = lowerAll(chronic)
}

// TermGroups returns the entity term groups in declaration order.
func (t *Taxonomy) TermGroups() []KeywordGroup { return copyGroups(t.terms) }

// Specialties returns the specialty groups in declaration order.
func (t *Taxonomy) Specialties() []KeywordGroup { return copyGroups(t.specialties) }

// RelevanceKeywords returns the core healthcare vocabulary.
func (t *Taxonomy) RelevanceKeywords() []string { return append([]string(nil), t.relevanceKeywords...) }

// EmergencyKeywords returns the emergency indicator list.
func (t *Taxonomy) EmergencyKeywords() []string { return append([]string(nil), t.emergency...) }

// ChronicKeywords returns the chronic indicator list.
func (t *Taxonomy) ChronicKeywords() []string { return append([]string(nil), t.chronic...) }

// Entity is a dictionary match inside normalized content. Offsets count
// runes, not bytes.
type Entity struct {
	Text             string   `json:"text"`
	Type             string   `json:"type"`
	Start            int      `json:"start"`
	End              int      `json:"end"`
	Confidence       float64  `json:"confidence"`
	Context          string   `json:"context,omitempty"`
	StandardizedText string   `json:"standardized_text"`
	Relationships    []string `json:"relationships,omitempty"`
}

// ExtractEntities finds every occurrence of every term in text.
// Results are unique on (text, start, end) and ordered by start.
func (t *Taxonomy) ExtractEntities(text string) []Entity {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	lower := strings.Map(unicode.ToLower, text)
	lowerRunes := []rune(lower)

	var entities []Entity
	seen := make(map[entityKey]struct{})

	for _, group := range t.terms {
		for _, term := range group.Keywords {
			termLen := utf8.RuneCountInString(term)
			for _, start := range RuneOffsets(lower, term) {
				end := start + termLen
				key := entityKey{text: term, start: start, end: end}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				entities = append(entities, Entity{
					Text:             term,
					Type:             group.Name,
					Start:            start,
					End:              end,
					Confidence:       t.confidence(runes, lowerRunes, start, end),
					StandardizedText: term,
				})
			}
		}
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Start < entities[j].Start
	})

	return entities
}

type entityKey struct {
	text       string
	start, end int
}

func (t *Taxonomy) confidence(runes, lowerRunes []rune, start, end int) float64 {
	conf := baseConfidence

	if start > 0 && isAlnum(runes[start-1]) {
		conf -= boundaryPenalty
	}
	if end < len(runes) && isAlnum(runes[end]) {
		conf -= boundaryPenalty
	}

	if end-start > longTermRunes {
		conf += longTermBonus
	}

	from := max(0, start-contextWindowRunes)
	to := min(len(lowerRunes), end+contextWindowRunes)
	window := string(lowerRunes[from:to])
	for _, w := range t.contextWords {
		if strings.Contains(window, w) {
			conf += contextBonus
		}
	}

	return clamp01(conf)
}

// CountTermOccurrences counts non-overlapping occurrences of every term in
// already lowercased text.
func (t *Taxonomy) CountTermOccurrences(lower string) int {
	total := 0
	for _, group := range t.terms {
		for _, term := range group.Keywords {
			total += strings.Count(lower, term)
		}
	}
	return total
}

// ContainsTerm reports whether lowercased text contains any term.
func (t *Taxonomy) ContainsTerm(lower string) bool {
	for _, group := range t.terms {
		for _, term := range group.Keywords {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

// CountRelevanceKeywords counts how many distinct core keywords occur.
func (t *Taxonomy) CountRelevanceKeywords(lower string) int {
	n := 0
	for _, kw := range t.relevanceKeywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// ClassifySpecialty scores each specialty by keyword occurrences in the
// title and content and returns the first best one, or "general".
func (t *Taxonomy) ClassifySpecialty(title, content string) string {
	text := strings.ToLower(title) + " " + strings.ToLower(content)

	best, bestScore := defaultSpecialty, 0
	for _, group := range t.specialties {
		score := CountKeywords(text, group.Keywords)
		if score > bestScore {
			best, bestScore = group.Name, score
		}
	}
	return best
}

// ClassifyContentType checks title keywords first and URL fragments second.
func (t *Taxonomy) ClassifyContentType(title, sourceURL string) string {
	lowerTitle := strings.ToLower(title)
	for _, group := range t.contentTypes {
		if containsAny(lowerTitle, group.Keywords) {
			return group.Name
		}
	}

	lowerURL := strings.ToLower(sourceURL)
	for _, group := range t.urlTypes {
		if containsAny(lowerURL, group.Keywords) {
			return group.Name
		}
	}

	return defaultContentType
}

// CountKeywords sums non-overlapping occurrences of each keyword in text.
func CountKeywords(text string, keywords []string) int {
	total := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		total += strings.Count(text, kw)
	}
	return total
}

// RuneOffsets returns the rune offset of every occurrence of needle in
// haystack, overlapping matches included.
func RuneOffsets(haystack, needle string) []int {
	if needle == "" {
		return nil
	}

	var offsets []int
	byteBase, runeBase := 0, 0
	for {
		i := strings.Index(haystack[byteBase:], needle)
		if i < 0 {
			break
		}
		runeBase += utf8.RuneCountInString(haystack[byteBase : byteBase+i])
		offsets = append(offsets, runeBase)

		_, size := utf8.DecodeRuneInString(haystack[byteBase+i:])
		byteBase += i + size
		runeBase++
	}
	return offsets
}

// EntityTexts returns the Text of each entity, in order.
func EntityTexts(entities []Entity) []string {
	texts := make([]string, len(entities))
	for i, e := range entities {
		texts[i] = e.Text
	}
	return texts
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func upsertGroup(groups []KeywordGroup, name string, keywords []string) []KeywordGroup {
	g := KeywordGroup{Name: name, Keywords: lowerAll(keywords)}
	for i := range groups {
		if groups[i].Name == name {
			groups[i] = g
			return groups
		}
	}
	return append(groups, g)
}

func copyGroups(groups []KeywordGroup) []KeywordGroup {
	out := make([]KeywordGroup, len(groups))
	for i, g := range groups {
		out[i] = KeywordGroup{Name: g.Name, Keywords: append([]string(nil), g.Keywords...)}
	}
	return out
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
