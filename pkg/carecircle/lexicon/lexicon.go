package lexicon

import (
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Lexicon stores medical terminology mappings used to standardize text:
// - Synonyms: phrases rewritten to one preferred form (cao huyết áp → tăng huyết áp)
// - Abbreviations: annotated with their expansion (HA → "HA (huyết áp)")
// - Units: annotated with a description (mmHg → "mmHg (milimét thủy ngân)")
//
// All lookups are literal. A Lexicon is immutable after loading and safe for
// concurrent use.
type Lexicon struct {
	// canonical -> all variants (including canonical itself)
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string

	// canonical forms in insertion order; rewrites are applied in this order
	order []string

	abbreviations []Annotation
	units         []Annotation

	// one case-folded or exact pattern per registered term
	patterns map[string]*regexp.Regexp
}

// Annotation is a term followed by a parenthetical description when it
// appears in text.
type Annotation struct {
	Term        string `yaml:"term"`
	Description string `yaml:"description"`
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
		patterns:     make(map[string]*regexp.Regexp),
	}
}

// LoadFromYAML loads terminology mappings from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: tăng huyết áp
//	    variants: [cao huyết áp]
//	abbreviations:
//	  - term: HA
//	    description: huyết áp
//	units:
//	  - term: mmHg
//	    description: milimét thủy ngân
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Synonyms []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"synonyms"`
		Abbreviations []Annotation `yaml:"abbreviations"`
		Units         []Annotation `yaml:"units"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Synonyms {
		lex.AddSynonymGroup(entry.Canonical, entry.Variants)
	}
	for _, a := range config.Abbreviations {
		lex.AddAbbreviation(a.Term, a.Description)
	}
	for _, u := range config.Units {
		lex.AddUnit(u.Term, u.Description)
	}

	return lex, nil
}

// AddSynonymGroup adds a synonym group with a canonical form and its variants.
// The canonical form is always included as the first entry in the variants list.
// If the group already exists, old reverse index entries are cleaned up first.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if canonical == "" {
		return
	}

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			delete(l.reverseIndex, oldV)
		}
	} else {
		l.order = append(l.order, canonical)
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)

	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !seen[v] {
			normalized = append(normalized, v)
			seen[v] = true
		}
	}

	l.synonyms[canonical] = normalized

	for _, v := range normalized {
		l.reverseIndex[v] = canonical
		l.compile(v, true)
	}
}

// AddAbbreviation registers an abbreviation and its expansion. Matching is
// case-insensitive; the annotation keeps the registered spelling.
func (l *Lexicon) AddAbbreviation(abbr, expansion string) {
	abbr = strings.TrimSpace(abbr)
	if abbr == "" || expansion == "" {
		return
	}
	l.abbreviations = upsertAnnotation(l.abbreviations, Annotation{Term: abbr, Description: expansion})
	l.compile(abbr, true)
}

// AddUnit registers a measurement unit and its description. Matching is
// case-sensitive (mg and Mg are different units).
func (l *Lexicon) AddUnit(unit, description string) {
	unit = strings.TrimSpace(unit)
	if unit == "" || description == "" {
		return
	}
	l.units = upsertAnnotation(l.units, Annotation{Term: unit, Description: description})
	l.compile(unit, false)
}

// Normalize returns the canonical form of a term.
// If the term is not in the lexicon, returns the term itself unchanged.
//
// Examples:
//   - Normalize("cao huyết áp") -> "tăng huyết áp"
//   - Normalize("sốt") -> "sốt"
func (l *Lexicon) Normalize(term string) string {
	if canonical, ok := l.reverseIndex[strings.ToLower(term)]; ok {
		return canonical
	}
	return term
}

// Variants returns all known variants of a term (including the canonical form).
// If the term is not in the lexicon, returns a slice containing only the term itself.
func (l *Lexicon) Variants(term string) []string {
	term = strings.ToLower(term)

	if variants, ok := l.synonyms[term]; ok {
		return append([]string(nil), variants...)
	}

	if canonical, ok := l.reverseIndex[term]; ok {
		if variants, ok := l.synonyms[canonical]; ok {
			return append([]string(nil), variants...)
		}
	}

	return []string{term}
}

// Standardize rewrites text in three passes: abbreviation expansion,
// synonym canonicalization, unit annotation. Each pass rewrites every
// whole-word occurrence and leaves already standardized text untouched, so
// Standardize(Standardize(x)) == Standardize(x).
func (l *Lexicon) Standardize(text string) string {
	if text == "" {
		return text
	}

	for _, a := range l.abbreviations {
		text = l.annotate(text, a)
	}

	for _, canonical := range l.order {
		for _, variant := range l.synonyms[canonical][1:] {
			text = l.rewrite(text, variant, canonical)
		}
	}

	for _, u := range l.units {
		text = l.annotate(text, u)
	}

	return text
}

// annotate appends " (description)" after each whole-word occurrence of the
// term that is not already annotated.
func (l *Lexicon) annotate(text string, a Annotation) string {
	suffix := " (" + a.Description + ")"
	replacement := a.Term + suffix

	return l.replaceWords(text, a.Term, func(_, rest string) (string, bool) {
		if hasPrefixFold(rest, suffix) {
			return "", false
		}
		return replacement, true
	})
}

// rewrite replaces whole-word occurrences of variant with canonical, unless
// the occurrence already sits inside an occurrence of canonical.
func (l *Lexicon) rewrite(text, variant, canonical string) string {
	var protected [][]int
	if re := l.patterns[canonical]; re != nil {
		protected = re.FindAllStringIndex(text, -1)
	}

	return l.replaceWordsAt(text, variant, func(start, end int) (string, bool) {
		for _, r := range protected {
			if start >= r[0] && end <= r[1] {
				return "", false
			}
		}
		return canonical, true
	})
}

func (l *Lexicon) replaceWords(text, term string, fn func(match, rest string) (string, bool)) string {
	return l.replaceWordsAt(text, term, func(start, end int) (string, bool) {
		return fn(text[start:end], text[end:])
	})
}

// replaceWordsAt finds word-bounded matches of term and lets fn decide the
// replacement for each match given its byte range in text.
func (l *Lexicon) replaceWordsAt(text, term string, fn func(start, end int) (string, bool)) string {
	re := l.patterns[term]
	if re == nil {
		return text
	}

	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if !atWordBoundary(text, m[0]) || !atWordBoundary(text, m[1]) {
			continue
		}
		repl, ok := fn(m[0], m[1])
		if !ok {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(repl)
		last = m[1]
	}
	if last == 0 && b.Len() == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func (l *Lexicon) compile(term string, foldCase bool) {
	if _, ok := l.patterns[term]; ok {
		return
	}
	expr := regexp.QuoteMeta(term)
	if foldCase {
		expr = "(?i)" + expr
	}
	l.patterns[term] = regexp.MustCompile(expr)
}

// atWordBoundary mirrors \b with Unicode word characters: the runes on
// either side of byte offset i differ in word-ness.
func atWordBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || r == '_'
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

func upsertAnnotation(list []Annotation, a Annotation) []Annotation {
	for i := range list {
		if list[i].Term == a.Term {
			list[i] = a
			return list
		}
	}
	return append(list, a)
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() LexiconStats {
	totalVariants := 0
	for _, variants := range l.synonyms {
		totalVariants += len(variants)
	}

	return LexiconStats{
		SynonymGroups: len(l.synonyms),
		TotalVariants: totalVariants,
		Abbreviations: len(l.abbreviations),
		Units:         len(l.units),
	}
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	SynonymGroups int // Number of canonical forms (synonym groups)
	TotalVariants int // Total number of variants across all groups
	Abbreviations int
	Units         int
}
