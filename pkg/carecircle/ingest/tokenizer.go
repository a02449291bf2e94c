package ingest

import (
	"strings"
	"unicode"
)

// Tokenizer splits Vietnamese text into lowercase word tokens.
// Vietnamese writes one syllable per space-separated token, so a token here
// is a syllable, not a dictionary word.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// NewDefaultTokenizer creates a tokenizer with the built-in Vietnamese stoplist.
func NewDefaultTokenizer() *Tokenizer {
	return NewTokenizer(DefaultStopwords())
}

// Words returns every lowercase word token in text, stopwords included.
// It is the denominator used by relevance scoring and word counts.
func (t *Tokenizer) Words(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if isWordRune(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// WordCount is len(t.Words(text)) without building the slice.
func (t *Tokenizer) WordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if isWordRune(r) {
			if !inWord {
				count++
				inWord = true
			}
			continue
		}
		inWord = false
	}
	return count
}

// Tokenize returns the significant tokens of text: lowercase, no stopwords,
// no single-rune tokens and no pure numbers.
func (t *Tokenizer) Tokenize(text string) []string {
	words := t.Words(text)
	tokens := words[:0]
	for _, w := range words {
		if word := t.processToken(w); word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func (t *Tokenizer) processToken(word string) string {
	if len([]rune(word)) <= 1 {
		return ""
	}

	// Mixed tokens like "covid-19" survive upstream splitting only as
	// "covid" and "19"; the number half carries no meaning on its own.
	if isNumericOnly(word) {
		return ""
	}

	if t.IsStopword(word) {
		return ""
	}

	return word
}

// isNumericOnly returns true if the token contains only digits.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsStopword reports whether word is in the stoplist.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[strings.ToLower(word)]
	return ok
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, strings.ToLower(word))
}

// isWordRune matches the \w class of the scraped text: letters, digits,
// underscore and combining marks left over from decomposed diacritics.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}
