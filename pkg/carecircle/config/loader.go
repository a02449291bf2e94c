package config

import (
	"fmt"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
	"github.com/canhta/CareCircle/pkg/carecircle/lexicon"
)

// Loader loads all dictionary files and constructs components
type Loader struct {
	StoplistPath string
	TaxonomyPath string
	LexiconPath  string

	// ExtraStopwords are added to the loaded stoplist, KeepWords removed
	// from it.
	ExtraStopwords []string
	KeepWords      []string
}

// NewLoader returns a loader for the dictionary paths of cfg.
func NewLoader(cfg DictionariesConfig) *Loader {
	return &Loader{
		StoplistPath:   cfg.Stoplist,
		TaxonomyPath:   cfg.Taxonomy,
		LexiconPath:    cfg.Lexicon,
		ExtraStopwords: cfg.ExtraStopwords,
		KeepWords:      cfg.KeepWords,
	}
}

// Components holds all loaded dictionary components
type Components struct {
	Tokenizer *ingest.Tokenizer
	Taxonomy  *ingest.Taxonomy
	Lexicon   *lexicon.Lexicon
}

// Load reads all dictionary files and returns initialized components.
// Unset paths use the built-in Vietnamese dictionaries.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load stoplist
	if l.StoplistPath != "" {
		stoplist, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Tokenizer = ingest.NewTokenizer(stoplist.Terms)
	} else {
		comp.Tokenizer = ingest.NewDefaultTokenizer()
	}
	for _, w := range l.ExtraStopwords {
		comp.Tokenizer.AddStopword(w)
	}
	for _, w := range l.KeepWords {
		comp.Tokenizer.RemoveStopword(w)
	}

	// Load taxonomy
	if l.TaxonomyPath != "" {
		taxConfig, err := LoadTaxonomy(l.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		comp.Taxonomy = taxConfig.Build()
	} else {
		comp.Taxonomy = ingest.DefaultTaxonomy()
	}

	// Load lexicon
	if l.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = lexicon.Default()
	}

	return comp, nil
}
