package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
)

// KeywordGroup is a named keyword list as written in taxonomy.yaml.
type KeywordGroup struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy is the on-disk form of the healthcare taxonomy. Lists keep their
// file order, which decides classification ties.
type Taxonomy struct {
	Terms             []KeywordGroup `yaml:"terms"`
	Specialties       []KeywordGroup `yaml:"specialties"`
	ContentTypes      []KeywordGroup `yaml:"content_types"`
	URLTypes          []KeywordGroup `yaml:"url_types"`
	RelevanceKeywords []string       `yaml:"relevance_keywords"`
	ContextWords      []string       `yaml:"context_words"`
	Severity          struct {
		Emergency []string `yaml:"emergency"`
		Chronic   []string `yaml:"chronic"`
	} `yaml:"severity"`
}

// LoadTaxonomy loads taxonomy from a YAML file
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}

	return &tax, nil
}

// Build converts the file form into an ingest.Taxonomy.
func (t *Taxonomy) Build() *ingest.Taxonomy {
	tax := ingest.NewTaxonomy()
	for _, g := range t.Terms {
		tax.AddTerms(g.Name, g.Keywords)
	}
	for _, g := range t.Specialties {
		tax.AddSpecialty(g.Name, g.Keywords)
	}
	for _, g := range t.ContentTypes {
		tax.AddContentType(g.Name, g.Keywords)
	}
	for _, g := range t.URLTypes {
		tax.AddURLType(g.Name, g.Keywords)
	}
	tax.SetRelevanceKeywords(t.RelevanceKeywords)
	tax.SetContextWords(t.ContextWords)
	tax.SetSeverityKeywords(t.Severity.Emergency, t.Severity.Chronic)
	return tax
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist %s: %w", path, err)
	}

	return &sl, nil
}
