package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
)

// Profile selects a weighting scheme.
type Profile string

// Available profiles
const (
	ProfileSimple   Profile = "simple"
	ProfileAdvanced Profile = "advanced"
)

// Factor targets
const (
	optimalWords         = 200
	shortWords           = 50
	simpleEntityTarget   = 5
	advancedEntityTarget = 8
)

var (
	bulletLine   = regexp.MustCompile(`(?m)^\s*[-•]\s+`)
	numberedLine = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	headerLine   = regexp.MustCompile(`(?m)^\p{Lu}[^.!?\n]*:?[ \t]*$`)
)

var titleKeywords = []string{"bệnh", "thuốc", "điều trị", "y tế", "sức khỏe"}

// simpleAuthority is the source-type table of the simple profile.
var simpleAuthority = map[string]float64{
	"government":          1.0,
	"hospital":            0.9,
	"medical_institution": 0.8,
	"news":                0.6,
	"unknown":             0.3,
}

// Weights assigns a weight to each quality factor. A profile uses a subset
// of factors; unused ones stay zero. Weights must sum to 1.
type Weights struct {
	Length      float64 `yaml:"length" json:"length"`
	Relevance   float64 `yaml:"relevance" json:"relevance"`
	Entities    float64 `yaml:"entities" json:"entities"`
	Authority   float64 `yaml:"authority" json:"authority"`
	Title       float64 `yaml:"title" json:"title"`
	BaseQuality float64 `yaml:"base_quality" json:"base_quality"`
	Structure   float64 `yaml:"structure" json:"structure"`
	Specialty   float64 `yaml:"specialty" json:"specialty"`
}

// SimpleWeights returns the weights of the simple profile.
func SimpleWeights() Weights {
	return Weights{Length: 0.2, Relevance: 0.3, Entities: 0.2, Authority: 0.2, Title: 0.1}
}

// AdvancedWeights returns the weights of the advanced profile.
func AdvancedWeights() Weights {
	return Weights{BaseQuality: 0.3, Relevance: 0.25, Entities: 0.2, Structure: 0.15, Specialty: 0.1}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Length + w.Relevance + w.Entities + w.Authority + w.Title +
		w.BaseQuality + w.Structure + w.Specialty
}

// Validate checks that no weight is negative and that they sum to 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"length": w.Length, "relevance": w.Relevance, "entities": w.Entities,
		"authority": w.Authority, "title": w.Title, "base_quality": w.BaseQuality,
		"structure": w.Structure, "specialty": w.Specialty,
	} {
		if v < 0 {
			return fmt.Errorf("%w: weight %s is negative (%.2f)", internalerr.ErrInvalidConfig, name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%w: quality weights sum to %.3f, want 1.0", internalerr.ErrInvalidConfig, sum)
	}
	return nil
}

// Config configures a Scorer.
type Config struct {
	Profile          Profile
	Weights          Weights
	EntitySaturation int // entity count at which entity richness reaches 1
}

// DefaultConfig returns the configuration of a profile. Unknown profiles
// fall back to advanced.
func DefaultConfig(profile Profile) Config {
	if profile == ProfileSimple {
		return Config{Profile: ProfileSimple, Weights: SimpleWeights(), EntitySaturation: simpleEntityTarget}
	}
	return Config{Profile: ProfileAdvanced, Weights: AdvancedWeights(), EntitySaturation: advancedEntityTarget}
}

// Document is the item-level input shared by the scorer and the validator.
type Document struct {
	Title      string
	Content    string
	SourceURL  string
	SourceType string
}

// Candidate is an analyzed item waiting for admission.
type Candidate struct {
	Document
	WordCount   int
	Relevance   float64
	EntityCount int
	Specialty   string
}

// ScoreBreakdown holds every factor value (0-1) and the weighted total.
type ScoreBreakdown struct {
	Length      float64 `json:"length"`
	Relevance   float64 `json:"relevance"`
	Entities    float64 `json:"entities"`
	Authority   float64 `json:"authority"`
	Title       float64 `json:"title"`
	BaseQuality float64 `json:"base_quality"`
	Structure   float64 `json:"structure"`
	Specialty   float64 `json:"specialty"`
	Total       float64 `json:"total"`
}

// Scorer combines weighted quality factors into one admission score.
type Scorer struct {
	cfg       Config
	validator *Validator
}

// NewScorer creates a scorer. The validator provides the base quality
// factor; a nil validator uses DefaultValidatorConfig.
func NewScorer(cfg Config, validator *Validator) (*Scorer, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.EntitySaturation <= 0 {
		return nil, fmt.Errorf("%w: entity saturation must be positive", internalerr.ErrInvalidConfig)
	}
	if validator == nil {
		validator = NewValidator(DefaultValidatorConfig())
	}
	return &Scorer{cfg: cfg, validator: validator}, nil
}

// Config returns the scorer configuration.
func (s *Scorer) Config() Config { return s.cfg }

// Score returns the weighted quality score in [0,1].
func (s *Scorer) Score(c Candidate) float64 {
	return s.ScoreWithBreakdown(c).Total
}

// ScoreWithBreakdown returns the score together with every factor value.
// Factors with a zero weight are not computed.
func (s *Scorer) ScoreWithBreakdown(c Candidate) ScoreBreakdown {
	w := s.cfg.Weights
	b := ScoreBreakdown{
		Relevance: clamp01(c.Relevance),
		Entities:  EntityRichness(c.EntityCount, s.cfg.EntitySaturation),
	}

	if w.Length > 0 {
		b.Length = LengthScore(c.WordCount)
	}
	if w.Authority > 0 {
		b.Authority = SimpleAuthority(c.SourceType)
	}
	if w.Title > 0 {
		b.Title = TitleScore(c.Title)
	}
	if w.BaseQuality > 0 {
		b.BaseQuality = s.validator.Assess(c.Document).Score
	}
	if w.Structure > 0 {
		b.Structure = StructureScore(c.Content)
	}
	if w.Specialty > 0 {
		b.Specialty = SpecialtyScore(c.Specialty)
	}

	b.Total = clamp01(w.Length*b.Length +
		w.Relevance*b.Relevance +
		w.Entities*b.Entities +
		w.Authority*b.Authority +
		w.Title*b.Title +
		w.BaseQuality*b.BaseQuality +
		w.Structure*b.Structure +
		w.Specialty*b.Specialty)

	return b
}

// LengthScore rewards word counts up to ~200 words and penalizes very short
// content linearly.
func LengthScore(words int) float64 {
	if words > shortWords {
		return math.Min(1, float64(words)/optimalWords)
	}
	return float64(words) / shortWords
}

// EntityRichness grows linearly with the entity count and saturates at target.
func EntityRichness(count, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(1, float64(count)/float64(target))
}

// SimpleAuthority looks up the source type in the simple authority table.
func SimpleAuthority(sourceType string) float64 {
	if v, ok := simpleAuthority[sourceType]; ok {
		return v
	}
	return simpleAuthority["unknown"]
}

// TitleScore rewards titles of reasonable length that mention health terms.
func TitleScore(title string) float64 {
	if title == "" {
		return 0.5
	}

	score := 0.5
	if n := utf8.RuneCountInString(title); n > 10 && n < 200 {
		score = 0.8
	}
	lower := strings.ToLower(title)
	for _, kw := range titleKeywords {
		if strings.Contains(lower, kw) {
			score += 0.2
			break
		}
	}
	return math.Min(1, score)
}

// StructureScore rewards paragraphs, bullet or numbered lists and header lines.
func StructureScore(content string) float64 {
	score := 0.5

	if len(strings.Split(content, "\n\n")) > 2 {
		score += 0.2
	}
	if bulletLine.MatchString(content) {
		score += 0.1
	}
	if numberedLine.MatchString(content) {
		score += 0.1
	}
	if headerLine.MatchString(content) {
		score += 0.1
	}

	return math.Min(1, score)
}

// SpecialtyScore prefers content classified into a specific specialty.
func SpecialtyScore(specialty string) float64 {
	if specialty == "" || specialty == "general" {
		return 0.4
	}
	return 0.8
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
