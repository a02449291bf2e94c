package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
)

// Validation issues
const (
	IssueMissingTitle     = "Missing title"
	IssueTitleTooShort    = "Title too short"
	IssueTitleTooLong     = "Title too long"
	IssuePoorContent      = "Poor content quality"
	IssueLowRelevance     = "Low medical relevance"
	IssueInvalidStructure = "Invalid structure"

	maxReportIssues = 10
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// sourceQuality is the source-type table of the base quality factor.
var sourceQuality = map[string]float64{
	"government":          1.0,
	"hospital":            0.9,
	"medical_institution": 0.8,
	"university":          0.8,
	"news":                0.6,
	"blog":                0.4,
	"unknown":             0.3,
}

// domainIndicators are checked in order; the first match adds its bonus.
var domainIndicators = []struct {
	fragment string
	bonus    float64
}{
	{".gov.vn", 0.2},
	{".edu.vn", 0.15},
	{".org.vn", 0.1},
	{"moh.gov.vn", 0.2},
	{"benhvien", 0.1},
	{"hospital", 0.1},
}

// DefaultValidatorKeywords returns the broad healthcare vocabulary used to
// measure keyword density.
func DefaultValidatorKeywords() []string {
	return []string{
		"y tế", "sức khỏe", "bệnh", "thuốc", "điều trị", "chữa bệnh",
		"khám bệnh", "bác sĩ", "bệnh viện", "phòng khám", "chẩn đoán",
		"tim", "phổi", "gan", "thận", "dạ dày", "ruột", "não", "máu",
		"xương", "khớp", "da", "mắt", "tai", "mũi", "họng",
		"tiểu đường", "huyết áp", "ung thư", "viêm", "nhiễm trùng",
		"đau đầu", "sốt", "ho", "khó thở", "mệt mỏi",
		"xét nghiệm", "chụp x-quang", "siêu âm", "phẫu thuật", "tiêm",
		"vaccine", "liều lượng", "tác dụng phụ",
		"bảo hiểm y tế", "bộ y tế", "dịch vụ y tế", "cấp cứu",
		"điều dưỡng", "dược sĩ", "chuyên khoa",
	}
}

// ValidatorConfig configures a Validator.
type ValidatorConfig struct {
	MinContentLength int     // runes
	MaxContentLength int     // runes
	MinQuality       float64 // minimum base quality for a valid item
	MinRelevance     float64 // minimum keyword density for a medical item
	Keywords         []string
}

// DefaultValidatorConfig returns the built-in validation thresholds.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MinContentLength: 100,
		MaxContentLength: 1_000_000,
		MinQuality:       0.5,
		MinRelevance:     0.1,
		Keywords:         DefaultValidatorKeywords(),
	}
}

// Validator checks raw items for structure and base content quality.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator creates a validator.
func NewValidator(cfg ValidatorConfig) *Validator {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultValidatorKeywords()
	}
	return &Validator{cfg: cfg}
}

// ValidateStructure checks the required fields of item and its raw content
// length.
func (v *Validator) ValidateStructure(item ingest.RawItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	n := utf8.RuneCountInString(item.Content)
	if n < v.cfg.MinContentLength || (v.cfg.MaxContentLength > 0 && n > v.cfg.MaxContentLength) {
		return fmt.Errorf("%w: content length %d outside [%d, %d]",
			internalerr.ErrInvalidInput, n, v.cfg.MinContentLength, v.cfg.MaxContentLength)
	}
	return nil
}

// Assessment is the base quality verdict of one document.
type Assessment struct {
	Valid  bool     `json:"valid"`
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// Assess scores a document: title 0.2, content quality 0.4, keyword
// density 0.3, source quality 0.1.
func (v *Validator) Assess(doc Document) Assessment {
	var issues []string

	var titleScore float64
	switch n := utf8.RuneCountInString(doc.Title); {
	case n == 0:
		issues = append(issues, IssueMissingTitle)
	case n < 10:
		issues = append(issues, IssueTitleTooShort)
		titleScore = 0.3
	case n > 200:
		issues = append(issues, IssueTitleTooLong)
		titleScore = 0.7
	default:
		titleScore = 1.0
	}

	contentScore := ContentQuality(doc.Content)
	if contentScore < 0.3 {
		issues = append(issues, IssuePoorContent)
	}

	medical, density := v.MedicalRelevance(doc.Content)
	if !medical {
		issues = append(issues, IssueLowRelevance)
	}

	score := titleScore*0.2 + contentScore*0.4 + density*0.3 + SourceQuality(doc.SourceType, doc.SourceURL)*0.1

	return Assessment{
		Valid:  score >= v.cfg.MinQuality && len(issues) == 0,
		Score:  score,
		Issues: issues,
	}
}

// MedicalRelevance measures keyword occurrences per ten words, capped at 1,
// and reports whether it reaches the configured minimum.
func (v *Validator) MedicalRelevance(content string) (bool, float64) {
	if content == "" {
		return false, 0
	}

	words := len(strings.Fields(content))
	count := ingest.CountKeywords(strings.ToLower(content), v.cfg.Keywords)

	density := float64(count) / max(1, float64(words)/10)
	if density > 1 {
		density = 1
	}
	return density >= v.cfg.MinRelevance, density
}

// ContentQuality scores raw text on length, sentence length, vocabulary
// diversity and stray symbols.
func ContentQuality(content string) float64 {
	if content == "" {
		return 0
	}

	score := 0.5

	switch n := utf8.RuneCountInString(content); {
	case n >= 200 && n <= 5000:
		score += 0.2
	case n < 100:
		score -= 0.3
	}

	sentences := sentenceBoundary.Split(content, -1)
	totalWords := 0
	for _, s := range sentences {
		totalWords += len(strings.Fields(s))
	}
	if avg := float64(totalWords) / float64(len(sentences)); avg >= 10 && avg <= 30 {
		score += 0.1
	}

	words := strings.Fields(strings.ToLower(content))
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	if float64(len(unique))/float64(max(1, len(words))) > 0.5 {
		score += 0.1
	}

	if strings.IndexFunc(content, isStraySymbol) >= 0 {
		score -= 0.1
	}

	return clamp01(score)
}

func isStraySymbol(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsMark(r), unicode.IsSpace(r):
		return false
	case r == '_' || (r >= 0x00C0 && r <= 0x1EF9):
		return false
	}
	return !strings.ContainsRune(`.,!?;:()-"`, r)
}

// SourceQuality rates a source by type plus the first matching domain bonus.
func SourceQuality(sourceType, sourceURL string) float64 {
	score, ok := sourceQuality[sourceType]
	if !ok {
		score = sourceQuality["unknown"]
	}

	lower := strings.ToLower(sourceURL)
	for _, d := range domainIndicators {
		if strings.Contains(lower, d.fragment) {
			score += d.bonus
			break
		}
	}
	return min(1, score)
}

// Report summarizes the validation of a batch of raw items.
type Report struct {
	Total          int       `json:"total_items"`
	Valid          int       `json:"valid_items"`
	Invalid        int       `json:"invalid_items"`
	Issues         []string  `json:"issues"`
	QualityScores  []float64 `json:"quality_scores"`
	AverageQuality float64   `json:"average_quality"`
}

// SuccessRate is the share of valid items.
func (r Report) SuccessRate() float64 {
	return float64(r.Valid) / float64(max(1, r.Total))
}

// ValidateBatch checks structure and base quality of every item.
func (v *Validator) ValidateBatch(items []ingest.RawItem) Report {
	r := Report{Total: len(items)}

	for i, item := range items {
		if err := v.ValidateStructure(item); err != nil {
			r.Invalid++
			r.Issues = append(r.Issues, fmt.Sprintf("Item %d: %s", i, IssueInvalidStructure))
			continue
		}

		a := v.Assess(Document{
			Title:      item.Title,
			Content:    item.Content,
			SourceURL:  item.SourceURL,
			SourceType: item.SourceType(),
		})
		r.QualityScores = append(r.QualityScores, a.Score)

		if a.Valid {
			r.Valid++
			continue
		}
		r.Invalid++
		for _, issue := range a.Issues {
			r.Issues = append(r.Issues, fmt.Sprintf("Item %d: %s", i, issue))
		}
	}

	if len(r.QualityScores) > 0 {
		sum := 0.0
		for _, s := range r.QualityScores {
			sum += s
		}
		r.AverageQuality = sum / float64(len(r.QualityScores))
	}

	return r
}

// String renders the report as text, listing at most ten issues.
func (r Report) String() string {
	var b strings.Builder

	b.WriteString("Content Validation Report\n")
	b.WriteString("========================\n\n")
	fmt.Fprintf(&b, "Total Items: %d\n", r.Total)
	fmt.Fprintf(&b, "Valid Items: %d\n", r.Valid)
	fmt.Fprintf(&b, "Invalid Items: %d\n", r.Invalid)
	fmt.Fprintf(&b, "Success Rate: %.1f%%\n", r.SuccessRate()*100)
	fmt.Fprintf(&b, "Average Quality Score: %.2f\n\n", r.AverageQuality)
	b.WriteString("Issues Found:\n")

	if len(r.Issues) == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}

	for _, issue := range r.Issues[:min(len(r.Issues), maxReportIssues)] {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	if extra := len(r.Issues) - maxReportIssues; extra > 0 {
		fmt.Fprintf(&b, "... and %d more issues\n", extra)
	}

	return b.String()
}
