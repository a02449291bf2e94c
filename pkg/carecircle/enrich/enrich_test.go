package enrich

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canhta/CareCircle/pkg/carecircle/analytics"
	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
)

var fixedNow = time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

func newEnricher() *Enricher {
	return New(ingest.NewDefaultTokenizer(), func() time.Time { return fixedNow })
}

func sampleAnalysis() analytics.Analysis {
	return analytics.Analysis{
		Entities: []ingest.Entity{
			{Text: "tiểu đường", Type: "disease", StandardizedText: "tiểu đường"},
			{Text: "metformin", Type: "medication", StandardizedText: "metformin"},
			{Text: "sốt", Type: "symptom", StandardizedText: "sốt"},
			{Text: "ho", Type: "symptom", StandardizedText: "ho"},
			{Text: "covid-19", Type: "disease", StandardizedText: "covid-19"},
			{Text: "insulin", Type: "medication", StandardizedText: "insulin"},
		},
		KeyPhrases:  []string{"Bệnh nhân tiểu đường nên dùng metformin theo chỉ định"},
		WordCount:   250,
		Relevance:   0.8,
		Specialty:   "endocrinology",
		ContentType: "guide",
		Temporal:    analytics.Temporal{TreatmentDuration: "3 tháng"},
		Severity:    analytics.Severity{Level: analytics.SeverityMedium},
	}
}

func TestEnrich(t *testing.T) {
	e := newEnricher()
	src := Source{SourceURL: "https://www.vinmec.com/vi/tin-tuc/tieu-duong", SourceType: "hospital"}

	md := e.Enrich(src, sampleAnalysis(), 0.72)

	assert.Equal(t, ProcessingVersion, md.ProcessingVersion)
	assert.Equal(t, fixedNow, md.ProcessedAt)
	assert.Equal(t, 0.72, md.QualityScore)
	assert.Equal(t, "endocrinology", md.MedicalSpecialty)
	assert.Equal(t, "guide", md.ContentType)
	assert.Equal(t, 6, md.EntityCount)
	assert.Equal(t, []string{"disease", "medication", "symptom"}, md.EntityTypes)
	assert.Equal(t, []string{"tiểu đường", "metformin", "sốt", "ho", "covid-19"}, md.KeyEntities)
	assert.Equal(t, 250, md.WordCount)
	assert.True(t, md.HasTemporalInfo)
	assert.Equal(t, "medium", md.SeverityLevel)
	assert.InDelta(t, 0.95, md.SourceAuthority, 1e-9)
}

func TestSourceAuthority(t *testing.T) {
	tests := []struct {
		sourceType string
		url        string
		expected   float64
	}{
		{"government", "https://moh.gov.vn/tin", 1.0},
		{"hospital", "https://benhvien.example/a", 0.90},
		{"medical_institution", "https://viện.example", 0.85},
		{"university", "https://bachmai.edu.vn/x", 0.85},
		{"news", "https://vnexpress.net/suc-khoe", 0.60},
		{"blog", "https://CHORAY.VN/blog", 0.45},
		{"unknown", "https://example.com", 0.30},
		{"forum", "https://example.com", 0.30},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, SourceAuthority(tt.sourceType, tt.url), 1e-9, "%s %s", tt.sourceType, tt.url)
	}
}

func TestSearchKeywords(t *testing.T) {
	e := newEnricher()

	keywords := e.SearchKeywords(sampleAnalysis())

	assert.Contains(t, keywords, "metformin")
	assert.Contains(t, keywords, "insulin")
	assert.Contains(t, keywords, "endocrinology")
	assert.Contains(t, keywords, "bệnh")
	assert.Contains(t, keywords, "định")
	assert.Contains(t, keywords, "sốt")

	// multi-word, too short, not alphabetic, or short key-phrase words
	assert.NotContains(t, keywords, "tiểu đường")
	assert.NotContains(t, keywords, "ho")
	assert.NotContains(t, keywords, "covid-19")
	assert.NotContains(t, keywords, "nên")
	assert.NotContains(t, keywords, "theo")

	assert.IsNonDecreasing(t, keywords)
}

func TestSearchKeywordsCapped(t *testing.T) {
	e := newEnricher()

	var an analytics.Analysis
	for _, w := range []string{
		"amlodipine", "aspirin", "atorvastatin", "ibuprofen", "insulin", "losartan",
		"metformin", "omeprazole", "paracetamol", "vitamin", "amoxicillin", "cúm",
		"lao", "gan", "thận", "phổi", "ruột", "mắt", "dengue", "rubella", "tetanus", "sốt rét",
	} {
		an.Entities = append(an.Entities, ingest.Entity{Text: w, Type: "disease", StandardizedText: w})
	}

	keywords := e.SearchKeywords(an)
	assert.Len(t, keywords, 20)
	assert.IsNonDecreasing(t, keywords)
}

func TestSearchKeywordsSingleWordsOnly(t *testing.T) {
	e := newEnricher()

	an := analytics.Analysis{Entities: []ingest.Entity{
		{Text: "tiểu đường", Type: "disease", StandardizedText: "tiểu đường"},
		{Text: "gan", Type: "body_part", StandardizedText: "gan"},
	}}

	assert.Equal(t, []string{"gan"}, e.SearchKeywords(an))
}

func TestSemanticTags(t *testing.T) {
	an := sampleAnalysis()
	an.Temporal.AgeGroups = []string{"trẻ em 2-5 tuổi"}

	assert.Equal(t, []string{
		"specialty:endocrinology",
		"type:guide",
		"severity:medium",
		"entity:disease",
		"entity:medication",
		"entity:symptom",
		"has:treatment_duration",
		"has:age_groups",
	}, SemanticTags(an))

	general := analytics.Analysis{Specialty: "general", ContentType: "article", Severity: analytics.Severity{Level: "low"}}
	assert.Equal(t, []string{"type:article", "severity:low"}, SemanticTags(general))
}

var contentIDPattern = regexp.MustCompile(`^content_[0-9A-HJKMNP-TV-Z]{26}_[0-9a-f]{8}$`)

func TestContentID(t *testing.T) {
	e := newEnricher()

	a := e.ContentID("https://vinmec.com/a")
	b := e.ContentID("https://vinmec.com/a")

	require.Regexp(t, contentIDPattern, a)
	assert.NotEqual(t, a, b)
	// same URL hash suffix
	assert.Equal(t, a[len(a)-8:], b[len(b)-8:])
	// monotonic within the same millisecond
	assert.Less(t, a, b)

	c := e.ContentID("https://vinmec.com/b")
	assert.NotEqual(t, a[len(a)-8:], c[len(c)-8:])
}

func TestMetadataMap(t *testing.T) {
	md := newEnricher().Enrich(Source{SourceType: "news"}, sampleAnalysis(), 0.6)

	base := map[string]any{"source_type": "news", "author": "BS. An", "quality_score": 0.1}
	out := md.Map(base)

	assert.Equal(t, "BS. An", out["author"])
	assert.Equal(t, "news", out["source_type"])
	assert.Equal(t, 0.6, out["quality_score"])
	assert.Equal(t, ProcessingVersion, out["processing_version"])
	assert.Equal(t, "2024-03-01T08:30:00Z", out["processed_at"])
	assert.Equal(t, 0.1, base["quality_score"], "base must not be mutated")
}

func TestIsAlphabetic(t *testing.T) {
	assert.True(t, isAlphabetic("metformin"))
	assert.True(t, isAlphabetic("đường"))
	assert.False(t, isAlphabetic("tiểu đường"))
	assert.False(t, isAlphabetic("covid-19"))
	assert.False(t, isAlphabetic(" sốt"))
	assert.False(t, isAlphabetic("sốt "))
	assert.False(t, isAlphabetic(""))
}
