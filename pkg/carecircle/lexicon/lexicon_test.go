package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLexiconNew(t *testing.T) {
	lex := New()
	if lex == nil {
		t.Fatal("New() returned nil")
	}

	stats := lex.Stats()
	if stats.SynonymGroups != 0 || stats.Abbreviations != 0 || stats.Units != 0 {
		t.Errorf("New lexicon should be empty, got %+v", stats)
	}
	if got := lex.Standardize("cao huyết áp"); got != "cao huyết áp" {
		t.Errorf("Empty lexicon changed text: %q", got)
	}
}

func TestLexiconNormalize(t *testing.T) {
	lex := Default()

	if got := lex.Normalize("Cao Huyết Áp"); got != "tăng huyết áp" {
		t.Errorf("Normalize('Cao Huyết Áp') = %q, want 'tăng huyết áp'", got)
	}
	if got := lex.Normalize("sốt"); got != "sốt" {
		t.Errorf("Normalize('sốt') = %q, want 'sốt'", got)
	}
	if got := lex.Normalize("tai biến"); got != "đột quỵ" {
		t.Errorf("Normalize('tai biến') = %q, want 'đột quỵ'", got)
	}

	variants := lex.Variants("trầm cảm")
	if len(variants) != 2 || variants[0] != "rối loạn trầm cảm" {
		t.Errorf("Variants('trầm cảm') = %v", variants)
	}
}

func TestStandardizeSynonyms(t *testing.T) {
	lex := Default()

	got := lex.Standardize("Bệnh nhân bị cao huyết áp và Tai biến nhẹ.")
	want := "Bệnh nhân bị tăng huyết áp và đột quỵ nhẹ."
	if got != want {
		t.Errorf("Standardize() = %q, want %q", got, want)
	}
}

func TestStandardizeSkipsCanonicalOccurrences(t *testing.T) {
	lex := Default()

	got := lex.Standardize("rối loạn trầm cảm khác với trầm cảm thoáng qua")
	want := "rối loạn trầm cảm khác với rối loạn trầm cảm thoáng qua"
	if got != want {
		t.Errorf("Standardize() = %q, want %q", got, want)
	}
}

func TestStandardizeAbbreviations(t *testing.T) {
	lex := Default()

	got := lex.Standardize("Đo HA mỗi sáng, ghi lại ha buổi tối.")
	want := "Đo HA (huyết áp) mỗi sáng, ghi lại HA (huyết áp) buổi tối."
	if got != want {
		t.Errorf("Standardize() = %q, want %q", got, want)
	}

	// already annotated text is left alone
	if again := lex.Standardize(got); again != got {
		t.Errorf("Second Standardize() = %q, want %q", again, got)
	}
}

func TestStandardizeUnits(t *testing.T) {
	lex := Default()

	got := lex.Standardize("Huyết áp 140 mmHg, nhiệt độ 39°C.")
	want := "Huyết áp 140 mmHg (milimét thủy ngân), nhiệt độ 39°C (độ Celsius)."
	if got != want {
		t.Errorf("Standardize() = %q, want %q", got, want)
	}

	// units are case-sensitive
	if got := lex.Standardize("140 MMHG"); got != "140 MMHG" {
		t.Errorf("Upper-case unit should not be annotated, got %q", got)
	}
}

func TestStandardizeUnicodeWordBoundary(t *testing.T) {
	lex := Default()

	tests := []string{
		"thai nhi phát triển",  // "ha" inside "thai"
		"phần ung thưởng lớn",  // "ung thư" followed by a Vietnamese letter
		"ERROR trong hệ thống", // "er" inside "error"
	}
	for _, input := range tests {
		if got := lex.Standardize(input); got != input {
			t.Errorf("Standardize(%q) = %q, want unchanged", input, got)
		}
	}
}

func TestStandardizeIdempotent(t *testing.T) {
	lex := Default()

	inputs := []string{
		"Bệnh nhân ĐTĐ có HA cao, đường huyết 180 mg/dl. Chụp CT và MRI tại ICU.",
		"Suy thận và viêm gan thường gặp ở người cao huyết áp, cân nặng 70 kg.",
		"Trầm cảm, rối loạn trầm cảm và đau tim.",
	}
	for _, input := range inputs {
		once := lex.Standardize(input)
		twice := lex.Standardize(once)
		if once != twice {
			t.Errorf("Standardize not idempotent for %q:\n once: %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestLexiconStats(t *testing.T) {
	stats := Default().Stats()

	if stats.SynonymGroups != 10 {
		t.Errorf("SynonymGroups = %d, want 10", stats.SynonymGroups)
	}
	if stats.TotalVariants != 20 {
		t.Errorf("TotalVariants = %d, want 20", stats.TotalVariants)
	}
	if stats.Abbreviations != 16 {
		t.Errorf("Abbreviations = %d, want 16", stats.Abbreviations)
	}
	if stats.Units != 8 {
		t.Errorf("Units = %d, want 8", stats.Units)
	}
}

func TestLexiconLoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lexicon.yaml")

	yamlContent := `synonyms:
  - canonical: tăng huyết áp
    variants: [cao huyết áp, huyết áp cao]
abbreviations:
  - term: HA
    description: huyết áp
units:
  - term: mmHg
    description: milimét thủy ngân
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write test YAML: %v", err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML() failed: %v", err)
	}

	if got := lex.Normalize("huyết áp cao"); got != "tăng huyết áp" {
		t.Errorf("Normalize('huyết áp cao') = %q, want 'tăng huyết áp'", got)
	}

	got := lex.Standardize("HA 150 mmHg")
	want := "HA (huyết áp) 150 mmHg (milimét thủy ngân)"
	if got != want {
		t.Errorf("Standardize() = %q, want %q", got, want)
	}
}

func TestLexiconLoadFromYAMLMissingFile(t *testing.T) {
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromYAML() should fail for a missing file")
	}
}
