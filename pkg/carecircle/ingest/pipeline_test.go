package ingest

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/canhta/CareCircle/pkg/carecircle/lexicon"
)

func newTestPipeline(t *testing.T, minLength, maxLength int) *Pipeline {
	t.Helper()
	return NewPipeline(newTestNormalizer(t), lexicon.Default(), minLength, maxLength)
}

func TestPipelineProcess(t *testing.T) {
	p := newTestPipeline(t, 10, 0)

	got, err := p.Process("Bệnh nhân cao huyết áp cần đo HA mỗi ngày.")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	want := "Bệnh nhân tăng huyết áp cần đo HA (huyết áp) mỗi ngày."
	if got != want {
		t.Errorf("Process() = %q, want %q", got, want)
	}
}

func TestPipelineEmpty(t *testing.T) {
	p := newTestPipeline(t, 0, 0)

	for _, input := range []string{"", "   \n\t", "Quảng cáo: giảm giá"} {
		if _, err := p.Process(input); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Process(%q) error = %v, want ErrEmptyContent", input, err)
		}
	}
}

func TestPipelineTooShort(t *testing.T) {
	p := newTestPipeline(t, 100, 0)

	if _, err := p.Process("Sốt cao."); !errors.Is(err, ErrContentTooShort) {
		t.Errorf("Expected ErrContentTooShort, got %v", err)
	}
}

func TestPipelineTruncates(t *testing.T) {
	p := newTestPipeline(t, 10, 50)

	input := strings.Repeat("Sốt xuất huyết cần theo dõi sát. ", 10)
	got, err := p.Process(input)
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if n := utf8.RuneCountInString(got); n > 50 {
		t.Errorf("Expected at most 50 runes, got %d", n)
	}
	if !strings.HasPrefix(got, "Sốt xuất huyết") {
		t.Errorf("Truncation should keep the beginning, got %q", got)
	}
}

func TestPipelineWithoutStandardizer(t *testing.T) {
	p := NewPipeline(newTestNormalizer(t), nil, 0, 0)

	got, err := p.Process("Bệnh nhân cao huyết áp")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if got != "Bệnh nhân cao huyết áp" {
		t.Errorf("Process() without standardizer = %q", got)
	}
}

func TestPipelineIdempotent(t *testing.T) {
	p := newTestPipeline(t, 10, 0)

	inputs := []string{
		"Bệnh nhân ĐTĐ cao huyết áp 150 mmHg, uống 500 mg metformin.\n\n\n\nTheo dõi định kỳ.",
		"<p>Trầm cảm và đau tim</p><p>Bản quyền 2024 Bộ Y tế</p> Nhiệt độ 39 °C kéo dài 3 – 5 ngày.",
		"Đăng ký để nhận tin mới. Tai biến và suy thận ở người cao tuổi cần điều trị lâu dài.",
	}
	for _, input := range inputs {
		once, err := p.Process(input)
		if err != nil {
			t.Fatalf("Process(%q) failed: %v", input, err)
		}
		twice, err := p.Process(once)
		if err != nil {
			t.Fatalf("Second Process failed: %v", err)
		}
		if once != twice {
			t.Errorf("Process not idempotent:\n once: %q\ntwice: %q", once, twice)
		}
	}
}
