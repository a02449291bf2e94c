package chunk

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
)

type fixedRelevance float64

func (f fixedRelevance) Relevance(string) float64 { return float64(f) }

func newChunker(t *testing.T, cfg Config) *Chunker {
	t.Helper()
	c, err := New(cfg, fixedRelevance(0.5))
	require.NoError(t, err)
	return c
}

// sentences returns n sentences of 49 runes each.
func sentences(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Câu số %d nói về bệnh tiểu đường và cách theo dõi.", i)
	}
	return out
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Sốt cao kéo dài. Đau đầu dữ dội! Ok. Có nên đi khám không?")
	assert.Equal(t, []string{"Sốt cao kéo dài.", "Đau đầu dữ dội!", "Có nên đi khám không?"}, got)

	got = SplitSentences("Liều 2.5 mg mỗi ngày cho người lớn. Uống sau khi ăn no")
	assert.Equal(t, []string{"Liều 2.5 mg mỗi ngày cho người lớn.", "Uống sau khi ăn no"}, got)

	assert.Empty(t, SplitSentences(""))
}

func TestSplitSentencesLengthExcludesPunctuation(t *testing.T) {
	// "Ho sốt lâu" is exactly ten runes without its period
	got := SplitSentences("Ho sốt lâu.  Đây là một câu dài đủ để giữ lại.")
	assert.Equal(t, []string{"Đây là một câu dài đủ để giữ lại."}, got)

	got = SplitSentences("Ho sốt lâu!!! Ho sốt lâu ngày.")
	assert.Equal(t, []string{"Ho sốt lâu ngày."}, got)
}

func TestCompleteChunkForShortContent(t *testing.T) {
	c := newChunker(t, DefaultConfig())
	content := "Bệnh tiểu đường cần được theo dõi thường xuyên. Hãy đi khám định kỳ mỗi ba tháng."

	chunks := c.Chunk(content, nil)
	require.Len(t, chunks, 1)

	ch := chunks[0]
	assert.Equal(t, TypeComplete, ch.ChunkType)
	assert.Equal(t, 0, ch.ChunkID)
	assert.Equal(t, 0, ch.StartPosition)
	assert.Equal(t, utf8.RuneCountInString(content), ch.EndPosition)
	assert.Equal(t, 2, ch.SentenceCount)
	assert.Equal(t, content, ch.Content)
}

func TestSemanticChunksRespectSentences(t *testing.T) {
	c := newChunker(t, Config{MaxChunkSize: 100, OverlapSize: 20, MinChunkSize: 0, Semantic: true})
	ss := sentences(8)
	content := strings.Join(ss, " ")

	chunks := c.Chunk(content, nil)
	require.Len(t, chunks, 7)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkID)
		assert.Equal(t, TypeSemantic, ch.ChunkType)
		assert.Equal(t, ss[i]+" "+ss[i+1], ch.Content)
		assert.Equal(t, i*50, ch.StartPosition)
		assert.Equal(t, ch.StartPosition+ch.CharacterCount, ch.EndPosition)
		assert.Equal(t, 2, ch.SentenceCount)
	}
}

func TestSemanticChunksCoverContent(t *testing.T) {
	c := newChunker(t, Config{MaxChunkSize: 160, OverlapSize: 60, MinChunkSize: 0, Semantic: true})
	ss := sentences(12)
	content := strings.Join(ss, "\n")

	chunks := c.Chunk(content, nil)
	require.NotEmpty(t, chunks)

	var joined strings.Builder
	for _, ch := range chunks {
		joined.WriteString(ch.Content)
		joined.WriteString(" ")
	}
	for _, s := range ss {
		assert.Contains(t, joined.String(), s)
	}
}

func TestUndersizedChunksAreDropped(t *testing.T) {
	ss := sentences(8)
	content := strings.Join(ss, " ")

	kept := newChunker(t, Config{MaxChunkSize: 100, OverlapSize: 20, MinChunkSize: 99, Semantic: true}).Chunk(content, nil)
	assert.Len(t, kept, 7)

	dropped := newChunker(t, Config{MaxChunkSize: 100, OverlapSize: 20, MinChunkSize: 100, Semantic: true}).Chunk(content, nil)
	assert.Empty(t, dropped)
}

func TestFixedChunks(t *testing.T) {
	c := newChunker(t, Config{MaxChunkSize: 4, OverlapSize: 1, Semantic: false})

	chunks := c.Chunk("một hai ba bốn năm sáu bảy", nil)
	require.Len(t, chunks, 3)

	assert.Equal(t, "một hai ba bốn", chunks[0].Content)
	assert.Equal(t, TypeFixed, chunks[0].ChunkType)
	assert.Equal(t, 0, chunks[0].StartPosition)
	assert.Equal(t, 14, chunks[0].EndPosition)

	assert.Equal(t, "bốn năm sáu bảy", chunks[1].Content)
	assert.Equal(t, 1, chunks[1].ChunkID)
	assert.Equal(t, 11, chunks[1].StartPosition)
	assert.Equal(t, 26, chunks[1].EndPosition)
	assert.Equal(t, 4, chunks[1].WordCount)

	// the trailing window is kept even though it is short
	assert.Equal(t, "bảy", chunks[2].Content)
	assert.Equal(t, 2, chunks[2].ChunkID)
	assert.Equal(t, 23, chunks[2].StartPosition)
	assert.Equal(t, 26, chunks[2].EndPosition)
	assert.Equal(t, 1, chunks[2].WordCount)
}

func TestEntitiesIn(t *testing.T) {
	entities := []ingest.Entity{
		{Text: "tiểu đường", Type: "disease", Confidence: 0.8, StandardizedText: "tiểu đường"},
		{Text: "sốt", Type: "symptom", Confidence: 0.7},
		{Text: "tiểu đường", Type: "disease", Start: 40, End: 50},
	}

	got := EntitiesIn("Bệnh Tiểu Đường cần theo dõi", entities)
	require.Len(t, got, 1)
	assert.Equal(t, "tiểu đường", got[0].Text)
	assert.Equal(t, "disease", got[0].Type)

	got = EntitiesIn("Sốt nhẹ", entities)
	require.Len(t, got, 1)
	assert.Equal(t, "sốt", got[0].StandardizedText)
}

func TestQuality(t *testing.T) {
	assert.InDelta(t, 0.9, Quality("Sốt cao.", 2, 1, 0.5), 1e-9)
	assert.InDelta(t, 0.5, Quality("không có gì", 3, 0, 0), 1e-9)
	assert.InDelta(t, 0.6, Quality("mười từ", 10, 0, 0.5), 1e-9)
	assert.InDelta(t, 1.0, Quality("Đủ.", 20, 10, 1), 1e-9)
}

func TestPointID(t *testing.T) {
	a := PointID("content_x", 0)
	assert.Equal(t, a, PointID("content_x", 0))
	assert.NotEqual(t, a, PointID("content_x", 1))
	assert.NotEqual(t, a, PointID("content_y", 0))

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{MaxChunkSize: 0},
		{MaxChunkSize: 100, OverlapSize: 100},
		{MaxChunkSize: 100, OverlapSize: -1},
		{MaxChunkSize: 100, MinChunkSize: 101},
	}
	for _, cfg := range bad {
		err := cfg.Validate()
		assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig), "config %+v", cfg)
	}

	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestEmptyContent(t *testing.T) {
	c := newChunker(t, DefaultConfig())
	assert.Nil(t, c.Chunk("   ", nil))
}
