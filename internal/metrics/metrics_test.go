package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canhta/CareCircle/pkg/carecircle"
	"github.com/canhta/CareCircle/pkg/carecircle/chunk"
)

func TestObserverCounts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ItemProcessed(carecircle.ProcessedItem{
		QualityScore: 0.72,
		Chunks: []chunk.Chunk{
			{ChunkType: chunk.TypeSemantic},
			{ChunkType: chunk.TypeSemantic},
			{ChunkType: chunk.TypeFixed},
		},
	}, 3*time.Millisecond)
	m.ItemRejected("quality", time.Millisecond)
	m.ItemRejected("quality", time.Millisecond)
	m.ItemRejected("duplicate", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemsRejected.WithLabelValues("quality")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsRejected.WithLabelValues("duplicate")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChunksGenerated.WithLabelValues(chunk.TypeSemantic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChunksGenerated.WithLabelValues(chunk.TypeFixed)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ItemDuration))
}

func TestBatchCompleted(t *testing.T) {
	m := New(nil)

	m.BatchCompleted(carecircle.Stats{
		SuccessRate:                0.25,
		UniqueContentFingerprints:  4,
		UniqueSemanticFingerprints: 3,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesCompleted))
	assert.Equal(t, 0.25, testutil.ToFloat64(m.SuccessRate))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Fingerprints.WithLabelValues("content")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Fingerprints.WithLabelValues("semantic")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ItemRejected("relevance", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `carecircle_items_rejected_total{reason="relevance"} 1`))
}
