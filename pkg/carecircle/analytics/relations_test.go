package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
)

func TestRelationshipType(t *testing.T) {
	rel, ok := RelationshipType("disease", "symptom")
	assert.True(t, ok)
	assert.Equal(t, "has_symptom", rel)

	rel, ok = RelationshipType("symptom", "disease")
	assert.True(t, ok)
	assert.Equal(t, "has_symptom", rel)

	rel, ok = RelationshipType("medication", "disease")
	assert.True(t, ok)
	assert.Equal(t, "treats", rel)

	_, ok = RelationshipType("symptom", "symptom")
	assert.False(t, ok)
}

func TestInferRelationshipsDistance(t *testing.T) {
	disease := ingest.Entity{Text: "cúm", Type: "disease", Start: 0, End: 3}
	near := ingest.Entity{Text: "sốt", Type: "symptom", Start: 50, End: 53}
	far := ingest.Entity{Text: "ho", Type: "symptom", Start: 103, End: 105}

	rels := InferRelationships(disease, []ingest.Entity{disease, near, far})
	assert.Equal(t, []string{"has_symptom:sốt"}, rels)
}

func TestInferRelationshipsDedupAndCap(t *testing.T) {
	disease := ingest.Entity{Text: "cúm", Type: "disease", Start: 0, End: 3}
	all := []ingest.Entity{
		disease,
		{Text: "sốt", Type: "symptom", Start: 5, End: 8},
		{Text: "sốt", Type: "symptom", Start: 10, End: 13},
		{Text: "ho", Type: "symptom", Start: 15, End: 17},
		{Text: "mệt mỏi", Type: "symptom", Start: 20, End: 27},
		{Text: "đau đầu", Type: "symptom", Start: 30, End: 37},
	}

	rels := InferRelationships(disease, all)
	assert.Equal(t, []string{"has_symptom:sốt", "has_symptom:ho", "has_symptom:mệt mỏi"}, rels)
}

func TestInferRelationshipsNone(t *testing.T) {
	e := ingest.Entity{Text: "sốt", Type: "symptom", Start: 0, End: 3}
	assert.Nil(t, InferRelationships(e, []ingest.Entity{e}))
}
