package analytics

import "github.com/canhta/CareCircle/pkg/carecircle/ingest"

// Proximity limits for relationship inference.
const (
	// RelationDistance is the maximum rune gap between two related entities.
	RelationDistance = 100

	// MaxRelationships caps the relationships attached to one entity.
	MaxRelationships = 3
)

type typePair struct {
	from, to string
}

// relationshipTypes maps an ordered entity type pair to a relation label.
// Lookups try both orders.
var relationshipTypes = map[typePair]string{
	{"disease", "symptom"}:    "has_symptom",
	{"disease", "medication"}: "treated_with",
	{"symptom", "medication"}: "relieved_by",
	{"procedure", "disease"}:  "diagnoses",
	{"medication", "disease"}: "treats",
}

// RelationshipType returns the relation label between two entity types.
func RelationshipType(a, b string) (string, bool) {
	if rel, ok := relationshipTypes[typePair{a, b}]; ok {
		return rel, true
	}
	rel, ok := relationshipTypes[typePair{b, a}]
	return rel, ok
}

// InferRelationships links entity to the other entities within
// RelationDistance runes whose type pair has a known relation. Results look
// like "has_symptom:sốt", are unique, keep document order and are capped at
// MaxRelationships.
func InferRelationships(entity ingest.Entity, all []ingest.Entity) []string {
	var relationships []string
	seen := make(map[string]struct{})

	for _, other := range all {
		if other.Text == entity.Text && other.Start == entity.Start && other.End == entity.End {
			continue
		}

		distance := min(abs(entity.Start-other.End), abs(other.Start-entity.End))
		if distance >= RelationDistance {
			continue
		}

		rel, ok := RelationshipType(entity.Type, other.Type)
		if !ok {
			continue
		}

		label := rel + ":" + other.Text
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}

		relationships = append(relationships, label)
		if len(relationships) == MaxRelationships {
			break
		}
	}

	return relationships
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
