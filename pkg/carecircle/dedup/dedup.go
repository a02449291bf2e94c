// Package dedup detects repeated content within one processor lifetime.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Strategy names the fingerprint that matched.
type Strategy string

// Detection strategies, in check order.
const (
	StrategyNone     Strategy = ""
	StrategyExact    Strategy = "exact"
	StrategySemantic Strategy = "semantic"
)

// Detector keeps two fingerprint sets: exact content hashes and hashes of
// the entity set. Both are in memory only and live until Reset.
type Detector struct {
	mu       sync.Mutex
	exact    map[string]struct{}
	semantic map[string]struct{}
}

// NewDetector creates an empty detector.
func NewDetector() *Detector {
	return &Detector{
		exact:    make(map[string]struct{}),
		semantic: make(map[string]struct{}),
	}
}

// IsDuplicate checks content against the exact set, then its entity texts
// against the semantic set. Each fingerprint that is new gets registered, so
// a later item matching either one is a duplicate. An empty entity set has
// no semantic fingerprint.
func (d *Detector) IsDuplicate(content string, entityTexts []string) (Strategy, bool) {
	exact := ContentFingerprint(content)
	semantic, hasSemantic := SemanticFingerprint(entityTexts)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, seen := d.exact[exact]; seen {
		return StrategyExact, true
	}
	d.exact[exact] = struct{}{}

	// Items without entities would all share the fingerprint of the empty
	// set and collide with each other, so only the exact set records them.
	if !hasSemantic {
		return StrategyNone, false
	}
	if _, seen := d.semantic[semantic]; seen {
		return StrategySemantic, true
	}
	d.semantic[semantic] = struct{}{}

	return StrategyNone, false
}

// Len returns the sizes of the exact and semantic sets.
func (d *Detector) Len() (exact, semantic int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.exact), len(d.semantic)
}

// Reset forgets every fingerprint.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exact = make(map[string]struct{})
	d.semantic = make(map[string]struct{})
}

// ContentFingerprint is the SHA-256 of content lowercased with all
// whitespace removed.
func ContentFingerprint(content string) string {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, content)

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// SemanticFingerprint is the SHA-256 of the sorted, distinct entity texts
// joined by spaces. It reports false when there are no entity texts.
func SemanticFingerprint(entityTexts []string) (string, bool) {
	if len(entityTexts) == 0 {
		return "", false
	}

	distinct := make(map[string]struct{}, len(entityTexts))
	texts := make([]string, 0, len(entityTexts))
	for _, t := range entityTexts {
		if _, ok := distinct[t]; ok {
			continue
		}
		distinct[t] = struct{}{}
		texts = append(texts, t)
	}
	sort.Strings(texts)

	sum := sha256.Sum256([]byte(strings.Join(texts, " ")))
	return hex.EncodeToString(sum[:]), true
}
