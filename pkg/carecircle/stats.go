package carecircle

// Stats is a snapshot of a Processor's counters.
type Stats struct {
	TotalItems                 int            `json:"total_items"`
	ProcessedItems             int            `json:"processed_items"`
	RejectedItems              int            `json:"rejected_items"`
	DuplicateItems             int            `json:"duplicate_items"`
	GeneratedChunks            int            `json:"generated_chunks"`
	RejectedByReason           map[string]int `json:"rejected_by_reason"`
	SuccessRate                float64        `json:"success_rate"`
	AverageChunksPerItem       float64        `json:"average_chunks_per_item"`
	UniqueContentFingerprints  int            `json:"unique_content_fingerprints"`
	UniqueSemanticFingerprints int            `json:"unique_semantic_fingerprints"`
}

type counters struct {
	processed  int
	rejected   int
	duplicates int
	chunks     int
	byReason   map[string]int
}

func newCounters() counters {
	return counters{byReason: make(map[string]int)}
}

// Stats returns the counters accumulated since creation or the last Reset.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	c := p.counters
	byReason := make(map[string]int, len(c.byReason))
	for k, v := range c.byReason {
		byReason[k] = v
	}
	p.mu.Unlock()

	exact, semantic := p.dedup.Len()
	total := c.processed + c.rejected + c.duplicates

	return Stats{
		TotalItems:                 total,
		ProcessedItems:             c.processed,
		RejectedItems:              c.rejected,
		DuplicateItems:             c.duplicates,
		GeneratedChunks:            c.chunks,
		RejectedByReason:           byReason,
		SuccessRate:                float64(c.processed) / float64(max(1, total)),
		AverageChunksPerItem:       float64(c.chunks) / float64(max(1, c.processed)),
		UniqueContentFingerprints:  exact,
		UniqueSemanticFingerprints: semantic,
	}
}

// Reset clears the counters and both fingerprint sets.
func (p *Processor) Reset() {
	p.mu.Lock()
	p.counters = newCounters()
	p.mu.Unlock()

	p.dedup.Reset()
}
