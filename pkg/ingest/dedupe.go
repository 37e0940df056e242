package ingest

import (
	"github.com/mkm-lab/analysis-engine/pkg/common"
	"github.com/mkm-lab/analysis-engine/pkg/store"
)

// Deduplicator rejects documents whose title or url is already claimed,
// either by the persisted corpus or by an earlier document in the same
// batch. Matching is exact and case sensitive; near-duplicate detection
// is out of scope.
type Deduplicator struct {
	keys store.Keys
}

// NewDeduplicator seeds the deduplicator with the existing corpus keys.
func NewDeduplicator(keys store.Keys) *Deduplicator {
	if keys.Titles == nil || keys.URLs == nil {
		keys = store.NewKeys()
	}
	return &Deduplicator{keys: keys}
}

// Filter splits a batch into unique and duplicate documents. Admitted
// documents claim their keys immediately, so a batch containing the
// same document twice admits only the first occurrence.
func (d *Deduplicator) Filter(batch []common.RawDocument) (unique, duplicates []common.RawDocument) {
	for _, doc := range batch {
		if d.keys.Has(doc.Title, doc.URL) {
			duplicates = append(duplicates, doc)
			continue
		}
		d.keys.Add(doc.Title, doc.URL)
		unique = append(unique, doc)
	}
	return unique, duplicates
}
