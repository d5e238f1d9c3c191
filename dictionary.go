package corpex

import "sync"

// ═══════════════════════════════════════════════════════════════════════════════
// DICTIONARY
// ═══════════════════════════════════════════════════════════════════════════════
// The Dictionary is the root structure every other index derives from: for
// each term it tracks how many times it occurred across the corpus (its
// frequency) and the set of documents it occurred in. Everything downstream
// — the compressed dictionary, the incidence matrix, the inverted index,
// the bigram/positional/wildcard indices — is built from, or alongside, a
// finalized Dictionary.
// ═══════════════════════════════════════════════════════════════════════════════

// TermEntry holds the aggregate statistics for one term.
//
// Invariant: Frequency >= len(Documents), since a term can occur more than
// once in a document it's already counted.
type TermEntry struct {
	Frequency int
	Documents map[string]struct{}
}

// newTermEntry returns an empty TermEntry ready for accumulation.
func newTermEntry() *TermEntry {
	return &TermEntry{Documents: make(map[string]struct{})}
}

// DocumentIDs returns the entry's document set as a sorted slice.
func (e *TermEntry) DocumentIDs() []string {
	ids := make([]string, 0, len(e.Documents))
	for id := range e.Documents {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}

// Dictionary maps terms to their TermEntry and tracks collection-wide
// aggregates.
type Dictionary struct {
	mu sync.Mutex

	Terms map[string]*TermEntry

	TotalWords          int64
	TotalDocuments      int
	CollectionSizeBytes int64

	seenDocs map[string]struct{}
}

// NewDictionary returns an empty Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		Terms:    make(map[string]*TermEntry),
		seenDocs: make(map[string]struct{}),
	}
}

// AddTerm records one occurrence of term in document. Safe for concurrent
// use: callers building a Dictionary from multiple tokenizer workers should
// route through AddTerm directly, or accumulate per-worker and Merge at the
// end (see engine.go for the chunked-aggregation policy).
func (d *Dictionary) AddTerm(term, document string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addTermLocked(term, document)
}

func (d *Dictionary) addTermLocked(term, document string) {
	entry, ok := d.Terms[term]
	if !ok {
		entry = newTermEntry()
		d.Terms[term] = entry
	}
	entry.Frequency++
	entry.Documents[document] = struct{}{}
	d.TotalWords++

	if _, seen := d.seenDocs[document]; !seen {
		d.seenDocs[document] = struct{}{}
		d.TotalDocuments++
	}
}

// AddDocument feeds every token of one document into the dictionary,
// tracking its byte size for CollectionSizeBytes, and ensures the document
// is counted in TotalDocuments even if it contributes no terms (e.g. its
// text tokenizes to nothing).
func (d *Dictionary) AddDocument(docID string, tokens []string, sizeBytes int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, tok := range tokens {
		d.addTermLocked(tok, docID)
	}
	d.CollectionSizeBytes += sizeBytes

	if _, seen := d.seenDocs[docID]; !seen {
		d.seenDocs[docID] = struct{}{}
		d.TotalDocuments++
	}
}

// Merge unions another Dictionary into d: frequencies add and document sets
// union. TotalDocuments counts only documents d has not already seen, so
// merging the same document twice from overlapping shards does not
// double-count it; TotalWords and CollectionSizeBytes are summed.
func (d *Dictionary) Merge(other *Dictionary) {
	d.mu.Lock()
	defer d.mu.Unlock()

	other.mu.Lock()
	defer other.mu.Unlock()

	for term, entry := range other.Terms {
		dst, ok := d.Terms[term]
		if !ok {
			dst = newTermEntry()
			d.Terms[term] = dst
		}
		dst.Frequency += entry.Frequency
		for docID := range entry.Documents {
			dst.Documents[docID] = struct{}{}
		}
	}

	for docID := range other.seenDocs {
		if _, seen := d.seenDocs[docID]; !seen {
			d.seenDocs[docID] = struct{}{}
			d.TotalDocuments++
		}
	}
	d.TotalWords += other.TotalWords
	d.CollectionSizeBytes += other.CollectionSizeBytes
}

// Size returns the number of distinct terms.
func (d *Dictionary) Size() int {
	return len(d.Terms)
}

// SortedTerms returns every term in lexicographic order.
func (d *Dictionary) SortedTerms() []string {
	terms := make([]string, 0, len(d.Terms))
	for t := range d.Terms {
		terms = append(terms, t)
	}
	sortStrings(terms)
	return terms
}

// Documents returns every distinct document id seen, in lexicographic
// order. This is the document universe the Incidence Matrix and the
// Boolean evaluator's NOT operator complement against.
func (d *Dictionary) Documents() []string {
	docs := make([]string, 0, len(d.seenDocs))
	for id := range d.seenDocs {
		docs = append(docs, id)
	}
	sortStrings(docs)
	return docs
}
