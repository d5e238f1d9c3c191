package corpex

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BIGRAM INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// For every consecutive pair of tokens in a document, key "w1 w2" maps to
// the set of documents containing that adjacent pair. A phrase of k words
// is approximated by intersecting the bitmaps for its k-1 consecutive
// bigrams; for k=2 this is exact, but for k>=3 it can false-positive
// (adjacency is only checked pairwise, not transitively) — the positional
// index resolves those candidates exactly.
// ═══════════════════════════════════════════════════════════════════════════════

// BigramIndex maps "w1 w2" keys to roaring bitmaps of document ids.
type BigramIndex struct {
	bitmaps map[string]*roaring.Bitmap
	corpus  *Corpus
}

// NewBigramIndex builds a BigramIndex by re-tokenizing every document via
// tokenize and recording each sliding-window adjacent pair.
func NewBigramIndex(docs []Document, corpus *Corpus, tokenize func(string) []string) *BigramIndex {
	idx := &BigramIndex{
		bitmaps: make(map[string]*roaring.Bitmap),
		corpus:  corpus,
	}

	for _, doc := range docs {
		id, ok := corpus.ID(doc.ID)
		if !ok {
			continue
		}
		tokens := tokenize(doc.Text)
		for i := 0; i+1 < len(tokens); i++ {
			key := tokens[i] + " " + tokens[i+1]
			bm, ok := idx.bitmaps[key]
			if !ok {
				bm = roaring.NewBitmap()
				idx.bitmaps[key] = bm
			}
			bm.Add(id)
		}
	}

	slog.Info("bigram index built", slog.Int("bigrams", len(idx.bitmaps)))
	return idx
}

// Lookup returns the bitmap of documents containing the adjacent pair
// "w1 w2".
func (b *BigramIndex) Lookup(w1, w2 string) (*roaring.Bitmap, error) {
	key := w1 + " " + w2
	bm, ok := b.bitmaps[key]
	if !ok {
		return roaring.NewBitmap(), nil // absent bigram: empty candidate set, not an error
	}
	return bm, nil
}

// CandidatePhraseDocuments intersects the bitmaps of every consecutive
// bigram in terms, returning candidate documents that may contain the
// phrase. Callers with k>=3 must verify candidates against the positional
// index before treating them as confirmed hits.
func (b *BigramIndex) CandidatePhraseDocuments(terms []string) (*roaring.Bitmap, error) {
	if len(terms) < 2 {
		return nil, &QuerySyntaxError{Reason: "phrase must have at least two words"}
	}

	result, err := b.Lookup(terms[0], terms[1])
	if err != nil {
		return nil, err
	}
	result = result.Clone()

	for i := 1; i+1 < len(terms); i++ {
		next, err := b.Lookup(terms[i], terms[i+1])
		if err != nil {
			return nil, err
		}
		result = roaring.And(result, next)
	}

	return result, nil
}
