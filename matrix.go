package corpex

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// INCIDENCE MATRIX
// ═══════════════════════════════════════════════════════════════════════════════
// Conceptually a dense term x document 0/1 matrix; in practice one roaring
// bitmap per term, each bit the presence of that term in a document. Boolean
// set algebra (AND/OR/NOT) over terms reduces to roaring's native
// And/Or/AndNot, which is where the 10-100x compression over a literal
// bitset pays off.
// ═══════════════════════════════════════════════════════════════════════════════

// IncidenceMatrix stores, for every term, the bitmap of documents it occurs
// in, plus the document universe needed to complement NOT.
type IncidenceMatrix struct {
	rows     map[string]*roaring.Bitmap
	universe *roaring.Bitmap
	corpus   *Corpus
}

// NewIncidenceMatrix builds an IncidenceMatrix from a Dictionary and the
// Corpus assigning its documents dense ids.
func NewIncidenceMatrix(dict *Dictionary, corpus *Corpus) *IncidenceMatrix {
	m := &IncidenceMatrix{
		rows:     make(map[string]*roaring.Bitmap, dict.Size()),
		universe: roaring.NewBitmap(),
		corpus:   corpus,
	}

	for term, entry := range dict.Terms {
		bm := roaring.NewBitmap()
		for docName := range entry.Documents {
			id, ok := corpus.ID(docName)
			if !ok {
				continue // document unknown to this corpus snapshot; skip row bit
			}
			bm.Add(id)
		}
		m.rows[term] = bm
	}

	for _, name := range corpus.Names() {
		if id, ok := corpus.ID(name); ok {
			m.universe.Add(id)
		}
	}

	slog.Info("incidence matrix built", slog.Int("terms", len(m.rows)), slog.Int("docs", int(m.universe.GetCardinality())))
	return m
}

// Row returns the bitmap of documents containing term, or an error if term
// is absent.
func (m *IncidenceMatrix) Row(term string) (*roaring.Bitmap, error) {
	bm, ok := m.rows[term]
	if !ok {
		return nil, &TermNotFound{Term: term}
	}
	return bm, nil
}

// Has reports whether term has any row at all (regardless of cardinality).
func (m *IncidenceMatrix) Has(term string) bool {
	_, ok := m.rows[term]
	return ok
}

// And intersects two bitmaps (term AND term).
func (m *IncidenceMatrix) And(a, b *roaring.Bitmap) *roaring.Bitmap {
	return roaring.And(a, b)
}

// Or unions two bitmaps (term OR term).
func (m *IncidenceMatrix) Or(a, b *roaring.Bitmap) *roaring.Bitmap {
	return roaring.Or(a, b)
}

// Not complements a bitmap against the document universe (NOT term).
func (m *IncidenceMatrix) Not(a *roaring.Bitmap) *roaring.Bitmap {
	return roaring.AndNot(m.universe, a)
}

// Universe returns the bitmap of every known document id.
func (m *IncidenceMatrix) Universe() *roaring.Bitmap {
	return m.universe.Clone()
}

// DocumentNames converts a bitmap of document ids back to sorted names via
// the shared Corpus.
func (m *IncidenceMatrix) DocumentNames(bm *roaring.Bitmap) []string {
	names := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		id := it.Next()
		if name, ok := m.corpus.Name(id); ok {
			names = append(names, name)
		}
	}
	return names
}
