package corpex

import (
	"log/slog"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POSITIONAL (COORDINATE) INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// Every token occurrence is recorded as a Position{DocumentID, Offset} in a
// per-term SkipList, giving First/Last/Next/Previous iteration in document
// then offset order. Two operations are built on these primitives:
//
//   - Phrase search ("t1 t2 ... tk"): hop term-by-term looking for
//     consecutive offsets in the same document (the classic NextPhrase
//     algorithm).
//   - NEAR/d proximity: an ASYMMETRIC search anchored on the first term —
//     it finds an occurrence of t1, then asks whether every other term
//     occurs within d positions of THAT specific occurrence. It does not
//     search for a globally minimal window containing all terms (that
//     would be symmetric proximity ranking, which this engine does not
//     perform — ranking is out of scope). This asymmetry is intentional.
// ═══════════════════════════════════════════════════════════════════════════════

// PositionalIndex maps terms to a SkipList of every occurrence position.
type PositionalIndex struct {
	postings map[string]*SkipList
	corpus   *Corpus
}

// NewPositionalIndex builds a PositionalIndex by re-tokenizing every
// document via tokenize and recording each token's (document, offset) pair.
func NewPositionalIndex(docs []Document, corpus *Corpus, tokenize func(string) []string) *PositionalIndex {
	idx := &PositionalIndex{
		postings: make(map[string]*SkipList),
		corpus:   corpus,
	}

	for _, doc := range docs {
		id, ok := corpus.ID(doc.ID)
		if !ok {
			continue
		}
		for offset, token := range tokenize(doc.Text) {
			sl, ok := idx.postings[token]
			if !ok {
				sl = NewSkipList()
				idx.postings[token] = sl
			}
			sl.Insert(Position{DocumentID: int64(id), Offset: int64(offset)})
		}
	}

	slog.Info("positional index built", slog.Int("terms", len(idx.postings)))
	return idx
}

func (idx *PositionalIndex) getPostingList(term string) (*SkipList, bool) {
	sl, ok := idx.postings[term]
	return sl, ok
}

// First returns the earliest occurrence of term.
func (idx *PositionalIndex) First(term string) (Position, error) {
	sl, ok := idx.getPostingList(term)
	if !ok {
		return EOFDocument, &TermNotFound{Term: term}
	}
	if sl.Head.Tower[0] == nil {
		return EOFDocument, ErrNoElementFound
	}
	return sl.Head.Tower[0].Key, nil
}

// Last returns the latest occurrence of term.
func (idx *PositionalIndex) Last(term string) (Position, error) {
	sl, ok := idx.getPostingList(term)
	if !ok {
		return EOFDocument, &TermNotFound{Term: term}
	}
	return sl.Last(), nil
}

// Next returns the first occurrence of term strictly after pos.
func (idx *PositionalIndex) Next(term string, pos Position) (Position, error) {
	if pos.IsBeginning() {
		return idx.First(term)
	}
	if pos.IsEnd() {
		return EOFDocument, nil
	}
	sl, ok := idx.getPostingList(term)
	if !ok {
		return EOFDocument, &TermNotFound{Term: term}
	}
	next, _ := sl.FindGreaterThan(pos)
	return next, nil
}

// Previous returns the last occurrence of term strictly before pos.
func (idx *PositionalIndex) Previous(term string, pos Position) (Position, error) {
	if pos.IsEnd() {
		return idx.Last(term)
	}
	if pos.IsBeginning() {
		return BOFDocument, nil
	}
	sl, ok := idx.getPostingList(term)
	if !ok {
		return BOFDocument, &TermNotFound{Term: term}
	}
	prev, _ := sl.FindLessThan(pos)
	return prev, nil
}

// PhraseMatch is one confirmed phrase occurrence: the document and the
// offset of the phrase's first word.
type PhraseMatch struct {
	DocumentID uint32
	StartPos   int
}

// FindPhrase locates every occurrence of the consecutive word sequence
// terms within the positional index, using the classic NextPhrase
// algorithm: walk term v from the position established by term v-1, and
// require every hop to land exactly one offset further in the same
// document.
func (idx *PositionalIndex) FindPhrase(terms []string) ([]PhraseMatch, error) {
	if len(terms) < 2 {
		return nil, &QuerySyntaxError{Reason: "phrase must have at least two words"}
	}
	for _, t := range terms {
		if !idx.Has(t) {
			return nil, &TermNotFound{Term: t}
		}
	}

	var matches []PhraseMatch
	position := BOFDocument

	for {
		end, err := idx.nextPhraseEnd(terms, position)
		if err != nil {
			return nil, err
		}
		if end.IsEnd() {
			break
		}

		start, err := idx.findPhraseStart(terms, end)
		if err != nil {
			return nil, err
		}

		if start.DocumentID == end.DocumentID && end.Offset-start.Offset == int64(len(terms)-1) {
			matches = append(matches, PhraseMatch{
				DocumentID: uint32(start.DocumentID),
				StartPos:   int(start.Offset),
			})
		}
		position = start
	}

	return matches, nil
}

// nextPhraseEnd finds the position of the LAST word of the phrase in the
// next document (after `after`) where all words appear consecutively.
func (idx *PositionalIndex) nextPhraseEnd(terms []string, after Position) (Position, error) {
	v := after
	for _, term := range terms {
		next, err := idx.Next(term, v)
		if err != nil {
			return EOFDocument, err
		}
		v = next
	}
	return v, nil
}

// findPhraseStart walks backward from the end position (the last word's
// occurrence) to recover the position of the phrase's first word.
func (idx *PositionalIndex) findPhraseStart(terms []string, end Position) (Position, error) {
	v := end
	for i := len(terms) - 2; i >= 0; i-- {
		prev, err := idx.Previous(terms[i], v)
		if err != nil {
			return BOFDocument, err
		}
		v = prev
	}
	return v, nil
}

// Has reports whether term has any positional postings at all.
func (idx *PositionalIndex) Has(term string) bool {
	_, ok := idx.postings[term]
	return ok
}

// NearMatch is one confirmed NEAR/d occurrence: the document and the
// anchor (first term's) offset that satisfied the proximity test.
type NearMatch struct {
	DocumentID uint32
	AnchorPos  int
}

// Near implements the spec's asymmetric NEAR/d: it walks every occurrence
// of terms[0] (the anchor) and, for each one, checks whether every other
// term in terms has AT LEAST ONE occurrence in the same document within d
// positions of that specific anchor occurrence. It does not search for a
// minimal window across all terms and does not require the other terms to
// be near EACH OTHER, only near the anchor — this is the documented
// asymmetric behavior (see design notes), not a symmetric k-way proximity.
func (idx *PositionalIndex) Near(terms []string, d int) ([]NearMatch, error) {
	if len(terms) < 2 {
		return nil, &QuerySyntaxError{Reason: "near requires at least two terms"}
	}
	if d < 0 {
		return nil, &QuerySyntaxError{Reason: "near distance must be non-negative"}
	}
	for _, t := range terms {
		if !idx.Has(t) {
			return nil, &TermNotFound{Term: t}
		}
	}

	anchor := terms[0]
	others := terms[1:]

	var matches []NearMatch
	pos := BOFDocument
	for {
		next, err := idx.Next(anchor, pos)
		if err != nil {
			return nil, err
		}
		if next.IsEnd() {
			break
		}
		pos = next

		if idx.allWithin(others, next, d) {
			matches = append(matches, NearMatch{
				DocumentID: uint32(next.DocumentID),
				AnchorPos:  int(next.Offset),
			})
		}
	}

	return matches, nil
}

// allWithin reports whether every term in terms has an occurrence in
// anchor's document within [anchor.Offset-d, anchor.Offset+d].
func (idx *PositionalIndex) allWithin(terms []string, anchor Position, d int) bool {
	for _, term := range terms {
		if !idx.hasOccurrenceWithin(term, anchor, d) {
			return false
		}
	}
	return true
}

// hasOccurrenceWithin scans term's occurrences starting from the smallest
// one >= anchor.Offset-d in anchor's document, advancing forward, until it
// either finds one within the window or passes anchor.Offset+d in the same
// document.
func (idx *PositionalIndex) hasOccurrenceWithin(term string, anchor Position, d int) bool {
	sl, ok := idx.getPostingList(term)
	if !ok {
		return false
	}

	lowBound := Position{DocumentID: anchor.DocumentID, Offset: anchor.Offset - int64(d) - 1}
	pos, err := sl.FindGreaterThan(lowBound)
	if err != nil {
		pos, _ = sl.Find(lowBound)
	}

	for !pos.IsEnd() && pos.DocumentID == anchor.DocumentID {
		gap := absInt(int(pos.Offset) - int(anchor.Offset))
		if gap <= d {
			return true
		}
		if pos.Offset > anchor.Offset+int64(d) {
			return false
		}
		next, _ := sl.FindGreaterThan(pos)
		pos = next
	}
	return false
}
