package corpex

import "testing"

// ═══════════════════════════════════════════════════════════════════════════════
// BIGRAM INDEX TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func buildTestBigram() (*BigramIndex, *Corpus) {
	docs := []Document{
		{ID: "doc1", Text: "the quick brown fox"},
		{ID: "doc2", Text: "the lazy brown dog"},
	}
	d := NewDictionary()
	for _, doc := range docs {
		d.AddDocument(doc.ID, Tokenize(doc.Text), int64(len(doc.Text)))
	}
	c := FromDictionary(d)
	return NewBigramIndex(docs, c, Tokenize), c
}

func TestBigramIndex_Lookup_Found(t *testing.T) {
	b, c := buildTestBigram()

	bm, err := b.Lookup("quick", "brown")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if bm.GetCardinality() != 1 {
		t.Errorf("cardinality = %d, want 1", bm.GetCardinality())
	}
	id, _ := c.ID("doc1")
	if !bm.Contains(id) {
		t.Error("expected doc1 in result")
	}
}

func TestBigramIndex_Lookup_AbsentIsEmptyNotError(t *testing.T) {
	b, _ := buildTestBigram()

	bm, err := b.Lookup("fox", "dog")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if bm.GetCardinality() != 0 {
		t.Errorf("cardinality = %d, want 0", bm.GetCardinality())
	}
}

func TestBigramIndex_CandidatePhraseDocuments_TwoWords(t *testing.T) {
	b, c := buildTestBigram()

	bm, err := b.CandidatePhraseDocuments([]string{"brown", "dog"})
	if err != nil {
		t.Fatalf("CandidatePhraseDocuments error: %v", err)
	}
	id, _ := c.ID("doc2")
	if bm.GetCardinality() != 1 || !bm.Contains(id) {
		t.Errorf("expected only doc2 to match \"brown dog\"")
	}
}

func TestBigramIndex_CandidatePhraseDocuments_ThreeWords(t *testing.T) {
	b, c := buildTestBigram()

	bm, err := b.CandidatePhraseDocuments([]string{"the", "quick", "brown"})
	if err != nil {
		t.Fatalf("CandidatePhraseDocuments error: %v", err)
	}
	id, _ := c.ID("doc1")
	if bm.GetCardinality() != 1 || !bm.Contains(id) {
		t.Errorf("expected only doc1 to match \"the quick brown\"")
	}
}

func TestBigramIndex_CandidatePhraseDocuments_TooShort(t *testing.T) {
	b, _ := buildTestBigram()

	_, err := b.CandidatePhraseDocuments([]string{"only"})
	var syntaxErr *QuerySyntaxError
	if err == nil {
		t.Fatal("expected error for single-word phrase")
	}
	if !isQuerySyntaxError(err, &syntaxErr) {
		t.Errorf("error = %v, want *QuerySyntaxError", err)
	}
}

func isQuerySyntaxError(err error, out **QuerySyntaxError) bool {
	qse, ok := err.(*QuerySyntaxError)
	if ok {
		*out = qse
	}
	return ok
}
