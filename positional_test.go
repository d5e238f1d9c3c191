package corpex

import "testing"

// ═══════════════════════════════════════════════════════════════════════════════
// POSITIONAL INDEX TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func buildTestPositional() (*PositionalIndex, *Corpus) {
	docs := []Document{
		{ID: "doc1", Text: "the quick brown fox jumps over the lazy dog"},
		{ID: "doc2", Text: "a brown fox is quick"},
	}
	d := NewDictionary()
	for _, doc := range docs {
		d.AddDocument(doc.ID, Tokenize(doc.Text), int64(len(doc.Text)))
	}
	c := FromDictionary(d)
	return NewPositionalIndex(docs, c, Tokenize), c
}

func TestPositionalIndex_First(t *testing.T) {
	idx, c := buildTestPositional()

	pos, err := idx.First("brown")
	if err != nil {
		t.Fatalf("First(\"brown\") error: %v", err)
	}
	doc1ID, _ := c.ID("doc1")
	if uint32(pos.DocumentID) != doc1ID || pos.Offset != 2 {
		t.Errorf("First(\"brown\") = %+v, want doc1 offset 2", pos)
	}
}

func TestPositionalIndex_First_TermNotFound(t *testing.T) {
	idx, _ := buildTestPositional()
	_, err := idx.First("nonexistent")

	var notFound *TermNotFound
	if !isTermNotFound(err, &notFound) {
		t.Errorf("First(\"nonexistent\") error = %v, want *TermNotFound", err)
	}
}

func TestPositionalIndex_Last(t *testing.T) {
	idx, c := buildTestPositional()

	pos, err := idx.Last("brown")
	if err != nil {
		t.Fatalf("Last(\"brown\") error: %v", err)
	}
	doc2ID, _ := c.ID("doc2")
	if uint32(pos.DocumentID) != doc2ID {
		t.Errorf("Last(\"brown\") document = %v, want doc2", pos.DocumentID)
	}
}

func TestPositionalIndex_Next_FromBeginning(t *testing.T) {
	idx, _ := buildTestPositional()

	pos, err := idx.Next("the", BOFDocument)
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if pos.Offset != 0 {
		t.Errorf("Next(\"the\", BOF) offset = %v, want 0", pos.Offset)
	}
}

func TestPositionalIndex_FindPhrase_Matches(t *testing.T) {
	idx, c := buildTestPositional()

	matches, err := idx.FindPhrase([]string{"brown", "fox"})
	if err != nil {
		t.Fatalf("FindPhrase error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("FindPhrase(\"brown fox\") matches = %d, want 2", len(matches))
	}
	doc1ID, _ := c.ID("doc1")
	doc2ID, _ := c.ID("doc2")
	seen := map[uint32]bool{}
	for _, m := range matches {
		seen[m.DocumentID] = true
	}
	if !seen[doc1ID] || !seen[doc2ID] {
		t.Errorf("FindPhrase matches = %+v, want both documents", matches)
	}
}

func TestPositionalIndex_FindPhrase_NoMatch(t *testing.T) {
	idx, _ := buildTestPositional()

	matches, err := idx.FindPhrase([]string{"fox", "brown"})
	if err != nil {
		t.Fatalf("FindPhrase error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("FindPhrase(\"fox brown\") matches = %d, want 0", len(matches))
	}
}

func TestPositionalIndex_FindPhrase_TooShort(t *testing.T) {
	idx, _ := buildTestPositional()
	_, err := idx.FindPhrase([]string{"fox"})

	var syntaxErr *QuerySyntaxError
	if !isQuerySyntaxError(err, &syntaxErr) {
		t.Errorf("FindPhrase single-word error = %v, want *QuerySyntaxError", err)
	}
}

func TestPositionalIndex_FindPhrase_UnknownTerm(t *testing.T) {
	idx, _ := buildTestPositional()
	_, err := idx.FindPhrase([]string{"brown", "nonexistent"})

	var notFound *TermNotFound
	if !isTermNotFound(err, &notFound) {
		t.Errorf("FindPhrase unknown term error = %v, want *TermNotFound", err)
	}
}

func TestPositionalIndex_Near_FindsAnchoredMatches(t *testing.T) {
	idx, c := buildTestPositional()

	// doc1: "the quick brown fox jumps over the lazy dog"
	// quick at 1, dog at 8 -> gap 7
	matches, err := idx.Near([]string{"quick", "dog"}, 10)
	if err != nil {
		t.Fatalf("Near error: %v", err)
	}
	doc1ID, _ := c.ID("doc1")
	found := false
	for _, m := range matches {
		if m.DocumentID == doc1ID {
			found = true
		}
	}
	if !found {
		t.Errorf("Near([quick,dog], 10) = %+v, expected doc1 match", matches)
	}
}

func TestPositionalIndex_Near_RespectsDistance(t *testing.T) {
	idx, _ := buildTestPositional()

	matches, err := idx.Near([]string{"quick", "dog"}, 2)
	if err != nil {
		t.Fatalf("Near error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Near([quick,dog], 2) = %+v, want no matches", matches)
	}
}

func TestPositionalIndex_Near_NegativeDistance(t *testing.T) {
	idx, _ := buildTestPositional()
	_, err := idx.Near([]string{"quick", "dog"}, -1)

	var syntaxErr *QuerySyntaxError
	if !isQuerySyntaxError(err, &syntaxErr) {
		t.Errorf("Near negative distance error = %v, want *QuerySyntaxError", err)
	}
}

func TestPositionalIndex_Has(t *testing.T) {
	idx, _ := buildTestPositional()
	if !idx.Has("fox") {
		t.Error("Has(\"fox\") = false, want true")
	}
	if idx.Has("nonexistent") {
		t.Error("Has(\"nonexistent\") = true, want false")
	}
}
