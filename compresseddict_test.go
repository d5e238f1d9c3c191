package corpex

import "testing"

// ═══════════════════════════════════════════════════════════════════════════════
// COMPRESSED DICTIONARY TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func buildDictWithTerms(terms ...string) *Dictionary {
	d := NewDictionary()
	for i, term := range terms {
		d.AddTerm(term, "doc")
		_ = i
	}
	return d
}

func TestCompressedDictionary_RoundTripsEveryTerm(t *testing.T) {
	terms := []string{"compute", "computer", "computing", "compilation", "banana"}
	dict := buildDictWithTerms(terms...)
	cd := NewCompressedDictionary(dict)

	if cd.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", cd.Len())
	}
	for _, term := range terms {
		if !cd.Contains(term) {
			t.Errorf("Contains(%q) = false, want true", term)
		}
	}
	if cd.Contains("nonexistent") {
		t.Error("Contains(\"nonexistent\") = true, want false")
	}
}

func TestCompressedDictionary_TermByIndexIsSorted(t *testing.T) {
	dict := buildDictWithTerms("zebra", "apple", "mango")
	cd := NewCompressedDictionary(dict)

	want := []string{"apple", "mango", "zebra"}
	for i, w := range want {
		got, ok := cd.Term(i)
		if !ok {
			t.Fatalf("Term(%d) missing", i)
		}
		if got != w {
			t.Errorf("Term(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestCompressedDictionary_TermOutOfRange(t *testing.T) {
	cd := NewCompressedDictionary(buildDictWithTerms("only"))
	if _, ok := cd.Term(5); ok {
		t.Error("Term(5) ok = true, want false")
	}
	if _, ok := cd.Term(-1); ok {
		t.Error("Term(-1) ok = true, want false")
	}
}

func TestCompressedDictionary_CompressesSharedPrefixes(t *testing.T) {
	dict := buildDictWithTerms("compute", "computer", "computing", "compilation")
	cd := NewCompressedDictionary(dict)

	if cd.CompressedSize >= cd.OriginalSize {
		t.Errorf("CompressedSize (%d) >= OriginalSize (%d), expected savings from shared prefixes", cd.CompressedSize, cd.OriginalSize)
	}
}

func TestCompressedDictionary_EmptyDictionary(t *testing.T) {
	cd := NewCompressedDictionary(NewDictionary())
	if cd.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cd.Len())
	}
	if cd.CompressionRatio() != 1.0 {
		t.Errorf("CompressionRatio() = %f, want 1.0 for empty dictionary", cd.CompressionRatio())
	}
}
