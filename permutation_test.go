package corpex

import "testing"

// ═══════════════════════════════════════════════════════════════════════════════
// PERMUTATION INDEX TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestGenerateRotations(t *testing.T) {
	got := GenerateRotations("ab")
	want := []string{"ab$", "b$a", "$ab"}
	if len(got) != len(want) {
		t.Fatalf("GenerateRotations(\"ab\") = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rotation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func buildTestPermutation() *PermutationIndex {
	d := buildDictWithTerms("fox", "box", "follow")
	return NewPermutationIndex(d)
}

func TestPermutationIndex_NoWildcard(t *testing.T) {
	p := buildTestPermutation()
	got, err := p.FindMatchingTerms("fox")
	if err != nil {
		t.Fatalf("FindMatchingTerms error: %v", err)
	}
	if !setsEqual(got, map[string]struct{}{"fox": {}}) {
		t.Errorf("FindMatchingTerms(\"fox\") = %v", got)
	}
}

func TestPermutationIndex_PrefixStar(t *testing.T) {
	p := buildTestPermutation()
	got, err := p.FindMatchingTerms("fo*")
	if err != nil {
		t.Fatalf("FindMatchingTerms error: %v", err)
	}
	if !setsEqual(got, map[string]struct{}{"fox": {}, "follow": {}}) {
		t.Errorf("FindMatchingTerms(\"fo*\") = %v", got)
	}
}

func TestPermutationIndex_StarSuffix(t *testing.T) {
	p := buildTestPermutation()
	got, err := p.FindMatchingTerms("*ox")
	if err != nil {
		t.Fatalf("FindMatchingTerms error: %v", err)
	}
	if !setsEqual(got, map[string]struct{}{"fox": {}, "box": {}}) {
		t.Errorf("FindMatchingTerms(\"*ox\") = %v", got)
	}
}

func TestPermutationIndex_MiddleStar(t *testing.T) {
	p := buildTestPermutation()
	got, err := p.FindMatchingTerms("f*w")
	if err != nil {
		t.Fatalf("FindMatchingTerms error: %v", err)
	}
	if !setsEqual(got, map[string]struct{}{"follow": {}}) {
		t.Errorf("FindMatchingTerms(\"f*w\") = %v", got)
	}
}

func TestPermutationIndex_MultiStarUnsupported(t *testing.T) {
	p := buildTestPermutation()
	_, err := p.FindMatchingTerms("f*o*w")
	if err != ErrWildcardUnsupported {
		t.Errorf("FindMatchingTerms(\"f*o*w\") error = %v, want ErrWildcardUnsupported", err)
	}
}

func TestPermutationIndex_EmptyPattern(t *testing.T) {
	p := buildTestPermutation()
	got, err := p.FindMatchingTerms("")
	if err != nil {
		t.Fatalf("FindMatchingTerms error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FindMatchingTerms(\"\") = %v, want empty", got)
	}
}
