package corpex

import "testing"

// ═══════════════════════════════════════════════════════════════════════════════
// WILDCARD ROUTER TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func buildTestRouter() (*Router, *Corpus) {
	d := NewDictionary()
	d.AddDocument("doc1", []string{"fox", "brown"}, 10)
	d.AddDocument("doc2", []string{"box", "quick"}, 10)
	d.AddDocument("doc3", []string{"follow"}, 10)

	c := FromDictionary(d)
	postings := NewCompressedInvertedIndex(d, c)
	r := NewRouter(NewSuffixTree(d), NewPermutationIndex(d), NewTrigramIndex(d), postings)
	return r, c
}

func TestRouter_MatchingTerms_Simple(t *testing.T) {
	r, _ := buildTestRouter()
	terms, err := r.MatchingTerms("fo*")
	if err != nil {
		t.Fatalf("MatchingTerms error: %v", err)
	}
	if !setsEqual(terms, map[string]struct{}{"fox": {}, "follow": {}}) {
		t.Errorf("MatchingTerms(\"fo*\") = %v", terms)
	}
}

func TestRouter_MatchingTerms_Medium(t *testing.T) {
	r, _ := buildTestRouter()
	terms, err := r.MatchingTerms("f*o*w")
	if err != nil {
		t.Fatalf("MatchingTerms error: %v", err)
	}
	if !setsEqual(terms, map[string]struct{}{"follow": {}}) {
		t.Errorf("MatchingTerms(\"f*o*w\") = %v", terms)
	}
}

func TestRouter_Resolve_UnionsPostings(t *testing.T) {
	r, c := buildTestRouter()
	ids, err := r.Resolve("*ox")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	doc1ID, _ := c.ID("doc1")
	doc2ID, _ := c.ID("doc2")
	want := map[uint32]bool{doc1ID: true, doc2ID: true}
	if len(ids) != len(want) {
		t.Fatalf("Resolve(\"*ox\") = %v, want 2 documents", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected document id %d in result", id)
		}
	}
}

func TestRouter_Resolve_NoMatch(t *testing.T) {
	r, _ := buildTestRouter()
	ids, err := r.Resolve("zzz*")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Resolve(\"zzz*\") = %v, want empty", ids)
	}
}

// buildHelloWorldRouter builds the {hello, help, world} fixture spec.md's
// S5 worked example is stated over.
func buildHelloWorldRouter() *Router {
	d := NewDictionary()
	d.AddDocument("doc1", []string{"hello"}, 5)
	d.AddDocument("doc2", []string{"help"}, 5)
	d.AddDocument("doc3", []string{"world"}, 5)

	postings := NewCompressedInvertedIndex(d, FromDictionary(d))
	return NewRouter(NewSuffixTree(d), NewPermutationIndex(d), NewTrigramIndex(d), postings)
}

func TestRouter_MatchingTerms_S5(t *testing.T) {
	r := buildHelloWorldRouter()

	cases := []struct {
		pattern string
		want    map[string]struct{}
	}{
		{"hel*", map[string]struct{}{"hello": {}, "help": {}}},
		{"*lo", map[string]struct{}{"hello": {}}},
		{"h?lp", map[string]struct{}{"help": {}}},
		{"*", map[string]struct{}{"hello": {}, "help": {}, "world": {}}},
	}

	for _, c := range cases {
		got, err := r.MatchingTerms(c.pattern)
		if err != nil {
			t.Fatalf("MatchingTerms(%q) error: %v", c.pattern, err)
		}
		if !setsEqual(got, c.want) {
			t.Errorf("MatchingTerms(%q) = %v, want %v", c.pattern, got, c.want)
		}
	}
}

func TestRouter_MatchingTerms_SingleQuestionMarkFallsBackToSuffixTree(t *testing.T) {
	r := buildHelloWorldRouter()

	terms, err := r.MatchingTerms("h?lp")
	if err != nil {
		t.Fatalf("MatchingTerms error: %v", err)
	}
	if !setsEqual(terms, map[string]struct{}{"help": {}}) {
		t.Errorf(`MatchingTerms("h?lp") = %v, want {help}`, terms)
	}

	if _, err := r.permutation.FindMatchingTerms("h?lp"); err != ErrWildcardUnsupported {
		t.Errorf("PermutationIndex.FindMatchingTerms(\"h?lp\") error = %v, want ErrWildcardUnsupported", err)
	}
}
