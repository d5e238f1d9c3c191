package corpex

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PERSISTENCE ROUND-TRIP TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	docs := []Document{
		{ID: "doc1", Text: "the quick brown fox jumps over the lazy dog"},
		{ID: "doc2", Text: "a brown fox is quick"},
		{ID: "doc3", Text: "the lazy dog sleeps all day"},
	}
	idx, err := Build(docs, BuildOptions{UnknownTermPolicy: PropagateUnknownTerm})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return idx
}

func TestSaveAll_LoadIndex_RoundTrip(t *testing.T) {
	idx := buildTestIndex(t)
	dir := t.TempDir()
	prefix := filepath.Join(dir, "corpus")

	if err := SaveAll(idx, prefix); err != nil {
		t.Fatalf("SaveAll error: %v", err)
	}

	loaded, err := LoadIndex(prefix, PropagateUnknownTerm)
	if err != nil {
		t.Fatalf("LoadIndex error: %v", err)
	}

	wantNames := idx.Corpus.Names()
	gotNames := loaded.Corpus.Names()
	if !reflect.DeepEqual(wantNames, gotNames) {
		t.Errorf("Corpus.Names() = %v, want %v", gotNames, wantNames)
	}

	for _, query := range []string{"fox", "fox and brown", `"brown fox"`, "near/10(quick dog)", "fo*"} {
		want, err := idx.Evaluator.Evaluate(query)
		if err != nil {
			t.Fatalf("original Evaluate(%q) error: %v", query, err)
		}
		got, err := loaded.Evaluator.Evaluate(query)
		if err != nil {
			t.Fatalf("loaded Evaluate(%q) error: %v", query, err)
		}
		sort.Strings(want)
		sort.Strings(got)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Evaluate(%q) after round trip = %v, want %v", query, got, want)
		}
	}
}

func TestSaveSelected_AlwaysWritesDictionaryBin(t *testing.T) {
	idx := buildTestIndex(t)
	dir := t.TempDir()
	prefix := filepath.Join(dir, "corpus")

	if err := SaveSelected(idx, prefix, []string{"text"}); err != nil {
		t.Fatalf("SaveSelected error: %v", err)
	}

	if _, err := os.Stat(prefix + suffixDictBin); err != nil {
		t.Errorf("dictionary .bin missing even though only text was requested: %v", err)
	}
	if _, err := os.Stat(prefix + suffixDictTxt); err != nil {
		t.Errorf("dictionary .txt missing: %v", err)
	}
	if _, err := os.Stat(prefix + suffixDictJSON); err == nil {
		t.Error("dictionary .json present even though json format was not requested")
	}
}

func TestSaveSelected_CoreBinariesAlwaysWritten(t *testing.T) {
	idx := buildTestIndex(t)
	dir := t.TempDir()
	prefix := filepath.Join(dir, "corpus")

	if err := SaveSelected(idx, prefix, nil); err != nil {
		t.Fatalf("SaveSelected error: %v", err)
	}

	for _, suffix := range []string{suffixMatrix, suffixPostings, suffixBigram, suffixCoordinate, suffixWildcard} {
		if _, err := os.Stat(prefix + suffix); err != nil {
			t.Errorf("missing core index file %s: %v", suffix, err)
		}
	}
}

func TestLoadIndex_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadIndex(filepath.Join(dir, "missing"), PropagateUnknownTerm)
	if err == nil {
		t.Fatal("expected error loading from a nonexistent prefix")
	}
}
