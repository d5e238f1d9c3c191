package corpex

import (
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ENGINE BUILD ORCHESTRATION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func testEngineDocs() []Document {
	return []Document{
		{ID: "doc1", Text: "the quick brown fox jumps over the lazy dog"},
		{ID: "doc2", Text: "a brown fox is quick"},
		{ID: "doc3", Text: "the lazy dog sleeps all day"},
	}
}

func TestBuild_AssemblesEveryIndexFamily(t *testing.T) {
	idx, err := Build(testEngineDocs(), BuildOptions{UnknownTermPolicy: PropagateUnknownTerm})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if idx.Dictionary == nil || idx.Compressed == nil || idx.Corpus == nil ||
		idx.Matrix == nil || idx.Postings == nil || idx.Bigram == nil ||
		idx.Positional == nil || idx.SuffixTree == nil || idx.Permutation == nil ||
		idx.Trigram == nil || idx.Router == nil || idx.Evaluator == nil {
		t.Fatal("Build left one or more index families nil")
	}

	if idx.Corpus.Size() != 3 {
		t.Errorf("Corpus.Size() = %d, want 3", idx.Corpus.Size())
	}
}

func TestBuild_ConcurrencyDefaultsToGOMAXPROCS(t *testing.T) {
	docs := testEngineDocs()

	idxDefault, err := Build(docs, BuildOptions{})
	if err != nil {
		t.Fatalf("Build (default concurrency) error: %v", err)
	}
	idxExplicit, err := Build(docs, BuildOptions{Concurrency: 1})
	if err != nil {
		t.Fatalf("Build (concurrency=1) error: %v", err)
	}

	got := evaluate(t, idxDefault.Evaluator, "fox")
	want := evaluate(t, idxExplicit.Evaluator, "fox")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("results differ across concurrency settings: %v vs %v", got, want)
	}
}

func TestBuildViaSPIMI_MatchesBuild(t *testing.T) {
	docs := testEngineDocs()
	dir := t.TempDir()

	inMemory, err := Build(docs, BuildOptions{UnknownTermPolicy: PropagateUnknownTerm})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	viaSPIMI, err := BuildViaSPIMI(docs, SPIMIConfig{MemoryBudgetBytes: 64, ScratchDir: filepath.Join(dir, "scratch")}, 2, BuildOptions{UnknownTermPolicy: PropagateUnknownTerm})
	if err != nil {
		t.Fatalf("BuildViaSPIMI error: %v", err)
	}

	for _, query := range []string{"fox", "fox and brown", `"brown fox"`, "near/10(quick dog)"} {
		want := evaluate(t, inMemory.Evaluator, query)
		got := evaluate(t, viaSPIMI.Evaluator, query)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Evaluate(%q): SPIMI build = %v, in-memory build = %v", query, got, want)
		}
	}
}

func TestChunkDocuments_PreservesAllDocuments(t *testing.T) {
	docs := testEngineDocs()
	chunks := chunkDocuments(docs, 2)

	var flattened []string
	for _, chunk := range chunks {
		for _, d := range chunk {
			flattened = append(flattened, d.ID)
		}
	}
	sort.Strings(flattened)

	want := []string{"doc1", "doc2", "doc3"}
	if !reflect.DeepEqual(flattened, want) {
		t.Errorf("chunkDocuments lost or duplicated documents: %v", flattened)
	}
}

func TestChunkDocuments_FewerDocsThanChunks(t *testing.T) {
	docs := testEngineDocs()[:1]
	chunks := chunkDocuments(docs, 8)
	if len(chunks) != 1 {
		t.Errorf("chunkDocuments(1 doc, 8) = %d chunks, want 1", len(chunks))
	}
}
