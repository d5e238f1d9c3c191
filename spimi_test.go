package corpex

import (
	"path/filepath"
	"reflect"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SPIMI TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func testSPIMIDocs() []Document {
	return []Document{
		{ID: "doc1", Text: "the quick brown fox"},
		{ID: "doc2", Text: "the lazy brown dog"},
		{ID: "doc3", Text: "quick dog runs fast"},
	}
}

func dictionaryEquivalent(a, b *Dictionary) bool {
	if a.TotalDocuments != b.TotalDocuments {
		return false
	}
	if len(a.Terms) != len(b.Terms) {
		return false
	}
	for term, entryA := range a.Terms {
		entryB, ok := b.Terms[term]
		if !ok {
			return false
		}
		idsA := entryA.DocumentIDs()
		idsB := entryB.DocumentIDs()
		sortStrings(idsA)
		sortStrings(idsB)
		if !reflect.DeepEqual(idsA, idsB) {
			return false
		}
	}
	return true
}

func TestSPIMIBuilder_SpillsWhenOverBudget(t *testing.T) {
	dir := t.TempDir()
	builder, err := NewSPIMIBuilder(SPIMIConfig{MemoryBudgetBytes: 1, ScratchDir: dir})
	if err != nil {
		t.Fatalf("NewSPIMIBuilder error: %v", err)
	}

	for _, doc := range testSPIMIDocs() {
		if err := builder.AddDocument(doc.ID, doc.Text); err != nil {
			t.Fatalf("AddDocument error: %v", err)
		}
	}

	if builder.blockCount == 0 {
		t.Error("expected at least one block to have been spilled with a 1-byte budget")
	}
}

func TestSPIMIBuilder_Finalize_MatchesInMemory(t *testing.T) {
	docs := testSPIMIDocs()
	dir := t.TempDir()

	builder, err := NewSPIMIBuilder(SPIMIConfig{MemoryBudgetBytes: 1, ScratchDir: filepath.Join(dir, "scratch")})
	if err != nil {
		t.Fatalf("NewSPIMIBuilder error: %v", err)
	}
	for _, doc := range docs {
		if err := builder.AddDocument(doc.ID, doc.Text); err != nil {
			t.Fatalf("AddDocument error: %v", err)
		}
	}
	spilled, err := builder.Finalize()
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	inMemory := BuildDictionaryInMemory(docs)

	if !dictionaryEquivalent(spilled, inMemory) {
		t.Errorf("SPIMI-built dictionary diverges from in-memory build")
	}
}

func TestSPIMIBuilder_Finalize_NoSpillWithLargeBudget(t *testing.T) {
	docs := testSPIMIDocs()
	dir := t.TempDir()

	builder, err := NewSPIMIBuilder(SPIMIConfig{MemoryBudgetBytes: 1 << 30, ScratchDir: dir})
	if err != nil {
		t.Fatalf("NewSPIMIBuilder error: %v", err)
	}
	for _, doc := range docs {
		if err := builder.AddDocument(doc.ID, doc.Text); err != nil {
			t.Fatalf("AddDocument error: %v", err)
		}
	}
	if builder.blockCount != 0 {
		t.Errorf("blockCount = %d, want 0 with a large memory budget", builder.blockCount)
	}

	dict, err := builder.Finalize()
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if !dictionaryEquivalent(dict, BuildDictionaryInMemory(docs)) {
		t.Error("single-block SPIMI dictionary diverges from in-memory build")
	}
}

func TestParallelSPIMI_MatchesInMemory(t *testing.T) {
	docs := testSPIMIDocs()
	dir := t.TempDir()

	merged, err := ParallelSPIMI(docs, 2, SPIMIConfig{MemoryBudgetBytes: 64, ScratchDir: dir})
	if err != nil {
		t.Fatalf("ParallelSPIMI error: %v", err)
	}

	if !dictionaryEquivalent(merged, BuildDictionaryInMemory(docs)) {
		t.Error("ParallelSPIMI dictionary diverges from in-memory build")
	}
}

func TestBuildDictionaryInMemory_TermCounts(t *testing.T) {
	docs := testSPIMIDocs()
	dict := BuildDictionaryInMemory(docs)

	entry, ok := dict.Terms["quick"]
	if !ok {
		t.Fatal("expected \"quick\" in dictionary")
	}
	if len(entry.Documents) != 2 {
		t.Errorf("\"quick\" appears in %d documents, want 2", len(entry.Documents))
	}
}
