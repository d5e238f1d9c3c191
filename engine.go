package corpex

import (
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ENGINE: Build Orchestration
// ═══════════════════════════════════════════════════════════════════════════════
// Build runs the full pipeline documents -> dictionary -> every downstream
// index. Tokenization splits the documents up front into `concurrency`
// contiguous chunks (GOMAXPROCS by default) and runs one errgroup goroutine
// per chunk; there is no work stealing, so a goroutine that finishes early
// does not take documents from another chunk. Each worker accumulates its
// own local Dictionary and the results are merged into the global one with
// exactly one critical section per document-chunk, never a lock-free
// concurrent insert into shared state. The downstream index families are
// then built one after another on the calling goroutine.
// ═══════════════════════════════════════════════════════════════════════════════

// Index is the complete, immutable set of structures built from a corpus:
// every index family plus the evaluator wired to query them together.
type Index struct {
	Dictionary  *Dictionary
	Compressed  *CompressedDictionary
	Corpus      *Corpus
	Matrix      *IncidenceMatrix
	Postings    *CompressedInvertedIndex
	Bigram      *BigramIndex
	Positional  *PositionalIndex
	SuffixTree  *SuffixTree
	Permutation *PermutationIndex
	Trigram     *TrigramIndex
	Router      *Router
	Evaluator   *Evaluator
}

// BuildOptions configures a Build call.
type BuildOptions struct {
	// Concurrency bounds how many documents are tokenized at once during
	// the dictionary-building fan-out. Zero means runtime.GOMAXPROCS(0).
	Concurrency int
	// UnknownTermPolicy governs the evaluator's handling of absent terms
	// inside Boolean sub-expressions.
	UnknownTermPolicy UnknownTermPolicy
}

// Build runs the full pipeline over docs and returns the assembled Index.
func Build(docs []Document, opts BuildOptions) (*Index, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	slog.Info("build starting", slog.Int("documents", len(docs)), slog.Int("concurrency", concurrency))

	dict, corpus, err := buildDictionaryParallel(docs, concurrency)
	if err != nil {
		return nil, err
	}

	return assemble(docs, dict, corpus, opts)
}

// BuildViaSPIMI runs the same pipeline as Build, but constructs the
// dictionary with the disk-spilling SPIMI builder instead of the
// in-memory parallel fan-out — for corpora too large to tokenize entirely
// in RAM at once. Every downstream index (matrix, postings, bigram,
// positional, wildcard) is built from the resulting Dictionary exactly as
// in Build; SPIMI only changes how the Dictionary itself is produced.
func BuildViaSPIMI(docs []Document, cfg SPIMIConfig, concurrency int, opts BuildOptions) (*Index, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	slog.Info("spimi build starting", slog.Int("documents", len(docs)), slog.Int("shards", concurrency), slog.Int64("memoryBudgetBytes", cfg.MemoryBudgetBytes))

	dict, err := ParallelSPIMI(docs, concurrency, cfg)
	if err != nil {
		return nil, err
	}

	corpus := NewCorpus()
	for _, doc := range docs {
		corpus.Register(doc.ID)
	}
	corpus.Finalize()

	return assemble(docs, dict, corpus, opts)
}

// assemble builds every downstream index family from an already-built
// Dictionary/Corpus pair and wires them into an Index.
func assemble(docs []Document, dict *Dictionary, corpus *Corpus, opts BuildOptions) (*Index, error) {
	slog.Info("dictionary built", slog.Int("terms", dict.Size()), slog.Int("documents", corpus.Size()))

	compressed := NewCompressedDictionary(dict)
	matrix := NewIncidenceMatrix(dict, corpus)
	postings := NewCompressedInvertedIndex(dict, corpus)
	bigram := NewBigramIndex(docs, corpus, Tokenize)
	positional := NewPositionalIndex(docs, corpus, Tokenize)
	suffixTree := NewSuffixTree(dict)
	permutation := NewPermutationIndex(dict)
	trigram := NewTrigramIndex(dict)
	router := NewRouter(suffixTree, permutation, trigram, postings)
	evaluator := NewEvaluator(matrix, positional, router, opts.UnknownTermPolicy)

	slog.Info("build complete")

	return &Index{
		Dictionary:  dict,
		Compressed:  compressed,
		Corpus:      corpus,
		Matrix:      matrix,
		Postings:    postings,
		Bigram:      bigram,
		Positional:  positional,
		SuffixTree:  suffixTree,
		Permutation: permutation,
		Trigram:     trigram,
		Router:      router,
		Evaluator:   evaluator,
	}, nil
}

// buildDictionaryParallel partitions docs into `concurrency` chunks, tokenizes
// each chunk's documents into a local Dictionary on its own goroutine, and
// merges each local Dictionary into the shared one — one Merge call (one
// critical section) per chunk, never per token.
func buildDictionaryParallel(docs []Document, concurrency int) (*Dictionary, *Corpus, error) {
	chunks := chunkDocuments(docs, concurrency)
	locals := make([]*Dictionary, len(chunks))

	g := new(errgroup.Group)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			local := NewDictionary()
			for _, doc := range chunk {
				if len(doc.Text) == 0 && doc.ID == "" {
					continue // malformed loader record; skip and continue the build
				}
				tokens := Tokenize(doc.Text)
				local.AddDocument(doc.ID, tokens, int64(len(doc.Text)))
			}
			locals[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	dict := NewDictionary()
	for _, local := range locals {
		dict.Merge(local) // one critical section per chunk
	}

	corpus := NewCorpus()
	for _, doc := range docs {
		corpus.Register(doc.ID)
	}
	corpus.Finalize()

	return dict, corpus, nil
}

// chunkDocuments splits docs into n contiguous, roughly-equal chunks.
func chunkDocuments(docs []Document, n int) [][]Document {
	if n < 1 {
		n = 1
	}
	if n > len(docs) {
		n = len(docs)
	}
	if n == 0 {
		return nil
	}

	chunks := make([][]Document, 0, n)
	size := (len(docs) + n - 1) / n
	for i := 0; i < len(docs); i += size {
		end := minInt(i+size, len(docs))
		chunks = append(chunks, docs[i:end])
	}
	return chunks
}
