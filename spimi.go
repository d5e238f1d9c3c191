package corpex

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SPIMI: Single-Pass In-Memory Indexing
// ═══════════════════════════════════════════════════════════════════════════════
// When a corpus doesn't fit in memory, SPIMI builds partial dictionaries
// until a memory budget is exceeded, spills each partial to a sorted block
// file on disk, and finally k-way merges the blocks into one Dictionary.
//
// Block file format: one line per term, "term:docid1,docid2,...", written
// in sorted term order so the final merge only needs to track each block's
// current head line.
// ═══════════════════════════════════════════════════════════════════════════════

// Document is one (id, text) pair fed to a builder.
type Document struct {
	ID   string
	Text string
}

// SPIMIConfig configures a disk-spilling build.
type SPIMIConfig struct {
	MemoryBudgetBytes int64
	ScratchDir        string
}

// SPIMIBuilder accumulates an in-memory partial index, spilling to disk
// when MemoryBudgetBytes is exceeded.
type SPIMIBuilder struct {
	cfg SPIMIConfig

	partial     map[string]map[string]struct{}
	memoryUsed  int64
	blockPaths  []string
	blockCount  int
	totalBytes  int64
	totalDocs   int
	seenDocsAll map[string]struct{}
}

// NewSPIMIBuilder creates a builder that spills blocks under cfg.ScratchDir.
func NewSPIMIBuilder(cfg SPIMIConfig) (*SPIMIBuilder, error) {
	if err := os.MkdirAll(cfg.ScratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating scratch dir: %v", ErrIndexIO, err)
	}
	return &SPIMIBuilder{
		cfg:         cfg,
		partial:     make(map[string]map[string]struct{}),
		seenDocsAll: make(map[string]struct{}),
	}, nil
}

// estimatedEntrySize is the per-(term,doc) memory estimate used to decide
// when to spill: the term bytes, the document id bytes, and a fixed
// overhead for map bucket/pointer bookkeeping.
func estimatedEntrySize(term, docID string) int64 {
	return int64(len(term) + len(docID) + 32)
}

// AddDocument tokenizes one document and folds its (term, docID) pairs
// into the partial map, spilling to disk whenever the memory budget is
// exceeded.
func (b *SPIMIBuilder) AddDocument(docID, text string) error {
	b.seenDocsAll[docID] = struct{}{}
	b.totalDocs++
	b.totalBytes += int64(len(text))

	for _, term := range Tokenize(text) {
		size := estimatedEntrySize(term, docID)
		if b.memoryUsed+size > b.cfg.MemoryBudgetBytes && len(b.partial) > 0 {
			if err := b.spill(); err != nil {
				return err
			}
		}

		docs, ok := b.partial[term]
		if !ok {
			docs = make(map[string]struct{})
			b.partial[term] = docs
		}
		docs[docID] = struct{}{}
		b.memoryUsed += size
	}
	return nil
}

// spill writes the current partial map to a sorted block file and resets
// in-memory state.
func (b *SPIMIBuilder) spill() error {
	if len(b.partial) == 0 {
		return nil
	}

	path := filepath.Join(b.cfg.ScratchDir, fmt.Sprintf("block_%04d.txt", b.blockCount))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating block file: %v", ErrIndexIO, err)
	}
	defer f.Close()

	terms := make([]string, 0, len(b.partial))
	for t := range b.partial {
		terms = append(terms, t)
	}
	sortStrings(terms)

	w := bufio.NewWriter(f)
	for _, term := range terms {
		docs := make([]string, 0, len(b.partial[term]))
		for d := range b.partial[term] {
			docs = append(docs, d)
		}
		sortStrings(docs)
		fmt.Fprintf(w, "%s:%s\n", term, strings.Join(docs, ","))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing block file: %v", ErrIndexIO, err)
	}

	slog.Info("spimi block flushed", slog.Int("block", b.blockCount), slog.Int("terms", len(terms)))

	b.blockPaths = append(b.blockPaths, path)
	b.blockCount++
	b.partial = make(map[string]map[string]struct{})
	b.memoryUsed = 0
	return nil
}

// Finalize flushes any remaining in-memory block, k-way merges every
// spilled block into a Dictionary, and removes the scratch files.
func (b *SPIMIBuilder) Finalize() (*Dictionary, error) {
	if err := b.spill(); err != nil {
		return nil, err
	}
	defer b.cleanup()

	slog.Info("spimi merging blocks", slog.Int("blocks", len(b.blockPaths)))
	return b.mergeBlocks()
}

func (b *SPIMIBuilder) cleanup() {
	for _, path := range b.blockPaths {
		_ = os.Remove(path) // best-effort; a stray scratch file is not fatal
	}
}

// blockCursor tracks one open block file's current head line during the
// merge.
type blockCursor struct {
	scanner *bufio.Scanner
	file    *os.File
	term    string
	docs    []string
	done    bool
}

func newBlockCursor(path string) (*blockCursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening block file: %v", ErrIndexIO, err)
	}
	c := &blockCursor{file: f, scanner: bufio.NewScanner(f)}
	c.advance()
	return c, nil
}

func (c *blockCursor) advance() {
	if !c.scanner.Scan() {
		c.done = true
		c.term = ""
		c.docs = nil
		return
	}
	line := c.scanner.Text()
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		c.term = line
		c.docs = nil
		return
	}
	c.term = line[:idx]
	rest := line[idx+1:]
	if rest == "" {
		c.docs = nil
	} else {
		c.docs = strings.Split(rest, ",")
	}
}

// mergeBlocks performs the k-way merge: at each step it finds the
// lexicographically smallest head term across all open blocks, unions the
// document lists from every block sharing that term, deduplicates, and
// emits one TermEntry with frequency set to the deduplicated count.
func (b *SPIMIBuilder) mergeBlocks() (*Dictionary, error) {
	cursors := make([]*blockCursor, 0, len(b.blockPaths))
	for _, path := range b.blockPaths {
		c, err := newBlockCursor(path)
		if err != nil {
			for _, open := range cursors {
				open.file.Close()
			}
			return nil, err
		}
		cursors = append(cursors, c)
	}
	defer func() {
		for _, c := range cursors {
			c.file.Close()
		}
	}()

	dict := NewDictionary()
	mergedTerms := 0

	for {
		minTerm := ""
		found := false
		for _, c := range cursors {
			if c.done {
				continue
			}
			if !found || c.term < minTerm {
				minTerm = c.term
				found = true
			}
		}
		if !found {
			break
		}

		docSet := make(map[string]struct{})
		for _, c := range cursors {
			if c.done || c.term != minTerm {
				continue
			}
			for _, d := range c.docs {
				docSet[d] = struct{}{}
			}
			c.advance()
		}

		for docID := range docSet {
			dict.AddTerm(minTerm, docID)
		}
		mergedTerms++
	}

	slog.Info("spimi merge complete", slog.Int("terms", mergedTerms))
	return dict, nil
}

// ParallelSPIMI partitions docs into n independent shards, runs an
// independent SPIMIBuilder per shard concurrently, and merges the n
// resulting Dictionaries term-wise. Each shard gets its own scratch
// subdirectory so concurrent spills never collide.
func ParallelSPIMI(docs []Document, n int, cfg SPIMIConfig) (*Dictionary, error) {
	if n < 1 {
		n = 1
	}
	shards := partitionDocuments(docs, n)

	dicts := make([]*Dictionary, len(shards))
	g := new(errgroup.Group)

	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			shardCfg := cfg
			shardCfg.ScratchDir = filepath.Join(cfg.ScratchDir, fmt.Sprintf("shard-%d", i))

			builder, err := NewSPIMIBuilder(shardCfg)
			if err != nil {
				return err
			}
			for _, d := range shard {
				if err := builder.AddDocument(d.ID, d.Text); err != nil {
					return err
				}
			}
			dict, err := builder.Finalize()
			if err != nil {
				return err
			}
			dicts[i] = dict
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewDictionary()
	for _, d := range dicts {
		merged.Merge(d)
	}
	return merged, nil
}

// partitionDocuments splits docs into n roughly-equal, order-preserving
// shards.
func partitionDocuments(docs []Document, n int) [][]Document {
	shards := make([][]Document, n)
	for i, d := range docs {
		shard := i % n
		shards[shard] = append(shards[shard], d)
	}
	return shards
}

// BuildDictionaryInMemory builds a Dictionary directly from an in-memory
// document stream, with no disk spilling — the counterpart SPIMI
// equivalence (spec S8/invariant 8) is checked against.
func BuildDictionaryInMemory(docs []Document) *Dictionary {
	dict := NewDictionary()
	for _, d := range docs {
		tokens := Tokenize(d.Text)
		dict.AddDocument(d.ID, tokens, int64(len(d.Text)))
	}
	return dict
}
