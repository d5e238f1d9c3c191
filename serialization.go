package corpex

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PERSISTENCE
// ═══════════════════════════════════════════════════════════════════════════════
// One corpus prefix, five index-family suffixes (_matrix.bin, _index.bin,
// _bigram.bin, _coordinate.bin, _wildcard.bin) plus the dictionary in three
// forms (.bin, .json, .txt). Roaring bitmaps serialize through their own
// WriteTo/ReadFrom wire format; everything else is framed with encoding/gob,
// matching the teacher's preference for stdlib binary codecs over a
// bespoke format, since gob already round-trips arbitrary exported struct
// graphs without a schema file to keep in sync.
//
// Every format here guarantees only round-trip identity, per spec — the
// byte layout itself is not a public contract.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	suffixMatrix     = "_matrix.bin"
	suffixPostings   = "_index.bin"
	suffixBigram     = "_bigram.bin"
	suffixCoordinate = "_coordinate.bin"
	suffixWildcard   = "_wildcard.bin"
	suffixDictBin    = ".bin"
	suffixDictJSON   = ".json"
	suffixDictTxt    = ".txt"
)

// SaveAll writes every index file under prefix, using the spec's suffix
// convention, including all three dictionary dump formats.
func SaveAll(idx *Index, prefix string) error {
	return SaveSelected(idx, prefix, []string{"binary", "json", "text"})
}

// SaveSelected writes the five index-family binaries (always required —
// LoadIndex can't reconstruct an Index without them) plus the dictionary
// dump formats named in formats ("binary", "json", "text"; any subset, in
// any order). This is what the build/parquet-build subcommands' --formats
// flag controls: the searchable index itself is never optional, only the
// human-readable/interchange dictionary dumps are.
func SaveSelected(idx *Index, prefix string, formats []string) error {
	writers := []struct {
		suffix string
		write  func(string) error
	}{
		{suffixMatrix, func(p string) error { return saveMatrix(idx.Matrix, p) }},
		{suffixPostings, func(p string) error { return savePostings(idx.Postings, p) }},
		{suffixBigram, func(p string) error { return saveBigram(idx.Bigram, p) }},
		{suffixCoordinate, func(p string) error { return saveCoordinate(idx.Positional, p) }},
		{suffixWildcard, func(p string) error { return saveWildcard(idx.SuffixTree, idx.Permutation, idx.Trigram, p) }},
	}

	wantFormat := make(map[string]bool, len(formats))
	for _, f := range formats {
		wantFormat[strings.ToLower(strings.TrimSpace(f))] = true
	}
	if wantFormat["binary"] {
		writers = append(writers, struct {
			suffix string
			write  func(string) error
		}{suffixDictBin, func(p string) error { return saveDictionaryBin(idx.Dictionary, idx.Corpus, p) }})
	}
	if wantFormat["json"] {
		writers = append(writers, struct {
			suffix string
			write  func(string) error
		}{suffixDictJSON, func(p string) error { return saveDictionaryJSON(idx.Dictionary, p) }})
	}
	if wantFormat["text"] {
		writers = append(writers, struct {
			suffix string
			write  func(string) error
		}{suffixDictTxt, func(p string) error { return saveDictionaryTxt(idx.Dictionary, p) }})
	}

	// LoadIndex requires the dictionary .bin regardless of the requested
	// formats; the core's round-trip guarantee doesn't depend on what a
	// human asked to see.
	if !wantFormat["binary"] {
		writers = append(writers, struct {
			suffix string
			write  func(string) error
		}{suffixDictBin, func(p string) error { return saveDictionaryBin(idx.Dictionary, idx.Corpus, p) }})
	}

	for _, w := range writers {
		if err := w.write(prefix + w.suffix); err != nil {
			return fmt.Errorf("%w: writing %s: %v", ErrIndexIO, prefix+w.suffix, err)
		}
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}
	return f, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}
	return f, nil
}

// ─── incidence matrix ───────────────────────────────────────────────────────

type matrixEnvelope struct {
	Terms []string // row order; each row's bitmap follows in the same order
}

func saveMatrix(m *IncidenceMatrix, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	terms := make([]string, 0, len(m.rows))
	for t := range m.rows {
		terms = append(terms, t)
	}
	sortStrings(terms)

	enc := gob.NewEncoder(w)
	if err := enc.Encode(matrixEnvelope{Terms: terms}); err != nil {
		return err
	}
	for _, t := range terms {
		if _, err := m.rows[t].WriteTo(w); err != nil {
			return err
		}
	}

	universeBuf, err := m.universe.ToBytes()
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(universeBuf); err != nil {
		return err
	}

	return w.Flush()
}

func loadMatrix(path string, corpus *Corpus) (*IncidenceMatrix, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var env matrixEnvelope
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}

	m := &IncidenceMatrix{rows: make(map[string]*roaring.Bitmap, len(env.Terms)), corpus: corpus}
	for _, t := range env.Terms {
		bm := roaring.New()
		if _, err := bm.ReadFrom(r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
		}
		m.rows[t] = bm
	}

	var universeBuf []byte
	if err := gob.NewDecoder(r).Decode(&universeBuf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}
	universe := roaring.New()
	if err := universe.UnmarshalBinary(universeBuf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}
	m.universe = universe

	return m, nil
}

// ─── compressed inverted index ──────────────────────────────────────────────

func savePostings(idx *CompressedInvertedIndex, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(idx.postings); err != nil {
		return err
	}
	return w.Flush()
}

func loadPostings(path string, corpus *Corpus) (*CompressedInvertedIndex, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	postings := make(map[string][]byte)
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&postings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}
	return &CompressedInvertedIndex{postings: postings, corpus: corpus}, nil
}

// ─── bigram index ───────────────────────────────────────────────────────────

func saveBigram(b *BigramIndex, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	keys := make([]string, 0, len(b.bitmaps))
	for k := range b.bitmaps {
		keys = append(keys, k)
	}
	sortStrings(keys)

	if err := gob.NewEncoder(w).Encode(keys); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := b.bitmaps[k].WriteTo(w); err != nil {
			return err
		}
	}
	return w.Flush()
}

func loadBigram(path string, corpus *Corpus) (*BigramIndex, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var keys []string
	if err := gob.NewDecoder(r).Decode(&keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}

	b := &BigramIndex{bitmaps: make(map[string]*roaring.Bitmap, len(keys)), corpus: corpus}
	for _, k := range keys {
		bm := roaring.New()
		if _, err := bm.ReadFrom(r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
		}
		b.bitmaps[k] = bm
	}
	return b, nil
}

// ─── positional (coordinate) index ──────────────────────────────────────────
//
// Skip lists aren't directly gob-friendly (pointer towers), so positions are
// flattened to a sorted (docID, offset) pair list per term and rebuilt via
// ordinary Insert calls on load.

type positionRecord struct {
	DocumentID uint32
	Offset     uint32
}

func saveCoordinate(p *PositionalIndex, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	envelope := make(map[string][]positionRecord, len(p.postings))
	for term, sl := range p.postings {
		var records []positionRecord
		for n := sl.Head.Tower[0]; n != nil; n = n.Tower[0] {
			records = append(records, positionRecord{
				DocumentID: uint32(n.Key.DocumentID),
				Offset:     uint32(n.Key.Offset),
			})
		}
		envelope[term] = records
	}

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(envelope); err != nil {
		return err
	}
	return w.Flush()
}

func loadCoordinate(path string, corpus *Corpus) (*PositionalIndex, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	envelope := make(map[string][]positionRecord)
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}

	idx := &PositionalIndex{postings: make(map[string]*SkipList, len(envelope)), corpus: corpus}
	for term, records := range envelope {
		sl := NewSkipList()
		for _, r := range records {
			sl.Insert(Position{DocumentID: int64(r.DocumentID), Offset: int64(r.Offset)})
		}
		idx.postings[term] = sl
	}
	return idx, nil
}

// ─── wildcard bundle (suffix tree + permutation + trigram) ──────────────────
//
// All three are rebuilt from the dictionary's term list rather than
// serializing the trie/rotation/trigram structures node-by-node: the build
// cost is linear in term count and this keeps the wildcard file small and
// the three structures always mutually consistent.

type wildcardEnvelope struct {
	Terms []string
}

func saveWildcard(_ *SuffixTree, _ *PermutationIndex, trigram *TrigramIndex, path string) error {
	// Terms are recoverable from the dictionary file; this envelope exists
	// so the file suffix contract (_wildcard.bin) is satisfiable standalone.
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(wildcardEnvelope{Terms: trigram.allTerms}); err != nil {
		return err
	}
	return w.Flush()
}

// LoadIndex reconstructs a full Index from the matrix, postings, bigram and
// coordinate files plus the dictionary .bin file previously written by
// SaveAll. The suffix tree, permutation and trigram indexes are rebuilt
// from the dictionary; _wildcard.bin is not read.
func LoadIndex(prefix string, policy UnknownTermPolicy) (*Index, error) {
	dict, corpus, err := loadDictionaryBin(prefix + suffixDictBin)
	if err != nil {
		return nil, err
	}

	matrix, err := loadMatrix(prefix+suffixMatrix, corpus)
	if err != nil {
		return nil, err
	}
	postings, err := loadPostings(prefix+suffixPostings, corpus)
	if err != nil {
		return nil, err
	}
	bigram, err := loadBigram(prefix+suffixBigram, corpus)
	if err != nil {
		return nil, err
	}
	positional, err := loadCoordinate(prefix+suffixCoordinate, corpus)
	if err != nil {
		return nil, err
	}

	compressed := NewCompressedDictionary(dict)
	suffixTree := NewSuffixTree(dict)
	permutation := NewPermutationIndex(dict)
	trigram := NewTrigramIndex(dict)
	router := NewRouter(suffixTree, permutation, trigram, postings)
	evaluator := NewEvaluator(matrix, positional, router, policy)

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

// ─── dictionary ──────────────────────────────────────────────────────────────

type dictionaryEnvelope struct {
	Terms               map[string]dictTermEnvelope
	TotalWords          int64
	TotalDocuments      int
	CollectionSizeBytes int64
	DocumentNames       []string
}

type dictTermEnvelope struct {
	Frequency int
	Documents []string
}

func saveDictionaryBin(dict *Dictionary, corpus *Corpus, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	env := dictionaryEnvelope{
		Terms:               make(map[string]dictTermEnvelope, dict.Size()),
		TotalWords:          dict.TotalWords,
		TotalDocuments:      dict.TotalDocuments,
		CollectionSizeBytes: dict.CollectionSizeBytes,
		DocumentNames:       corpus.Names(),
	}
	for term, entry := range dict.Terms {
		env.Terms[term] = dictTermEnvelope{Frequency: entry.Frequency, Documents: entry.DocumentIDs()}
	}

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(env); err != nil {
		return err
	}
	return w.Flush()
}

func loadDictionaryBin(path string) (*Dictionary, *Corpus, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var env dictionaryEnvelope
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrIndexIO, err)
	}

	dict := NewDictionary()
	dict.TotalWords = env.TotalWords
	dict.TotalDocuments = env.TotalDocuments
	dict.CollectionSizeBytes = env.CollectionSizeBytes
	for term, te := range env.Terms {
		entry := newTermEntry()
		entry.Frequency = te.Frequency
		for _, doc := range te.Documents {
			entry.Documents[doc] = struct{}{}
		}
		dict.Terms[term] = entry
	}
	for _, name := range env.DocumentNames {
		dict.seenDocs[name] = struct{}{}
	}

	corpus := NewCorpus()
	for _, name := range env.DocumentNames {
		corpus.Register(name)
	}
	corpus.Finalize()

	return dict, corpus, nil
}

func saveDictionaryJSON(dict *Dictionary, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	type termJSON struct {
		Term      string   `json:"term"`
		Frequency int      `json:"frequency"`
		Documents []string `json:"documents"`
	}
	type dictJSON struct {
		TotalWords          int64      `json:"total_words"`
		TotalDocuments      int        `json:"total_documents"`
		CollectionSizeBytes int64      `json:"collection_size_bytes"`
		Terms               []termJSON `json:"terms"`
	}

	terms := dict.SortedTerms()
	out := dictJSON{
		TotalWords:          dict.TotalWords,
		TotalDocuments:      dict.TotalDocuments,
		CollectionSizeBytes: dict.CollectionSizeBytes,
		Terms:               make([]termJSON, 0, len(terms)),
	}
	for _, t := range terms {
		entry := dict.Terms[t]
		out.Terms = append(out.Terms, termJSON{Term: t, Frequency: entry.Frequency, Documents: entry.DocumentIDs()})
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func saveDictionaryTxt(dict *Dictionary, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	for _, t := range dict.SortedTerms() {
		entry := dict.Terms[t]
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\n", t, entry.Frequency, len(entry.Documents)); err != nil {
			return err
		}
	}
	return w.Flush()
}
