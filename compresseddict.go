package corpex

import (
	"sort"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// COMPRESSED DICTIONARY: Front-Packed Term Storage
// ═══════════════════════════════════════════════════════════════════════════════
// Storing every term as an independent string wastes space: a sorted term
// list like {compute, computer, computing, compilation} repeats "comp"
// four times. Front packing stores each block's common prefix once and
// every term as just its suffix relative to that prefix.
//
// A term is reconstructed as:
//
//	buffer[prefix_start : prefix_start+prefix_len] ++
//	buffer[suffix_start : suffix_start+suffix_len]
//
// When a term doesn't benefit from sharing a prefix with its neighbors, it
// is stored uncompressed: suffix_len is 0 and the "prefix" span covers the
// whole term.
// ═══════════════════════════════════════════════════════════════════════════════

// maxBlockSize bounds how many lexicographically adjacent terms a single
// front-packed block may group, per spec.
const maxBlockSize = 16

// termSpan is the offset tuple recorded for one term in the compressed
// dictionary: (prefix_start, prefix_len, suffix_start, suffix_len).
type termSpan struct {
	PrefixStart int
	PrefixLen   int
	SuffixStart int
	SuffixLen   int
}

// CompressedDictionary is a sorted term list stored as a single
// concatenated buffer plus a parallel offset table, enabling O(log n)
// containment checks and term reconstruction from the buffer. The sorted
// input term list is kept alongside it.
type CompressedDictionary struct {
	sortedTerms []string // the input term list; Len reports its length
	buffer      []byte
	spans       []termSpan

	OriginalSize   int
	CompressedSize int
}

// NewCompressedDictionary builds a CompressedDictionary from a Dictionary
// by sorting its terms and greedily forming front-packed blocks.
func NewCompressedDictionary(dict *Dictionary) *CompressedDictionary {
	terms := dict.SortedTerms()
	cd := &CompressedDictionary{sortedTerms: terms}

	originalSize := 0
	for _, t := range terms {
		originalSize += len(t)
	}
	cd.OriginalSize = originalSize

	var buf strings.Builder
	spans := make([]termSpan, 0, len(terms))

	i := 0
	for i < len(terms) {
		end, prefixLen, savings := bestBlock(terms, i)

		if savings <= 0 {
			// Emit the single term at i uncompressed.
			term := terms[i]
			start := buf.Len()
			buf.WriteString(term)
			spans = append(spans, termSpan{
				PrefixStart: start,
				PrefixLen:   len(term),
				SuffixStart: 0,
				SuffixLen:   0,
			})
			i++
			continue
		}

		block := terms[i:end]
		prefix := block[0][:prefixLen]
		prefixStart := buf.Len()
		buf.WriteString(prefix)

		for _, term := range block {
			suffix := term[prefixLen:]
			suffixStart := buf.Len()
			buf.WriteString(suffix)
			spans = append(spans, termSpan{
				PrefixStart: prefixStart,
				PrefixLen:   prefixLen,
				SuffixStart: suffixStart,
				SuffixLen:   len(suffix),
			})
		}

		i = end
	}

	cd.buffer = []byte(buf.String())
	cd.spans = spans
	cd.CompressedSize = len(cd.buffer)
	return cd
}

// bestBlock finds, for the block starting at i, the end index and prefix
// length that maximizes byte savings over all candidate ends in
// (i, min(i+maxBlockSize, n)]. Returns savings <= 0 if no grouping helps,
// in which case the caller falls back to an uncompressed single term.
func bestBlock(terms []string, i int) (end int, prefixLen int, savings int) {
	n := len(terms)
	limit := minInt(i+maxBlockSize, n)

	bestEnd := i + 1
	bestPrefix := 0
	bestSavings := 0

	for j := i + 1; j <= limit; j++ {
		block := terms[i:j]
		p := commonPrefixLen(block)

		originalBytes := 0
		for _, t := range block {
			originalBytes += len(t)
		}
		compressedBytes := p
		for _, t := range block {
			compressedBytes += len(t) - p
		}

		s := originalBytes - compressedBytes
		if s > bestSavings {
			bestSavings = s
			bestEnd = j
			bestPrefix = p
		}
	}

	return bestEnd, bestPrefix, bestSavings
}

// commonPrefixLen returns the length of the longest common byte prefix
// shared by every string in terms (terms is non-empty and sorted, so
// comparing the first against the last bounds the shared prefix).
func commonPrefixLen(terms []string) int {
	if len(terms) == 1 {
		return 0
	}
	first := terms[0]
	last := terms[len(terms)-1]

	n := minInt(len(first), len(last))
	i := 0
	for i < n && first[i] == last[i] {
		i++
	}
	return i
}

// Len returns the number of terms in the compressed dictionary.
func (cd *CompressedDictionary) Len() int {
	return len(cd.sortedTerms)
}

// reconstruct rebuilds the term at index i from the buffer and span table.
func (cd *CompressedDictionary) reconstruct(i int) string {
	span := cd.spans[i]
	if span.SuffixStart == 0 && span.SuffixLen == 0 {
		return string(cd.buffer[span.PrefixStart : span.PrefixStart+span.PrefixLen])
	}
	prefix := cd.buffer[span.PrefixStart : span.PrefixStart+span.PrefixLen]
	suffix := cd.buffer[span.SuffixStart : span.SuffixStart+span.SuffixLen]
	return string(prefix) + string(suffix)
}

// Term returns the i-th term in sorted order, or "" and false if i is out
// of range.
func (cd *CompressedDictionary) Term(i int) (string, bool) {
	if i < 0 || i >= len(cd.spans) {
		return "", false
	}
	return cd.reconstruct(i), true
}

// Contains reports whether term exists in the dictionary, via binary
// search over the sorted term list.
func (cd *CompressedDictionary) Contains(term string) bool {
	_, ok := cd.index(term)
	return ok
}

// index finds the position of term via binary search, reconstructing
// candidates only as the search narrows.
func (cd *CompressedDictionary) index(term string) (int, bool) {
	n := len(cd.spans)
	i := sort.Search(n, func(i int) bool {
		return cd.reconstruct(i) >= term
	})
	if i < n && cd.reconstruct(i) == term {
		return i, true
	}
	return i, false
}

// CompressionRatio returns CompressedSize / OriginalSize, or 1.0 if the
// original was empty.
func (cd *CompressedDictionary) CompressionRatio() float64 {
	if cd.OriginalSize == 0 {
		return 1.0
	}
	return float64(cd.CompressedSize) / float64(cd.OriginalSize)
}
