package corpex

import (
	"bytes"
	"fmt"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// COMPRESSED INVERTED INDEX: Delta + Variable-Byte Posting Lists
// ═══════════════════════════════════════════════════════════════════════════════
// A sorted document-id list compresses well because consecutive ids tend to
// be close together: storing gaps (deltas) between consecutive ids instead
// of the ids themselves keeps most numbers small, and small numbers fit in
// one variable-byte (VByte) group instead of four raw bytes.
//
// VByte group layout: the low 7 bits of each group are payload; the 8th bit
// is a terminator, set only on the LAST group of a value (groups are
// emitted least-significant first). A decoder reads groups, accumulating
// 7 bits of value per group, and stops at the first group with the
// terminator bit set.
//
// Worked example: deltas [3, 5, 1, 251] encode to
// [0x83, 0x85, 0x81, 0x7B, 0x81] — the first three deltas fit in a single
// terminated group each (3|0x80, 5|0x80, 1|0x80); 251 needs two groups,
// low byte 0x7B (no terminator) then high byte 0x81 (terminator, value 1).
// ═══════════════════════════════════════════════════════════════════════════════

// EncodeVByte appends the variable-byte encoding of n to dst and returns the
// extended slice.
func EncodeVByte(dst []byte, n uint32) []byte {
	for {
		chunk := byte(n & 0x7F)
		n >>= 7
		if n == 0 {
			return append(dst, chunk|0x80)
		}
		dst = append(dst, chunk)
	}
}

// DecodeVByte reads one variable-byte encoded value starting at buf[0] and
// returns the value plus the number of bytes consumed.
func DecodeVByte(buf []byte) (uint32, int) {
	var value uint32
	var shift uint
	for i, b := range buf {
		value |= uint32(b&0x7F) << shift
		if b&0x80 != 0 {
			return value, i + 1
		}
		shift += 7
	}
	return value, len(buf) // malformed: ran off the end without a terminator
}

// EncodePostingList delta-encodes a sorted, deduplicated document-id list
// and variable-byte encodes the resulting gaps. The first id is encoded as
// a gap from 0.
func EncodePostingList(ids []uint32) []byte {
	buf := make([]byte, 0, len(ids)*2)
	var prev uint32
	for _, id := range ids {
		gap := id - prev
		buf = EncodeVByte(buf, gap)
		prev = id
	}
	return buf
}

// DecodePostingList inverts EncodePostingList: it strips the VByte
// terminator bits, reconstructs each gap, and prefix-sums them back into
// absolute document ids.
func DecodePostingList(buf []byte) []uint32 {
	ids := make([]uint32, 0)
	var cur uint32
	for len(buf) > 0 {
		gap, n := DecodeVByte(buf)
		cur += gap
		ids = append(ids, cur)
		buf = buf[n:]
	}
	return ids
}

// CompressedInvertedIndex stores one delta+VByte encoded posting list per
// term, keyed by the same document ids the IncidenceMatrix and Corpus use.
type CompressedInvertedIndex struct {
	postings map[string][]byte
	corpus   *Corpus
}

// NewCompressedInvertedIndex builds a CompressedInvertedIndex from a
// Dictionary, resolving document names to dense ids via corpus.
func NewCompressedInvertedIndex(dict *Dictionary, corpus *Corpus) *CompressedInvertedIndex {
	idx := &CompressedInvertedIndex{
		postings: make(map[string][]byte, dict.Size()),
		corpus:   corpus,
	}

	for term, entry := range dict.Terms {
		ids := make([]uint32, 0, len(entry.Documents))
		for docName := range entry.Documents {
			if id, ok := corpus.ID(docName); ok {
				ids = append(ids, id)
			}
		}
		sortUint32(ids)
		ids = dedupUint32(ids)
		idx.postings[term] = EncodePostingList(ids)
	}

	return idx
}

// Postings returns the decoded, sorted document-id list for term.
func (idx *CompressedInvertedIndex) Postings(term string) ([]uint32, error) {
	buf, ok := idx.postings[term]
	if !ok {
		return nil, &TermNotFound{Term: term}
	}
	return DecodePostingList(buf), nil
}

// RawPostings returns the encoded byte blob for term, for serialization.
func (idx *CompressedInvertedIndex) RawPostings(term string) ([]byte, bool) {
	buf, ok := idx.postings[term]
	return buf, ok
}

// Terms returns every term with a posting list, in no particular order.
func (idx *CompressedInvertedIndex) Terms() []string {
	terms := make([]string, 0, len(idx.postings))
	for t := range idx.postings {
		terms = append(terms, t)
	}
	return terms
}

// Intersect computes the sorted intersection of two already-sorted,
// deduplicated document-id lists (term AND term over raw id lists, the
// plain-set-algebra counterpart to IncidenceMatrix.And).
func Intersect(a, b []uint32) []uint32 {
	out := make([]uint32, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Union computes the sorted union of two already-sorted, deduplicated
// document-id lists.
func Union(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Difference computes a with every id present in b removed (a AND NOT b).
func Difference(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a))
	i, j := 0, 0
	for i < len(a) {
		if j >= len(b) || a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else if a[i] == b[j] {
			i++
			j++
		} else {
			j++
		}
	}
	return out
}

func sortUint32(s []uint32) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

// dedupUint32 removes adjacent duplicates from a sorted slice in place.
func dedupUint32(s []uint32) []uint32 {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// formatBytesHex renders an encoded posting list the way spec examples and
// tests compare it: a compact "0x.. 0x.." trace, used in diagnostics.
func formatBytesHex(buf []byte) string {
	var b bytes.Buffer
	for i, v := range buf {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "0x%02X", v)
	}
	return b.String()
}
