package corpex

import (
	"log/slog"
	"sort"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// PERMUTATION (ROTATION) INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// For every term T, every cyclic rotation of "T$" ('$' an end-of-word
// sentinel that can't occur in a term) is stored as a key mapping back to T.
// A single-wildcard pattern can always be rewritten into a PREFIX search
// over rotations:
//
//	X*   → rotate to "$X"   → rotations starting with "$X"
//	*X   → rotate to "X$"   → rotations starting with "X$"
//	X*Y  → rotate to "Y$X"  → rotations starting with "Y$X"
//	(no star) → "P$" → rotations starting with "P$"
//
// Rotations are kept sorted so every one of these becomes a binary-search
// range lookup rather than a full scan.
//
// Multi-star patterns (a*b*c) have no single rotation that captures them —
// see Open Question #2: this index returns ErrWildcardUnsupported for them
// rather than silently returning an empty result. The router answers such
// patterns with the suffix tree (Medium) or the trigram index (Complex)
// instead, and falls back to the suffix tree when this index rejects a
// Simple pattern.
// ═══════════════════════════════════════════════════════════════════════════════

const rotationSentinel = '$'

type rotationEntry struct {
	rotation string
	term     string
}

// PermutationIndex answers single-wildcard patterns via sorted rotation
// prefix search.
type PermutationIndex struct {
	entries []rotationEntry // sorted by rotation
}

// GenerateRotations returns every cyclic rotation of term+"$".
func GenerateRotations(term string) []string {
	marked := term + string(rotationSentinel)
	rotations := make([]string, 0, len(marked))
	for i := range marked {
		rotations = append(rotations, marked[i:]+marked[:i])
	}
	return rotations
}

// NewPermutationIndex builds a PermutationIndex from every term in dict.
func NewPermutationIndex(dict *Dictionary) *PermutationIndex {
	terms := dict.SortedTerms()
	entries := make([]rotationEntry, 0, len(terms)*4)

	for _, term := range terms {
		for _, rot := range GenerateRotations(term) {
			entries = append(entries, rotationEntry{rotation: rot, term: term})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rotation < entries[j].rotation })

	slog.Info("permutation index built", slog.Int("terms", len(terms)), slog.Int("rotations", len(entries)))
	return &PermutationIndex{entries: entries}
}

// FindMatchingTerms resolves a wildcard pattern containing at most one '*'
// and no '?' to the set of matching terms, via a single rotation-prefix
// lookup. Patterns with two or more '*', or any '?', return
// ErrWildcardUnsupported: rotations only encode exact runs of characters
// around a single gap, so a '?' (which matches exactly one arbitrary
// character rather than a literal run) has no prefix to search for here —
// the router should try the suffix tree instead.
func (p *PermutationIndex) FindMatchingTerms(pattern string) (map[string]struct{}, error) {
	if pattern == "" {
		return map[string]struct{}{}, nil
	}

	if strings.ContainsRune(pattern, '?') {
		return nil, ErrWildcardUnsupported
	}

	stars := strings.Count(pattern, "*")
	if stars > 1 {
		return nil, ErrWildcardUnsupported
	}

	var prefix string
	switch {
	case stars == 0:
		prefix = pattern + string(rotationSentinel)
	case strings.HasSuffix(pattern, "*"):
		prefix = string(rotationSentinel) + pattern[:len(pattern)-1]
	case strings.HasPrefix(pattern, "*"):
		prefix = pattern[1:] + string(rotationSentinel)
	default:
		parts := strings.SplitN(pattern, "*", 2)
		x, y := parts[0], parts[1]
		prefix = y + string(rotationSentinel) + x
	}

	return p.prefixMatch(prefix), nil
}

// prefixMatch returns every term whose rotation set has a member starting
// with prefix, found via binary search over the sorted rotation list.
func (p *PermutationIndex) prefixMatch(prefix string) map[string]struct{} {
	results := make(map[string]struct{})

	lo := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].rotation >= prefix
	})

	for i := lo; i < len(p.entries) && strings.HasPrefix(p.entries[i].rotation, prefix); i++ {
		results[p.entries[i].term] = struct{}{}
	}

	return results
}
