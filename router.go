package corpex

import (
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ═══════════════════════════════════════════════════════════════════════════════
// WILDCARD ROUTER
// ═══════════════════════════════════════════════════════════════════════════════
// Three structures answer wildcard patterns with different strengths: the
// permutation index is fastest for single-wildcard patterns (one rotation
// prefix lookup); the suffix tree handles any pattern shape but costs more
// memory; the trigram index is the fallback for multi-wildcard patterns the
// permutation index can't rewrite to a single rotation.
//
// Router.Resolve classifies the pattern by total wildcard count w ('*' and
// '?' combined, see Classify) and picks a strategy:
//   - Simple (w <= 1, e.g. "prefix*" or "h?lp"): permutation index, falling
//     back to the suffix tree if the permutation index reports
//     ErrWildcardUnsupported (it can rewrite a single '*' to one rotation
//     prefix lookup, but not a '?').
//   - Medium (w == 2 and w/len(pattern) < 0.5): suffix ∩ permutation,
//     further narrowed by the trigram index.
//   - Complex (everything else): trigram index (the permutation index
//     cannot rewrite a*b*c to one rotation prefix — see Open Question #2).
//
// Once the matching term set is known, looking up each term's posting list
// is dispatched across goroutines via errgroup when there are more than
// ~100 candidate terms; below that threshold the per-goroutine overhead
// isn't worth it and lookups run sequentially.
// ═══════════════════════════════════════════════════════════════════════════════

const parallelDispatchThreshold = 100

// Router resolves a wildcard term pattern to the union of document ids
// across every matching term.
type Router struct {
	suffixTree  *SuffixTree
	permutation *PermutationIndex
	trigram     *TrigramIndex
	postings    *CompressedInvertedIndex
}

// NewRouter assembles a Router from the three wildcard-capable indices plus
// the compressed inverted index used to resolve each matching term to
// documents.
func NewRouter(suffixTree *SuffixTree, permutation *PermutationIndex, trigram *TrigramIndex, postings *CompressedInvertedIndex) *Router {
	return &Router{
		suffixTree:  suffixTree,
		permutation: permutation,
		trigram:     trigram,
		postings:    postings,
	}
}

// MatchingTerms resolves pattern to the set of dictionary terms it matches,
// picking the cheapest capable index for the pattern's complexity class.
func (r *Router) MatchingTerms(pattern string) (map[string]struct{}, error) {
	switch Classify(pattern) {
	case WildcardSimple:
		terms, err := r.permutation.FindMatchingTerms(pattern)
		if err == nil {
			return terms, nil
		}
		if err != ErrWildcardUnsupported {
			return nil, err
		}
		return r.suffixTree.FindMatchingTerms(pattern), nil

	case WildcardMedium:
		return r.mediumMatch(pattern)

	default: // WildcardComplex
		return r.trigram.FindMatchingTerms(pattern), nil
	}
}

// mediumMatch implements the Medium class: intersect the suffix tree and
// permutation-index candidate sets (falling back to the suffix tree alone
// if the permutation index can't rewrite the pattern to one rotation
// lookup), then further intersect with the trigram index's candidates
// whenever that further intersection is non-empty — if it would empty the
// result, the suffix∩permutation set is kept instead.
func (r *Router) mediumMatch(pattern string) (map[string]struct{}, error) {
	suffixSet := r.suffixTree.FindMatchingTerms(pattern)

	permSet, err := r.permutation.FindMatchingTerms(pattern)
	if err != nil && err != ErrWildcardUnsupported {
		return nil, err
	}

	base := suffixSet
	if err == nil {
		base = intersectSets(suffixSet, permSet)
	}

	trigramSet := r.trigram.FindMatchingTerms(pattern)
	if len(trigramSet) > 0 {
		if narrowed := intersectSets(base, trigramSet); len(narrowed) > 0 {
			return narrowed, nil
		}
	}

	return base, nil
}

// Resolve resolves a wildcard pattern all the way to a sorted, deduplicated
// document-id list: matching terms, then each term's posting list, unioned.
func (r *Router) Resolve(pattern string) ([]uint32, error) {
	terms, err := r.MatchingTerms(pattern)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, nil
	}

	termList := make([]string, 0, len(terms))
	for t := range terms {
		termList = append(termList, t)
	}

	var postingLists [][]uint32
	if len(termList) > parallelDispatchThreshold {
		postingLists, err = r.lookupParallel(termList)
	} else {
		postingLists, err = r.lookupSequential(termList)
	}
	if err != nil {
		return nil, err
	}

	result := postingLists[0]
	for _, ids := range postingLists[1:] {
		result = Union(result, ids)
	}

	slog.Info("wildcard resolved", slog.Int("matchingTerms", len(termList)), slog.Int("documents", len(result)))
	return result, nil
}

func (r *Router) lookupSequential(terms []string) ([][]uint32, error) {
	out := make([][]uint32, 0, len(terms))
	for _, term := range terms {
		ids, err := r.postings.Postings(term)
		if err != nil {
			continue // a matching term with no posting list contributes nothing
		}
		out = append(out, ids)
	}
	if len(out) == 0 {
		out = append(out, nil)
	}
	return out, nil
}

func (r *Router) lookupParallel(terms []string) ([][]uint32, error) {
	results := make([][]uint32, len(terms))
	g := new(errgroup.Group)

	for i, term := range terms {
		i, term := i, term
		g.Go(func() error {
			ids, err := r.postings.Postings(term)
			if err != nil {
				return nil // absent posting list, not a hard error
			}
			results[i] = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([][]uint32, 0, len(results))
	for _, ids := range results {
		if ids != nil {
			out = append(out, ids)
		}
	}
	if len(out) == 0 {
		out = append(out, nil)
	}
	return out, nil
}
