package corpex

import "log/slog"

// ═══════════════════════════════════════════════════════════════════════════════
// SUFFIX TREE
// ═══════════════════════════════════════════════════════════════════════════════
// Every suffix of every dictionary term is inserted into a shared trie, with
// each node remembering the set of original terms that pass through it.
// A wildcard pattern is then matched by walking the trie character by
// character: '*' branches into "consume more of this subtree" and "try the
// rest of the pattern starting here", '?' matches exactly one character by
// fanning out over every child, and a literal character follows its single
// matching child if present.
//
// The trie walk matches the pattern anywhere inside a term, so its result is
// then filtered with the anchored glob matcher (MatchGlob). Because every
// suffix (not just every prefix) is indexed, this structure answers
// "*suffix", "prefix*", and "pre*fix"-shaped patterns uniformly — the
// wildcard router uses it for Medium patterns and for Simple patterns the
// permutation index cannot rewrite (a single '?').
// ═══════════════════════════════════════════════════════════════════════════════

type suffixNode struct {
	children map[byte]*suffixNode
	terms    map[string]struct{}
}

func newSuffixNode() *suffixNode {
	return &suffixNode{children: make(map[byte]*suffixNode)}
}

// SuffixTree indexes every suffix of every term in a Dictionary.
type SuffixTree struct {
	root *suffixNode
}

// NewSuffixTree builds a SuffixTree from every term in dict.
func NewSuffixTree(dict *Dictionary) *SuffixTree {
	tree := &SuffixTree{root: newSuffixNode()}
	terms := dict.SortedTerms()

	for _, term := range terms {
		tree.addTerm(term)
	}

	slog.Info("suffix tree built", slog.Int("terms", len(terms)))
	return tree
}

func (t *SuffixTree) addTerm(term string) {
	for start := 0; start < len(term); start++ {
		t.insertSuffix(term[start:], term)
	}
}

func (t *SuffixTree) insertSuffix(suffix, originalTerm string) {
	current := t.root
	for i := 0; i < len(suffix); i++ {
		ch := suffix[i]
		child, ok := current.children[ch]
		if !ok {
			child = newSuffixNode()
			current.children[ch] = child
		}
		if child.terms == nil {
			child.terms = make(map[string]struct{})
		}
		child.terms[originalTerm] = struct{}{}
		current = child
	}
}

// FindMatchingTerms returns every dictionary term matching pattern, where
// '*' matches any run of characters (including empty) and '?' matches
// exactly one character.
func (t *SuffixTree) FindMatchingTerms(pattern string) map[string]struct{} {
	results := make(map[string]struct{})
	if pattern == "" {
		return results
	}
	t.findWithWildcards(t.root, pattern, results)
	for term := range results {
		if !MatchGlob(term, pattern) {
			delete(results, term)
		}
	}
	return results
}

func (t *SuffixTree) findWithWildcards(node *suffixNode, pattern string, results map[string]struct{}) {
	if pattern == "" {
		for term := range node.terms {
			results[term] = struct{}{}
		}
		return
	}

	first := pattern[0]
	remaining := pattern[1:]

	switch first {
	case '*':
		for term := range node.terms {
			results[term] = struct{}{}
		}
		for _, child := range node.children {
			t.findWithWildcards(child, pattern, results)
			t.findWithWildcards(child, remaining, results)
		}
	case '?':
		for _, child := range node.children {
			t.findWithWildcards(child, remaining, results)
		}
	default:
		if child, ok := node.children[first]; ok {
			t.findWithWildcards(child, remaining, results)
		}
	}
}
