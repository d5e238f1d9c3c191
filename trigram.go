package corpex

import "log/slog"

// ═══════════════════════════════════════════════════════════════════════════════
// TRIGRAM INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// Every term T is padded as "$$T" and every 3-character window of the
// padded string is a key mapping back to T ('$' a sentinel absent from any
// term; terms shorter than 3 characters get the single window "$$T$$").
//
// A wildcard pattern is resolved by extracting every 3-character window of
// the pattern that contains no wildcard character ("required trigrams"),
// intersecting their posting sets to get a candidate list, and then
// filtering candidates against the full pattern with the anchored glob
// matcher (false positives from trigram overlap are expected and must be
// filtered here).
//
// When a pattern has NO required trigram (every 3-character window
// straddles a wildcard — e.g. the only window of "a?b" contains the '?', or
// wildcards are too dense), this index falls back to scanning every term in the dictionary
// against the glob matcher rather than returning empty: an absent
// required-trigram set is "no constraint available", not "no match
// possible" (see design notes on the trigram fallback).
// ═══════════════════════════════════════════════════════════════════════════════

const trigramSentinel = "$$"

// GenerateTrigrams returns every 3-byte window of the padded string
// "$$"+term, or a single degenerate window if term is shorter than 3 bytes.
func GenerateTrigrams(term string) []string {
	if len(term) < 3 {
		return []string{trigramSentinel + term + trigramSentinel}
	}

	padded := trigramSentinel + term
	trigrams := make([]string, 0, len(padded)-2)
	for i := 0; i+3 <= len(padded); i++ {
		trigrams = append(trigrams, padded[i:i+3])
	}
	return trigrams
}

// TrigramIndex maps 3-character windows to the set of terms containing them.
type TrigramIndex struct {
	index    map[string]map[string]struct{}
	allTerms []string // full term list, for the no-required-trigram fallback scan
}

// NewTrigramIndex builds a TrigramIndex from every term in dict.
func NewTrigramIndex(dict *Dictionary) *TrigramIndex {
	terms := dict.SortedTerms()
	idx := &TrigramIndex{
		index:    make(map[string]map[string]struct{}),
		allTerms: terms,
	}

	for _, term := range terms {
		for _, tri := range GenerateTrigrams(term) {
			set, ok := idx.index[tri]
			if !ok {
				set = make(map[string]struct{})
				idx.index[tri] = set
			}
			set[term] = struct{}{}
		}
	}

	slog.Info("trigram index built", slog.Int("terms", len(terms)), slog.Int("trigrams", len(idx.index)))
	return idx
}

// FindMatchingTerms resolves a wildcard pattern (or a plain term) to the
// set of dictionary terms matching it.
func (t *TrigramIndex) FindMatchingTerms(pattern string) map[string]struct{} {
	if pattern == "" {
		return map[string]struct{}{}
	}
	if !hasWildcard(pattern) {
		return t.findExactMatch(pattern)
	}

	required := t.extractRequiredTrigrams(pattern)
	var candidates map[string]struct{}

	if len(required) == 0 {
		// No required trigram: scan every term rather than returning empty.
		candidates = make(map[string]struct{}, len(t.allTerms))
		for _, term := range t.allTerms {
			candidates[term] = struct{}{}
		}
	} else {
		for i, tri := range required {
			set, ok := t.index[tri]
			if !ok {
				return map[string]struct{}{}
			}
			if i == 0 {
				candidates = cloneSet(set)
				continue
			}
			candidates = intersectSets(candidates, set)
		}
	}

	results := make(map[string]struct{})
	for term := range candidates {
		if MatchGlob(term, pattern) {
			results[term] = struct{}{}
		}
	}
	return results
}

func (t *TrigramIndex) findExactMatch(pattern string) map[string]struct{} {
	trigrams := GenerateTrigrams(pattern)
	var candidates map[string]struct{}

	for i, tri := range trigrams {
		set, ok := t.index[tri]
		if !ok {
			return map[string]struct{}{}
		}
		if i == 0 {
			candidates = cloneSet(set)
			continue
		}
		candidates = intersectSets(candidates, set)
	}

	results := make(map[string]struct{})
	if _, ok := candidates[pattern]; ok {
		results[pattern] = struct{}{}
	}
	return results
}

// extractRequiredTrigrams returns every 3-character window of pattern that
// contains no wildcard character.
func (t *TrigramIndex) extractRequiredTrigrams(pattern string) []string {
	var trigrams []string
	for i := 0; i+3 <= len(pattern); i++ {
		window := pattern[i : i+3]
		if !hasWildcard(window) {
			trigrams = append(trigrams, window)
		}
	}
	return trigrams
}

func hasWildcard(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '*' || s[i] == '?' {
			return true
		}
	}
	return false
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func intersectSets(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}
