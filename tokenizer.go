package corpex

import (
	"strings"
	"unicode"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZATION
// ═══════════════════════════════════════════════════════════════════════════════
// A token is a maximal run of Latin or Cyrillic letters, lowercased, kept
// only when its length is at least 3. Token order within a document is
// preserved and defines Position offsets for every downstream index.
//
// There is no stopword removal and no stemming: this engine indexes exact
// lowercased word forms only. A search for "running" will not match
// "run" — that tradeoff is deliberate (see spec Non-goals).
// ═══════════════════════════════════════════════════════════════════════════════

// MinTermLength is the shortest token kept by Tokenize/TokenizeAlnum.
const MinTermLength = 3

// Tokenize extracts lowercased word tokens from document text.
//
// A token is a maximal run of letters in the Latin or Cyrillic Unicode
// blocks; runs containing digits or punctuation are split there. Tokens
// shorter than MinTermLength runes are dropped.
func Tokenize(text string) []string {
	return tokenizeFunc(text, isIndexableLetter)
}

// TokenizeAlnum is the alphanumeric variant used for tabular/columnar
// input, where identifiers and codes often mix letters and digits
// ("covid19", "iso3166"). Digits are accepted as part of a token in
// addition to letters.
func TokenizeAlnum(text string) []string {
	return tokenizeFunc(text, func(r rune) bool {
		return isIndexableLetter(r) || unicode.IsDigit(r)
	})
}

func tokenizeFunc(text string, keep func(rune) bool) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return !keep(r)
	})

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		lower := strings.ToLower(tok)
		if len([]rune(lower)) < MinTermLength {
			continue
		}
		tokens = append(tokens, lower)
	}
	return tokens
}

// isIndexableLetter restricts token characters to Latin and Cyrillic
// letters, the two alphabets the reference corpora (English and Russian
// book collections) are written in.
func isIndexableLetter(r rune) bool {
	return unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Cyrillic, r)
}
