package corpex

import (
	"reflect"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZE TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestTokenize_Basic(t *testing.T) {
	got := Tokenize("The quick brown fox")
	want := []string{"the", "quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_DropsShortTokens(t *testing.T) {
	got := Tokenize("a an the ox fox")
	want := []string{"the", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_SplitsOnDigitsAndPunctuation(t *testing.T) {
	got := Tokenize("hello,world! iso3166 test")
	want := []string{"hello", "world", "iso", "test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_Cyrillic(t *testing.T) {
	got := Tokenize("привет мир")
	want := []string{"привет", "мир"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZE ALNUM TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestTokenizeAlnum_KeepsDigitsInToken(t *testing.T) {
	got := TokenizeAlnum("covid19 iso3166 test")
	want := []string{"covid19", "iso3166", "test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeAlnum() = %v, want %v", got, want)
	}
}

func TestTokenizeAlnum_StillDropsShort(t *testing.T) {
	got := TokenizeAlnum("a1 b2 covid19")
	want := []string{"covid19"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeAlnum() = %v, want %v", got, want)
	}
}
