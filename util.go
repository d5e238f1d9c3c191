package corpex

import "sort"

// sortStrings sorts a []string in place lexicographically. Centralized so
// every index family sorts the same way (plain byte-wise comparison, no
// locale collation) — callers rely on that for byte-identical rebuilds.
func sortStrings(s []string) {
	sort.Strings(s)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
