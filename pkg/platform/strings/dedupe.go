// Package strings canonicalizes the small string sets carried by credentials,
// users and movies (roles, genres).
package strings

import (
	"slices"
	"strings"
)

// SortedSet trims, dedupes and sorts values. Two inputs holding the same set of
// values in any order produce identical output, so roles can be signed and
// compared as-is. Returns nil when nothing survives trimming.
func SortedSet(values []string) []string {
	set := collect(values, func(s string) string { return s })
	if len(set) == 0 {
		return nil
	}
	slices.Sort(set)
	return set
}

// FoldedSet dedupes case-insensitively, keeping the first spelling seen,
// and sorts the result case-insensitively.
//
//	FoldedSet([]string{"drama", " Sci-Fi", "Drama"}) // []string{"drama", "Sci-Fi"}
func FoldedSet(values []string) []string {
	set := collect(values, strings.ToLower)
	if len(set) == 0 {
		return nil
	}
	slices.SortStableFunc(set, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return set
}

// collect keeps the first trimmed, non-blank value for each key.
func collect(values []string, key func(string) string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
