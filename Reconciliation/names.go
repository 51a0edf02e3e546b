package Reconciliation

import (
	"strings"
)

// Normalize trims, collapses internal whitespace and lowercases a free-text
// person name so that the same person keys identically across feeds.
func Normalize(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// Variants generates the comparable token-order variants of a name. The
// upstream feeds disagree on "First Last" vs "Last First" data entry, so the
// generator covers reorderings only; it is intentionally not an edit-distance
// matcher. Two names belong to the same person when their variant sets
// intersect.
//
// For "john paul smith" the set is:
//
//	john paul smith   (as entered)
//	smith paul john   (full reversal)
//	john smith paul   (first token + reversed remainder)
func Variants(raw string) []string {
	base := Normalize(raw)
	if base == "" {
		return nil
	}
	tokens := strings.Fields(base)

	seen := map[string]bool{}
	out := []string{}
	add := func(parts []string) {
		v := strings.Join(parts, " ")
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(tokens)
	add(reversed(tokens))

	if len(tokens) >= 3 {
		// first token + reversed remainder
		add(append([]string{tokens[0]}, reversed(tokens[1:])...))
		// last token + reversed everything-but-last
		add(append([]string{tokens[len(tokens)-1]}, reversed(tokens[:len(tokens)-1])...))
	}

	return out
}

// SamePerson reports whether two raw names plausibly identify one person,
// i.e. their variant sets intersect.
func SamePerson(a, b string) bool {
	bv := map[string]bool{}
	for _, v := range Variants(b) {
		bv[v] = true
	}
	for _, v := range Variants(a) {
		if bv[v] {
			return true
		}
	}
	return false
}

func reversed(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[len(tokens)-1-i] = t
	}
	return out
}
