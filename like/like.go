// Package like evaluates SQL LIKE expressions against strings.
//
// The only wildcard is '%', which matches any run of zero or more
// characters. Every other character, '_' included, matches itself. A
// pattern without '%' therefore requires an exact match:
//
//	Match("realm-admin", "realm%")    // prefix
//	Match("realm-admin", "%admin")    // suffix
//	Match("realm-admin", "%lm-ad%")   // substring
//	Match("realm-admin", "realm-admin")
//
// The pointer variants Like and InsensitiveLike model nullable operands:
// a nil value or pattern never matches.
package like

import (
	"strings"

	"golang.org/x/text/cases"
)

// Wildcard is the multi-character wildcard.
const Wildcard = "%"

// Match reports whether value matches pattern.
func Match(value, pattern string) bool {
	if !strings.Contains(pattern, Wildcard) {
		return value == pattern
	}

	segments := strings.Split(pattern, Wildcard)

	// Anchored head: the text before the first '%' must be a prefix.
	head := segments[0]
	if !strings.HasPrefix(value, head) {
		return false
	}
	value = value[len(head):]

	// Anchored tail: the text after the last '%' must be a suffix of what
	// remains once the head is consumed, so head and tail cannot overlap.
	tail := segments[len(segments)-1]
	if len(tail) > len(value) || !strings.HasSuffix(value, tail) {
		return false
	}
	value = value[:len(value)-len(tail)]

	// Floating middle segments match leftmost-first; taking the earliest
	// occurrence always leaves the most room for the segments after it.
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		idx := strings.Index(value, seg)
		if idx < 0 {
			return false
		}
		value = value[idx+len(seg):]
	}
	return true
}

// folder is stateless and safe for concurrent use.
var folder = cases.Fold()

// MatchFold is Match after Unicode case folding of both operands.
// Folding is locale independent and leaves '%' untouched.
func MatchFold(value, pattern string) bool {
	return Match(folder.String(value), folder.String(pattern))
}

// Like is Match over nullable operands.
func Like(value, pattern *string) bool {
	if value == nil || pattern == nil {
		return false
	}
	return Match(*value, *pattern)
}

// InsensitiveLike is MatchFold over nullable operands.
func InsensitiveLike(value, pattern *string) bool {
	if value == nil || pattern == nil {
		return false
	}
	return MatchFold(*value, *pattern)
}

// Contains returns the pattern that matches any value containing s.
func Contains(s string) string {
	return Wildcard + s + Wildcard
}

// FromWildcard converts a '*' wildcard search, as used for admin resource
// paths, into a LIKE pattern.
func FromWildcard(search string) string {
	return strings.ReplaceAll(search, "*", Wildcard)
}
