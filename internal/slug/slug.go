// Package slug derives URL identifiers for posts and categories.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// Fallback is used when the input has no ASCII letters or digits at all.
const Fallback = "post"

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Make lower-cases s, replaces every run of characters outside [a-z0-9]
// with a single hyphen and trims hyphens from both ends.
// Example: "HR Strategy: 2024!" → "hr-strategy-2024"
func Make(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// MakeOr is Make with a fallback for inputs that reduce to an empty slug.
func MakeOr(s, fallback string) string {
	if result := Make(s); result != "" {
		return result
	}
	return fallback
}

// WithSuffix returns base for n <= 1 and "base-n" otherwise.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
