package nlp

import "strings"

// Normalize lowercases text and strips surrounding whitespace. It is the
// only canonicalization applied before matching; patterns and keywords are
// authored against its output.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
