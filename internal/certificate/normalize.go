package certificate

import (
	"regexp"
	"strings"
)

var (
	copySuffixRe    = regexp.MustCompile(`(?i)\s*\(copy\)$`)
	percentSuffixRe = regexp.MustCompile(`(?i)\s+\d+%$`)
	versionSuffixRe = regexp.MustCompile(`(?i)\s+v\d+$`)
	markSymbolRe    = regexp.MustCompile("[™®©]")
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// cleanGameName applies the shared cleanup rules without changing case:
// surrounding whitespace, a trailing "(copy)" parenthetical, trailing
// RTP/version suffixes like " 94%" or " V94", trademark symbols, and
// runs of internal whitespace.
func cleanGameName(name string) string {
	s := strings.TrimSpace(name)
	s = copySuffixRe.ReplaceAllString(s, "")
	s = percentSuffixRe.ReplaceAllString(s, "")
	s = versionSuffixRe.ReplaceAllString(s, "")
	s = markSymbolRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeName canonicalizes a game name into the key used for reference
// table lookups. Every lookup in the system must go through this function;
// the reference table and extraction results are only reconcilable when both
// sides use the identical key.
func NormalizeName(name string) string {
	return strings.ToLower(cleanGameName(name))
}

// DisplayName applies the same cleanup as NormalizeName but preserves case.
// Used for human-facing output, never for lookups.
func DisplayName(name string) string {
	return cleanGameName(name)
}
