package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// typographic maps punctuation variants that translators like to emit onto
// the plain ASCII forms the mod files use.
var typographic = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u200b", "", // zero-width space
	"\u201c", `"`,
	"\u201d", `"`,
	"\u201e", `"`,
	"\u201f", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u2039", `"`,
	"\u203a", `"`,
	"\u00ab", `"`,
	"\u00bb", `"`,
)

// Normalize replaces typographic spaces and quotes with plain ASCII.
func Normalize(s string) string {
	return typographic.Replace(s)
}

// EscapeQuotes escapes every bare double quote so s stays a valid string
// literal body. Characters already preceded by a backslash pass through, so
// quotes are never escaped twice.
func EscapeQuotes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			sb.WriteString(`\"`)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// HashParts hashes several strings joined by a separator none of them contain.
func HashParts(parts ...string) string {
	return Hash(strings.Join(parts, "\x00"))
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
