package interpolation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Mapping stores a protected substring and the placeholder standing in for it.
type Mapping struct {
	Original    string
	Placeholder string
	Index       int
}

// span is a claimed byte range of the source text.
type span struct {
	start, end int
	value      string
}

// patterns are applied in priority order. A later pattern only searches the
// text between earlier matches, never inside or across them.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\{#[^}]+\}`),          // {#color}, {#/color}
	regexp.MustCompile(`\\x[0-9A-Fa-f]{2}`),   // \x1b
	regexp.MustCompile(`[\x{E000}-\x{F8FF}]`), // private-use icon glyphs
	regexp.MustCompile(`\\n`),                 // literal \n escape
	regexp.MustCompile(`%[%\pL\pN_.]+`),       // %d, %s, %%, %1.2f
}

// nonWordChars is everything that does not count as translatable content.
var nonWordChars = regexp.MustCompile(`[^\pL\pN]+`)

// placeholder returns the marker for the i-th protected substring. The
// double-underscore delimiters keep one marker from being a substring of
// another.
func placeholder(i int) string {
	return fmt.Sprintf("__PH%03d__", i)
}

// Protect replaces every protected substring with a placeholder and returns
// the masked text with the mappings needed to restore it. Mappings are in
// discovery order: by pattern priority, then by position.
func Protect(text string) (string, []Mapping) {
	var discovered, claimed []span
	for _, p := range patterns {
		for _, gap := range gaps(text, claimed) {
			for _, loc := range p.FindAllStringIndex(text[gap.start:gap.end], -1) {
				discovered = append(discovered, span{
					start: gap.start + loc[0],
					end:   gap.start + loc[1],
					value: text[gap.start+loc[0] : gap.start+loc[1]],
				})
			}
		}
		claimed = append(claimed[:0], discovered...)
		sortSpans(claimed)
	}

	if len(discovered) == 0 {
		return text, nil
	}

	mappings := make([]Mapping, len(discovered))
	byStart := make(map[int]string, len(discovered))
	for i, s := range discovered {
		ph := placeholder(i)
		mappings[i] = Mapping{Original: s.value, Placeholder: ph, Index: i}
		byStart[s.start] = ph
	}

	var sb strings.Builder
	last := 0
	for _, s := range claimed {
		sb.WriteString(text[last:s.start])
		sb.WriteString(byStart[s.start])
		last = s.end
	}
	sb.WriteString(text[last:])

	return sb.String(), mappings
}

// Restore puts the original substrings back. Replacement is literal so that
// nothing in the translated text is reinterpreted as a pattern.
func Restore(translated string, mappings []Mapping) string {
	result := translated
	for _, m := range mappings {
		result = strings.ReplaceAll(result, m.Placeholder, m.Original)
	}
	return result
}

// Missing returns the placeholders that do not appear in translated. A
// non-empty result means the transform dropped or mangled protected tokens.
func Missing(translated string, mappings []Mapping) []string {
	var out []string
	for _, m := range mappings {
		if !strings.Contains(translated, m.Placeholder) {
			out = append(out, m.Placeholder)
		}
	}
	return out
}

// NeedsTranslation reports whether text has any letters or digits left once
// protected tokens are removed.
func NeedsTranslation(text string) bool {
	stripped := text
	for _, p := range patterns {
		stripped = p.ReplaceAllString(stripped, " ")
	}
	return nonWordChars.ReplaceAllString(stripped, "") != ""
}

// gaps returns the unclaimed ranges of text. claimed must be sorted.
func gaps(text string, claimed []span) []span {
	var out []span
	pos := 0
	for _, c := range claimed {
		if c.start > pos {
			out = append(out, span{start: pos, end: c.start})
		}
		pos = c.end
	}
	if pos < len(text) {
		out = append(out, span{start: pos, end: len(text)})
	}
	return out
}

func sortSpans(s []span) {
	sort.Slice(s, func(i, j int) bool { return s[i].start < s[j].start })
}
