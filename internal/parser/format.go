package parser

import (
	"slices"
	"strings"
)

// FormatEntry renders e with its languages in the given order, followed by
// its extra lines. Codes not present in order are not written.
func FormatEntry(e *Entry, order []string) []string {
	out := make([]string, 0, len(order)+len(e.Extra)+2)
	out = append(out, e.Indent+e.Key+" = {")
	for _, lang := range order {
		value, ok := e.Languages[lang]
		if !ok {
			continue
		}
		out = append(out, e.Indent+"\t"+langKey(lang)+` = "`+value+`",`)
	}
	out = append(out, e.Extra...)
	out = append(out, e.Indent+"},")
	return out
}

// langKey brackets codes that are not valid bare Lua identifiers.
func langKey(lang string) string {
	if strings.Contains(lang, "-") {
		return `["` + lang + `"]`
	}
	return lang
}

// Render rebuilds the document: everything up to and including the table's
// opening line, the formatted entries, then the closing line and the rest.
func (t *Table) Render(lines []string, order []string) []string {
	if t.End == t.Start {
		return append([]string(nil), lines...)
	}
	from, to, body := t.body(order)
	return slices.Concat(lines[:from], body, lines[to:])
}

// body returns the formatted entries and the range lines[from:to] they
// replace. When the closing line also closed the last entry, the range
// covers it and the body ends with the table's own closing brace.
func (t *Table) body(order []string) (from, to int, out []string) {
	from, to = t.Start+1, t.End
	for _, e := range t.Entries {
		out = append(out, FormatEntry(e, order)...)
	}
	if t.closeTail != "" {
		out = append(out, t.closeTail)
		to = t.End + 1
	}
	return from, to, out
}
