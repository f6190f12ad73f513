package parser

import "slices"

// Entry is one record of the localization table.
type Entry struct {
	// Indent is the leading whitespace of the entry's opening line.
	Indent string
	// Key is the entry identifier exactly as written (bare or ["quoted"]).
	Key string
	// Languages maps a language code to its literal string content, still escaped.
	Languages map[string]string
	// Extra holds non-blank inner lines that are not language lines, verbatim.
	Extra []string
	// Shadowed records earlier values that a duplicate language line replaced.
	Shadowed []Shadow
	// Line is the 0-based index of the entry's opening line in the document.
	Line int
}

// Shadow is a language value dropped because the same code appeared again later.
type Shadow struct {
	Lang  string
	Value string
	// Line is the 0-based index of the line whose value replaced this one.
	Line int
}

// Table is the located localization table and its parsed entries.
type Table struct {
	// Name is the Lua identifier the table is assigned to.
	Name string
	// Start is the 0-based index of the `local <name> = {` line.
	Start int
	// End is the 0-based index of the line that closes the table.
	End int
	// Entries are in document order.
	Entries []*Entry
	// Dropped lists the 0-based indexes of non-blank, non-comment lines
	// inside the table that belong to no entry. Rendering does not keep them.
	Dropped []int

	// closeTail replaces the End line when it also closed the last entry.
	closeTail string
}

// Get returns the value for lang and whether the entry has it.
func (e *Entry) Get(lang string) (string, bool) {
	v, ok := e.Languages[lang]
	return v, ok
}

// Set assigns the value for lang.
func (e *Entry) Set(lang, value string) {
	if e.Languages == nil {
		e.Languages = make(map[string]string)
	}
	e.Languages[lang] = value
}

// Unknown returns the entry's language codes missing from order, sorted.
func (e *Entry) Unknown(order []string) []string {
	known := make(map[string]struct{}, len(order))
	for _, l := range order {
		known[l] = struct{}{}
	}
	var out []string
	for l := range e.Languages {
		if _, ok := known[l]; !ok {
			out = append(out, l)
		}
	}
	slices.Sort(out)
	return out
}
