package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// The extractor is a line scanner over one narrow table shape, not a Lua
// parser. Anything it does not recognize inside an entry is kept verbatim.

// entryStartPattern matches `key = {` or `["key"] = {` on a line of its own.
var entryStartPattern = regexp.MustCompile(`^(?P<indent>\s*)(?P<key>[A-Za-z0-9_]+|\["[^"]+"\])\s*=\s*\{\s*$`)

// langLinePattern matches `en = "text",` or `["pt-br"] = "text",`.
var langLinePattern = regexp.MustCompile(`^\s*(?P<lang>(?:[a-z]{2}|[a-z]{2}-[a-z]{2})|\["[a-z-]+"\])\s*=\s*"(?P<text>(?:\\.|[^"\\])*)"\s*,\s*$`)

var (
	entryIndentGroup = entryStartPattern.SubexpIndex("indent")
	entryKeyGroup    = entryStartPattern.SubexpIndex("key")
	langCodeGroup    = langLinePattern.SubexpIndex("lang")
	langTextGroup    = langLinePattern.SubexpIndex("text")
)

// luaIdentifier is used when the table name is left empty.
const luaIdentifier = `[A-Za-z_][A-Za-z0-9_]*`

// DefaultTableName is the identifier of the table the tool edits by default.
const DefaultTableName = "localization"

// BraceDelta returns the net change in brace depth for one line. Braces
// inside double-quoted strings do not count; a backslash inside a string
// escapes the next character.
func BraceDelta(line string) int {
	delta := 0
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			delta++
		case '}':
			delta--
		}
	}
	return delta
}

// tableStartPattern builds the opening-line pattern for name. An empty name
// accepts any identifier.
func tableStartPattern(name string) *regexp.Regexp {
	ident := luaIdentifier
	if name != "" {
		ident = regexp.QuoteMeta(name)
	}
	return regexp.MustCompile(`^\s*local\s+(` + ident + `)\s*=\s*\{`)
}

// Extract locates the table assigned to tableName and parses its entries.
func Extract(lines []string, tableName string) (*Table, error) {
	startPattern := tableStartPattern(tableName)

	start := -1
	var name string
	for i, line := range lines {
		if m := startPattern.FindStringSubmatch(line); m != nil {
			start = i
			name = m[1]
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: no `local %s = {` line", ErrTableNotFound, displayName(tableName))
	}

	table := &Table{Name: name, Start: start, End: -1}

	depth := BraceDelta(lines[start])
	if depth <= 0 {
		// Opened and closed on the same line.
		table.End = start
		return table, nil
	}

	i := start + 1
	for i < len(lines) {
		line := lines[i]

		if depth == 1 {
			if m := entryStartPattern.FindStringSubmatch(line); m != nil {
				entry, next, newDepth := extractEntry(lines, i, depth, m)
				table.Entries = append(table.Entries, entry)
				depth = newDepth
				i = next
				if depth <= 0 {
					// The entry's closing line also closed the table.
					table.End = next - 1
					closing := lines[table.End]
					table.closeTail = closeTail(closing, depth-BraceDelta(closing))
					return table, nil
				}
				continue
			}
		}

		depth += BraceDelta(line)
		if depth <= 0 {
			table.End = i
			return table, nil
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			table.Dropped = append(table.Dropped, i)
		}
		i++
	}

	return nil, fmt.Errorf("%w: `local %s = {` opened on line %d", ErrTableUnterminated, name, start+1)
}

// extractEntry consumes an entry starting at lines[at] and returns it with
// the index of the first line after it and the depth after its closing line.
func extractEntry(lines []string, at, depth int, m []string) (*Entry, int, int) {
	entry := &Entry{
		Indent:    m[entryIndentGroup],
		Key:       m[entryKeyGroup],
		Languages: make(map[string]string),
		Line:      at,
	}

	depth += BraceDelta(lines[at])
	entryDepth := depth

	i := at + 1
	closed := false
	for i < len(lines) {
		depth += BraceDelta(lines[i])
		i++
		if depth < entryDepth {
			closed = true
			break
		}
	}

	// Inner lines exclude the opening line and, when present, the closing one.
	innerEnd := i
	if closed {
		innerEnd = i - 1
	}
	for j := at + 1; j < innerEnd; j++ {
		classifyLine(entry, lines[j], j)
	}

	return entry, i, depth
}

// classifyLine files one inner line as a language value or an extra line.
// A repeated language code replaces the earlier value, which is recorded.
func classifyLine(entry *Entry, line string, idx int) {
	lm := langLinePattern.FindStringSubmatch(line)
	if lm == nil {
		if strings.TrimSpace(line) != "" {
			entry.Extra = append(entry.Extra, line)
		}
		return
	}

	lang := unbracket(lm[langCodeGroup])
	if prev, ok := entry.Languages[lang]; ok {
		entry.Shadowed = append(entry.Shadowed, Shadow{Lang: lang, Value: prev, Line: idx})
	}
	entry.Languages[lang] = lm[langTextGroup]
}

// closeTail returns the part of line starting at the brace that brings
// depth, the depth before line, down to zero.
func closeTail(line string, depth int) string {
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return line[i:]
			}
		}
	}
	return "}"
}

// unbracket turns `["pt-br"]` into `pt-br` and leaves bare codes alone.
func unbracket(raw string) string {
	if strings.HasPrefix(raw, `["`) && strings.HasSuffix(raw, `"]`) {
		return raw[2 : len(raw)-2]
	}
	return raw
}

func displayName(name string) string {
	if name == "" {
		return "<name>"
	}
	return name
}
