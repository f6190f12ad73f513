package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Document is a whole text file split into lines.
type Document struct {
	// Path is where the document was read from.
	Path string
	// Lines holds the content without line terminators.
	Lines []string
	// CRLF is set when most lines of the source ended with "\r\n". Lines
	// with no recorded terminator are written with it.
	CRLF bool

	// endings[i] is the terminator read after Lines[i], "" for none.
	endings []string
}

// ReadDocument reads path fully into memory.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc := ParseDocument(data)
	doc.Path = path
	return doc, nil
}

// ParseDocument splits data into lines, remembering each line's terminator.
// A trailing newline does not produce an empty last line.
func ParseDocument(data []byte) *Document {
	doc := &Document{}
	text := string(data)
	crlf, lf := 0, 0
	for text != "" {
		line, rest, found := strings.Cut(text, "\n")
		ending := ""
		if found {
			if trimmed, ok := strings.CutSuffix(line, "\r"); ok {
				line, ending = trimmed, "\r\n"
				crlf++
			} else {
				ending = "\n"
				lf++
			}
		}
		doc.Lines = append(doc.Lines, line)
		doc.endings = append(doc.endings, ending)
		text = rest
	}
	doc.CRLF = crlf > lf
	return doc
}

// Bytes joins the lines back together, always ending with a newline.
func (d *Document) Bytes() []byte {
	var b strings.Builder
	for i, line := range d.Lines {
		b.WriteString(line)
		b.WriteString(d.ending(i))
	}
	return []byte(b.String())
}

// ApplyTable replaces the body of t with its entries rendered in order.
// Lines outside the body keep their terminators; rendered lines take the
// terminator of the table's opening line.
func (d *Document) ApplyTable(t *Table, order []string) {
	if t.End == t.Start {
		return
	}
	from, to, body := t.body(order)

	for len(d.endings) < len(d.Lines) {
		d.endings = append(d.endings, "")
	}
	endings := make([]string, len(body))
	for i := range endings {
		endings[i] = d.endings[t.Start]
	}

	d.endings = slices.Concat(d.endings[:from], endings, d.endings[to:len(d.Lines)])
	d.Lines = slices.Concat(d.Lines[:from], body, d.Lines[to:])
}

func (d *Document) ending(i int) string {
	if i < len(d.endings) && d.endings[i] != "" {
		return d.endings[i]
	}
	if d.CRLF {
		return "\r\n"
	}
	return "\n"
}

// WriteFile replaces path with the document. The content goes to a temporary
// file in the same directory first, so path is either fully old or fully new.
func (d *Document) WriteFile(path string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(d.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
