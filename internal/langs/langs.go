// Package langs holds the language table: the canonical order languages are
// written in, and the code each one has on the translation service.
package langs

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedLanguage is returned for a code that is not in the table.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is one row of the table.
type Language struct {
	Code    string `yaml:"code"`
	Service string `yaml:"service,omitempty"`
	Name    string `yaml:"name,omitempty"`
}

// Table is immutable once built; methods never modify it.
type Table struct {
	source string
	order  []string
	byCode map[string]Language
}

type tableFile struct {
	Source    string     `yaml:"source"`
	Languages []Language `yaml:"languages"`
}

var defaultLanguages = []Language{
	{Code: "en", Service: "en", Name: "English"},
	{Code: "fr", Service: "fr", Name: "French"},
	{Code: "de", Service: "de", Name: "German"},
	{Code: "es", Service: "es", Name: "Spanish"},
	{Code: "it", Service: "it", Name: "Italian"},
	{Code: "ru", Service: "ru", Name: "Russian"},
	{Code: "pt-br", Service: "pt", Name: "Brazilian Portuguese"},
	{Code: "zh-cn", Service: "zh-CN", Name: "Simplified Chinese"},
	{Code: "zh-tw", Service: "zh-TW", Name: "Traditional Chinese"},
	{Code: "ja", Service: "ja", Name: "Japanese"},
	{Code: "ko", Service: "ko", Name: "Korean"},
	{Code: "pl", Service: "pl", Name: "Polish"},
}

// Default returns the built-in table with English as the source language.
func Default() Table {
	t, err := New("en", defaultLanguages)
	if err != nil {
		panic(err)
	}
	return t
}

// New builds a table. The source language must be one of languages.
func New(source string, languages []Language) (Table, error) {
	if len(languages) == 0 {
		return Table{}, errors.New("language table is empty")
	}
	t := Table{
		source: source,
		order:  make([]string, 0, len(languages)),
		byCode: make(map[string]Language, len(languages)),
	}
	for _, l := range languages {
		if l.Code == "" {
			return Table{}, errors.New("language without code")
		}
		if _, dup := t.byCode[l.Code]; dup {
			return Table{}, fmt.Errorf("language %q listed twice", l.Code)
		}
		if l.Service == "" {
			l.Service = l.Code
		}
		if l.Name == "" {
			l.Name = l.Code
		}
		t.order = append(t.order, l.Code)
		t.byCode[l.Code] = l
	}
	if _, ok := t.byCode[source]; !ok {
		return Table{}, fmt.Errorf("source language %q is not in the table", source)
	}
	return t, nil
}

// LoadFile reads a table from YAML:
//
//	source: en
//	languages:
//	  - code: en
//	  - code: pt-br
//	    service: pt
//	    name: Brazilian Portuguese
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read language table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Table{}, fmt.Errorf("parse language table %s: %w", path, err)
	}
	if f.Source == "" {
		f.Source = "en"
	}
	t, err := New(f.Source, f.Languages)
	if err != nil {
		return Table{}, fmt.Errorf("language table %s: %w", path, err)
	}
	return t, nil
}

// Source returns the language translations are made from.
func (t Table) Source() string { return t.source }

// Order returns the canonical output order. The slice is a copy.
func (t Table) Order() []string { return slices.Clone(t.order) }

// Languages returns the rows in canonical order.
func (t Table) Languages() []Language {
	out := make([]Language, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, t.byCode[c])
	}
	return out
}

// Lookup returns the row for code.
func (t Table) Lookup(code string) (Language, error) {
	l, ok := t.byCode[code]
	if !ok {
		return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return l, nil
}

// Targets turns a selection into target codes. "all" (or empty) is every
// language except the source; otherwise a comma-separated list. Every code
// is checked before anything is returned.
func (t Table) Targets(selection string) ([]string, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" || selection == "all" {
		out := make([]string, 0, len(t.order))
		for _, c := range t.order {
			if c != t.source {
				out = append(out, c)
			}
		}
		return out, nil
	}

	var out []string
	for _, part := range strings.Split(selection, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if code == "" || slices.Contains(out, code) {
			continue
		}
		if _, err := t.Lookup(code); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}
