// Package glossary keeps fixed translations of game terms so the model-based
// translator renders them consistently. Terms live in Neo4j and are
// imported from YAML.
package glossary

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Term is a source-language word or phrase and its fixed translations.
type Term struct {
	Source       string            `yaml:"source"`
	Category     string            `yaml:"category,omitempty"`
	Translations map[string]string `yaml:"translations"`
}

type termsFile struct {
	Terms []Term `yaml:"terms"`
}

// LoadFile reads terms from YAML:
//
//	terms:
//	  - source: Ritual
//	    category: mechanic
//	    translations:
//	      fr: Rituel
//	      de: Ritual
func LoadFile(path string) ([]Term, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glossary: %w", err)
	}
	var f termsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse glossary %s: %w", path, err)
	}
	for i, t := range f.Terms {
		if strings.TrimSpace(t.Source) == "" {
			return nil, fmt.Errorf("glossary %s: term %d has no source", path, i+1)
		}
	}
	return f.Terms, nil
}

// Relevant returns the terms whose source text appears in any of texts,
// compared case-insensitively. Keys are returned sorted for stable prompts.
func Relevant(terms map[string]string, texts []string) ([]string, map[string]string) {
	lowered := make([]string, len(texts))
	for i, t := range texts {
		lowered[i] = strings.ToLower(t)
	}

	matched := make(map[string]string)
	for src, dst := range terms {
		needle := strings.ToLower(src)
		for _, t := range lowered {
			if strings.Contains(t, needle) {
				matched[src] = dst
				break
			}
		}
	}

	keys := make([]string, 0, len(matched))
	for k := range matched {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, matched
}
