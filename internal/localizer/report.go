package localizer

import "lualoc/internal/parser"

// LangStats counts what happened to one target language.
type LangStats struct {
	// Pending is how many strings were sent to the translator.
	Pending int
	// Translated is how many answers were written back.
	Translated int
	// Copied is how many sources had nothing to translate and were copied.
	Copied int
	// Kept is how many existing values were left alone.
	Kept int
	// NoSource is how many entries have no source text.
	NoSource int
	// LostPlaceholders is how many answers lacked at least one placeholder.
	LostPlaceholders int
}

// Report collects LangStats in the order languages were processed.
type Report struct {
	Order []string
	Langs map[string]*LangStats
}

func newReport() *Report {
	return &Report{Langs: make(map[string]*LangStats)}
}

func (r *Report) add(lang string, s *LangStats) {
	r.Order = append(r.Order, lang)
	r.Langs[lang] = s
}

// Coverage is how many entries have a value for a language.
type Coverage struct {
	Lang    string
	Present int
	Missing int
}

// Status counts, for each language in order, the entries that have a value.
func Status(entries []*parser.Entry, order []string) []Coverage {
	out := make([]Coverage, 0, len(order))
	for _, lang := range order {
		c := Coverage{Lang: lang}
		for _, e := range entries {
			if v, ok := e.Get(lang); ok && v != "" {
				c.Present++
			} else {
				c.Missing++
			}
		}
		out = append(out, c)
	}
	return out
}
