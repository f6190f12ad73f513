// Package localizer fills in missing translations of table entries. It masks
// protected tokens, sends batches to a translator, and cleans up the answers
// before writing them back into the entries.
package localizer

import (
	"context"
	"fmt"

	"lualoc/internal/interpolation"
	"lualoc/internal/langs"
	"lualoc/internal/parser"
	"lualoc/internal/textutil"
	"lualoc/internal/translation"
	"lualoc/internal/worker"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize caps how many strings go into one translator call.
const DefaultBatchSize = 25

// Options controls a Localize run.
type Options struct {
	// Overwrite retranslates languages that already have a value.
	Overwrite bool
	// BatchSize caps strings per translator call; 0 means DefaultBatchSize.
	BatchSize int
	// Progress is told about batch progress; nil means no reporting.
	Progress Progress
}

// Progress receives per-language progress.
type Progress interface {
	Start(lang string, total int)
	Advance(n int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(string, int) {}
func (nopProgress) Advance(int)       {}
func (nopProgress) Finish()           {}

// Localizer runs the translate pipeline over entries.
type Localizer struct {
	table      langs.Table
	translator translation.Translator
	opts       Options
}

// New creates a localizer. A nil translator is only an error once some
// string actually needs translating.
func New(table langs.Table, translator translation.Translator, opts Options) *Localizer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	return &Localizer{table: table, translator: translator, opts: opts}
}

// pending is one string waiting for the translator.
type pending struct {
	entry    *parser.Entry
	masked   string
	mappings []interpolation.Mapping
}

// Localize fills targets in every entry. All targets are validated before
// the first translator call. A failed batch aborts the run; entries may then
// be partly updated and must not be written out.
func (l *Localizer) Localize(ctx context.Context, entries []*parser.Entry, targets []string) (*Report, error) {
	source, err := l.table.Lookup(l.table.Source())
	if err != nil {
		return nil, err
	}
	resolved := make([]langs.Language, 0, len(targets))
	for _, code := range targets {
		lang, err := l.table.Lookup(code)
		if err != nil {
			return nil, err
		}
		if lang.Code == source.Code {
			continue
		}
		resolved = append(resolved, lang)
	}

	report := newReport()
	for _, target := range resolved {
		stats, items := l.plan(entries, source.Code, target.Code)
		report.add(target.Code, stats)

		if len(items) > 0 && l.translator == nil {
			return report, translation.Unavailable(fmt.Errorf("no translator configured"))
		}
		if err := l.translate(ctx, source, target, items, stats); err != nil {
			return report, err
		}

		log.Info().
			Str("lang", target.Code).
			Int("translated", stats.Translated).
			Int("copied", stats.Copied).
			Int("kept", stats.Kept).
			Msg("Language done")
	}
	return report, nil
}

// plan decides per entry what happens for target. Untranslatable sources
// are copied right away; the rest are masked and returned.
func (l *Localizer) plan(entries []*parser.Entry, source, target string) (*LangStats, []pending) {
	stats := &LangStats{}
	var items []pending
	for _, e := range entries {
		src, _ := e.Get(source)
		if src == "" {
			stats.NoSource++
			continue
		}
		if _, has := e.Get(target); has && !l.opts.Overwrite {
			stats.Kept++
			continue
		}
		if !interpolation.NeedsTranslation(src) {
			e.Set(target, src)
			stats.Copied++
			continue
		}
		masked, mappings := interpolation.Protect(src)
		items = append(items, pending{entry: e, masked: masked, mappings: mappings})
	}
	stats.Pending = len(items)
	return stats, items
}

func (l *Localizer) translate(ctx context.Context, source, target langs.Language, items []pending, stats *LangStats) error {
	if len(items) == 0 {
		return nil
	}

	l.opts.Progress.Start(target.Code, len(items))
	defer l.opts.Progress.Finish()

	batches := worker.Batch(items, l.opts.BatchSize)
	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		texts := make([]string, len(batch))
		for i, it := range batch {
			texts[i] = it.masked
		}

		log.Debug().
			Str("lang", target.Code).
			Int("batch", bi+1).
			Int("total_batches", len(batches)).
			Int("size", len(batch)).
			Msg("Translating batch")

		out, err := l.translator.TranslateBatch(ctx, source.Service, target.Service, texts)
		if err != nil {
			return fmt.Errorf("translate %s batch %d/%d: %w", target.Code, bi+1, len(batches), err)
		}
		if len(out) != len(batch) {
			return fmt.Errorf("translate %s batch %d/%d: %w: sent %d, received %d",
				target.Code, bi+1, len(batches), translation.ErrBatchMismatch, len(batch), len(out))
		}

		for i, it := range batch {
			if missing := interpolation.Missing(out[i], it.mappings); len(missing) > 0 {
				stats.LostPlaceholders++
				log.Warn().
					Str("lang", target.Code).
					Str("key", it.entry.Key).
					Strs("placeholders", missing).
					Str("text", textutil.Truncate(out[i], 60)).
					Msg("Translator dropped protected tokens")
			}
			it.entry.Set(target.Code, Finish(out[i], it.mappings))
			stats.Translated++
		}
		l.opts.Progress.Advance(len(batch))
	}
	return nil
}

// Finish turns a translator answer into a value ready for the file: tokens
// restored, punctuation normalized, bare quotes escaped.
func Finish(translated string, mappings []interpolation.Mapping) string {
	return textutil.EscapeQuotes(textutil.Normalize(interpolation.Restore(translated, mappings)))
}
