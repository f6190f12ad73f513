package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"lualoc/internal/cache"
	"lualoc/internal/filewalker"
	"lualoc/internal/glossary"
	"lualoc/internal/langs"
	"lualoc/internal/localizer"
	"lualoc/internal/parser"
	"lualoc/internal/textutil"
	"lualoc/internal/translation"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type translateOptions struct {
	lang       string
	formatOnly bool
	overwrite  bool
	provider   string
	batchSize  int
	noCache    bool
	noProgress bool
}

func translateCmd(g *globals) *cobra.Command {
	o := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate <file-or-dir>...",
		Short: "Fill in missing translations and rewrite the table",
		Long: `Fill in missing translations and rewrite the localization table.

By default only languages an entry does not have yet are translated, from the
source language (en). Color tags ({#red}), hex escapes (\xNN), icon glyphs,
\n escapes and % placeholders are kept out of the translator's reach.

Examples:
  lualoc translate --lang all mod_localization.lua
  lualoc translate --lang fr,ja scripts/
  lualoc translate --lang de --overwrite mod_localization.lua`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(g, o, args)
		},
	}

	cmd.Flags().StringVar(&o.lang, "lang", "all", "Comma-separated languages to translate (e.g. fr,ja) or 'all'")
	cmd.Flags().BoolVar(&o.formatOnly, "format-only", false, "Only format, no translation")
	cmd.Flags().BoolVar(&o.overwrite, "overwrite", false, "Overwrite existing translations")
	cmd.Flags().StringVar(&o.provider, "provider", g.cfg.Provider, "Translation provider: google or gemini")
	cmd.Flags().IntVar(&o.batchSize, "batch-size", g.cfg.BatchSize, "Strings per translation request")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "Do not use the translation cache")
	cmd.Flags().BoolVar(&o.noProgress, "no-progress", false, "Do not draw progress bars")

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{providerGoogle, providerGemini}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func formatCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "format <file-or-dir>...",
		Short: "Rewrite the table in canonical form without translating",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(g, &translateOptions{formatOnly: true}, args)
		},
	}
}

// runTranslate validates languages and builds the translator before any
// file is touched, then processes the files one at a time.
func runTranslate(g *globals, o *translateOptions, paths []string) error {
	ctx, cancel := setupContext()
	defer cancel()

	table, err := g.languageTable()
	if err != nil {
		return err
	}

	files, err := g.resolveFiles(paths)
	if err != nil {
		return err
	}

	var (
		targets []string
		loc     *localizer.Localizer
	)
	if !o.formatOnly {
		targets, err = table.Targets(o.lang)
		if err != nil {
			return err
		}

		tr, closeFn, err := g.buildTranslator(ctx, o)
		if err != nil {
			return err
		}
		defer closeFn()

		var progress localizer.Progress
		if !o.noProgress && !g.verbose {
			progress = newBarProgress()
		}
		loc = localizer.New(table, tr, localizer.Options{
			Overwrite: o.overwrite,
			BatchSize: o.batchSize,
			Progress:  progress,
		})
	}

	for _, file := range files {
		if err := g.processFile(ctx, file, table, loc, targets); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

// processFile runs one document through extract, localize and render. The
// file is only written when everything succeeded and the content changed.
func (g *globals) processFile(ctx context.Context, path string, table langs.Table, loc *localizer.Localizer, targets []string) error {
	doc, err := parser.ReadDocument(path)
	if err != nil {
		return err
	}
	before := doc.Bytes()

	tbl, err := parser.Extract(doc.Lines, g.tableName)
	if err != nil {
		return err
	}

	order := table.Order()
	warnTable(path, doc.Lines, tbl, order)

	log.Info().
		Str("file", path).
		Str("table", tbl.Name).
		Int("entries", len(tbl.Entries)).
		Msg("Parsed localization table")

	if loc != nil {
		if _, err := loc.Localize(ctx, tbl.Entries, targets); err != nil {
			return err
		}
	}

	doc.ApplyTable(tbl, order)
	if bytes.Equal(before, doc.Bytes()) {
		log.Info().Str("file", path).Msg("Already up to date")
		return nil
	}
	if err := doc.WriteFile(path); err != nil {
		return err
	}

	log.Info().Str("file", path).Msg("Localization updated")
	return nil
}

// warnTable reports the parsing decisions that lose data on rewrite.
func warnTable(path string, lines []string, tbl *parser.Table, order []string) {
	for _, idx := range tbl.Dropped {
		log.Warn().
			Str("file", path).
			Int("line", idx+1).
			Str("text", textutil.Truncate(strings.TrimSpace(lines[idx]), 60)).
			Msg("Line inside the table is not part of any entry and will be removed")
	}
	for _, e := range tbl.Entries {
		for _, s := range e.Shadowed {
			log.Warn().
				Str("file", path).
				Str("key", e.Key).
				Str("lang", s.Lang).
				Int("line", s.Line+1).
				Msg("Duplicate language line; keeping the later value")
		}
		if unknown := e.Unknown(order); len(unknown) > 0 {
			log.Warn().
				Str("file", path).
				Str("key", e.Key).
				Str("langs", strings.Join(unknown, ",")).
				Msg("Languages not in the language table will be dropped")
		}
	}
}

func (g *globals) resolveFiles(paths []string) ([]string, error) {
	w, err := filewalker.NewWalker(g.pattern)
	if err != nil {
		return nil, err
	}
	files, err := w.Resolve(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errNoPaths
	}
	return files, nil
}

const (
	providerGoogle = "google"
	providerGemini = "gemini"
)

// buildTranslator assembles the provider, its glossary and the cache. The
// returned function releases database connections.
func (g *globals) buildTranslator(ctx context.Context, o *translateOptions) (translation.Translator, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var tr translation.Translator
	switch o.provider {
	case providerGoogle:
		tr = translation.NewGoogleClient()
	case providerGemini:
		var opts []translation.GeminiOption
		if g.cfg.Neo4jURI != "" {
			store, err := glossary.Connect(ctx, g.cfg.Neo4jURI, g.cfg.Neo4jUser, g.cfg.Neo4jPassword)
			if err != nil {
				log.Warn().Err(err).Msg("Glossary unavailable, translating without it")
			} else {
				closers = append(closers, func() { store.Close(context.Background()) })
				opts = append(opts, translation.WithGlossary(store))
			}
		}
		gc, err := translation.NewGeminiClient(g.cfg.GeminiAPIKey, g.cfg.TranslationModel, opts...)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		tr = gc
	default:
		return nil, nil, translation.Unavailable(fmt.Errorf("unknown provider %q", o.provider))
	}

	if o.noCache {
		return tr, closeAll, nil
	}

	var store cache.Store
	if g.cfg.DatabaseURL != "" {
		pg, err := cache.Connect(ctx, g.cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("Persistent cache unavailable, using memory only")
		} else {
			closers = append(closers, pg.Close)
			store = pg
		}
	}

	tc := cache.NewTranslationCache(store)
	if err := tc.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload cache")
	}

	return translation.NewCachedTranslator(tr, tc), closeAll, nil
}
