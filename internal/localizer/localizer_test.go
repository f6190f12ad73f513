package localizer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lualoc/internal/interpolation"
	"lualoc/internal/langs"
	"lualoc/internal/localizer"
	"lualoc/internal/parser"
	"lualoc/internal/translation"
)

type call struct {
	source, target string
	texts          []string
}

// fakeTranslator records calls and answers with fn, or echoes the input.
type fakeTranslator struct {
	mu    sync.Mutex
	calls []call
	fn    func(target string, texts []string) ([]string, error)
}

func (f *fakeTranslator) TranslateBatch(_ context.Context, source, target string, texts []string) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{source: source, target: target, texts: append([]string(nil), texts...)})
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(target, texts)
	}
	return append([]string(nil), texts...), nil
}

func entry(key string, values map[string]string) *parser.Entry {
	return &parser.Entry{Indent: "\t", Key: key, Languages: values}
}

func value(t *testing.T, e *parser.Entry, lang string) string {
	t.Helper()
	v, ok := e.Get(lang)
	require.True(t, ok, "entry %s has no %s", e.Key, lang)
	return v
}

func TestLocalizeIdentity(t *testing.T) {
	t.Parallel()

	fake := &fakeTranslator{}
	loc := localizer.New(langs.Default(), fake, localizer.Options{})

	e := entry("hint", map[string]string{"en": "Press “Go” {#red}%s{#reset}\\n"})
	report, err := loc.Localize(context.Background(), []*parser.Entry{e}, []string{"fr"})
	require.NoError(t, err)

	require.Equal(t, `Press \"Go\" {#red}%s{#reset}\n`, value(t, e, "fr"))
	require.Equal(t, "Press “Go” {#red}%s{#reset}\\n", value(t, e, "en"))

	require.Len(t, fake.calls, 1)
	require.Equal(t, []string{"Press “Go” __PH000____PH003____PH001____PH002__"}, fake.calls[0].texts)
	require.Equal(t, &localizer.LangStats{Pending: 1, Translated: 1}, report.Langs["fr"])
}

func TestLocalizeSelective(t *testing.T) {
	t.Parallel()

	newEntries := func() []*parser.Entry {
		return []*parser.Entry{
			entry("a", map[string]string{"en": "One", "fr": "Un"}),
			entry("b", map[string]string{"en": "Two"}),
		}
	}
	upper := func(_ string, texts []string) ([]string, error) {
		out := make([]string, len(texts))
		for i, s := range texts {
			out[i] = strings.ToUpper(s)
		}
		return out, nil
	}

	t.Run("existing values are kept", func(t *testing.T) {
		t.Parallel()

		fake := &fakeTranslator{fn: upper}
		entries := newEntries()
		report, err := localizer.New(langs.Default(), fake, localizer.Options{}).
			Localize(context.Background(), entries, []string{"fr"})
		require.NoError(t, err)

		require.Equal(t, "Un", value(t, entries[0], "fr"))
		require.Equal(t, "TWO", value(t, entries[1], "fr"))
		require.Equal(t, [][]string{{"Two"}}, textsOf(fake.calls))
		require.Equal(t, 1, report.Langs["fr"].Kept)
	})

	t.Run("overwrite retranslates", func(t *testing.T) {
		t.Parallel()

		fake := &fakeTranslator{fn: upper}
		entries := newEntries()
		_, err := localizer.New(langs.Default(), fake, localizer.Options{Overwrite: true}).
			Localize(context.Background(), entries, []string{"fr"})
		require.NoError(t, err)

		require.Equal(t, "ONE", value(t, entries[0], "fr"))
		require.Equal(t, "TWO", value(t, entries[1], "fr"))
		require.Equal(t, [][]string{{"One", "Two"}}, textsOf(fake.calls))
	})
}

func TestLocalizeCopiesUntranslatable(t *testing.T) {
	t.Parallel()

	fake := &fakeTranslator{fn: func(string, []string) ([]string, error) {
		return nil, errors.New("must not be called")
	}}
	e := entry("pct", map[string]string{"en": "{#icon}%d%%"})

	report, err := localizer.New(langs.Default(), fake, localizer.Options{}).
		Localize(context.Background(), []*parser.Entry{e}, []string{"fr", "ja"})
	require.NoError(t, err)
	require.Empty(t, fake.calls)
	require.Equal(t, "{#icon}%d%%", value(t, e, "fr"))
	require.Equal(t, "{#icon}%d%%", value(t, e, "ja"))
	require.Equal(t, 1, report.Langs["ja"].Copied)
}

func TestLocalizeNilTranslator(t *testing.T) {
	t.Parallel()

	loc := localizer.New(langs.Default(), nil, localizer.Options{})

	copyOnly := entry("dash", map[string]string{"en": " - "})
	_, err := loc.Localize(context.Background(), []*parser.Entry{copyOnly}, []string{"de"})
	require.NoError(t, err)
	require.Equal(t, " - ", value(t, copyOnly, "de"))

	needs := entry("word", map[string]string{"en": "Word"})
	_, err = loc.Localize(context.Background(), []*parser.Entry{needs}, []string{"de"})
	require.ErrorIs(t, err, translation.ErrUnavailable)
	_, ok := needs.Get("de")
	require.False(t, ok)
}

func TestLocalizeBatches(t *testing.T) {
	t.Parallel()

	entries := make([]*parser.Entry, 60)
	for i := range entries {
		entries[i] = entry(fmt.Sprintf("k%d", i), map[string]string{"en": fmt.Sprintf("Text %d", i)})
	}

	fake := &fakeTranslator{}
	_, err := localizer.New(langs.Default(), fake, localizer.Options{}).
		Localize(context.Background(), entries, []string{"de", "pt-br"})
	require.NoError(t, err)

	var sizes []int
	for _, c := range fake.calls {
		require.LessOrEqual(t, len(c.texts), localizer.DefaultBatchSize)
		sizes = append(sizes, len(c.texts))
	}
	require.Equal(t, []int{25, 25, 10, 25, 25, 10}, sizes)

	require.Equal(t, "en", fake.calls[0].source)
	require.Equal(t, "de", fake.calls[0].target)
	require.Equal(t, "pt", fake.calls[3].target)
	require.Equal(t, "Text 59", value(t, entries[59], "pt-br"))
}

func TestLocalizeBatchSizeOption(t *testing.T) {
	t.Parallel()

	entries := []*parser.Entry{
		entry("a", map[string]string{"en": "A"}),
		entry("b", map[string]string{"en": "B"}),
		entry("c", map[string]string{"en": "C"}),
	}
	fake := &fakeTranslator{}
	_, err := localizer.New(langs.Default(), fake, localizer.Options{BatchSize: 2}).
		Localize(context.Background(), entries, []string{"it"})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"A", "B"}, {"C"}}, textsOf(fake.calls))
}

func TestLocalizeUnsupportedLanguage(t *testing.T) {
	t.Parallel()

	fake := &fakeTranslator{}
	e := entry("a", map[string]string{"en": "A"})

	_, err := localizer.New(langs.Default(), fake, localizer.Options{}).
		Localize(context.Background(), []*parser.Entry{e}, []string{"fr", "xx"})
	require.ErrorIs(t, err, langs.ErrUnsupportedLanguage)
	require.Empty(t, fake.calls)
	require.Equal(t, map[string]string{"en": "A"}, e.Languages)
}

func TestLocalizeSkipsSourceAndEmpty(t *testing.T) {
	t.Parallel()

	fake := &fakeTranslator{}
	entries := []*parser.Entry{
		entry("empty", map[string]string{"en": ""}),
		entry("none", map[string]string{"fr": "Seul"}),
		entry("ok", map[string]string{"en": "Fine"}),
	}

	report, err := localizer.New(langs.Default(), fake, localizer.Options{}).
		Localize(context.Background(), entries, []string{"en", "es"})
	require.NoError(t, err)

	require.Equal(t, []string{"es"}, report.Order)
	require.Equal(t, 2, report.Langs["es"].NoSource)
	_, ok := entries[0].Get("es")
	require.False(t, ok)
	_, ok = entries[1].Get("es")
	require.False(t, ok)
	require.Equal(t, "Fine", value(t, entries[2], "es"))
}

func TestLocalizeFailures(t *testing.T) {
	t.Parallel()

	t.Run("batch error aborts", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("service down")
		fake := &fakeTranslator{fn: func(target string, texts []string) ([]string, error) {
			if target == "ru" {
				return nil, boom
			}
			return texts, nil
		}}
		e := entry("a", map[string]string{"en": "A"})

		_, err := localizer.New(langs.Default(), fake, localizer.Options{}).
			Localize(context.Background(), []*parser.Entry{e}, []string{"ru", "ko"})
		require.ErrorIs(t, err, boom)
		require.ErrorContains(t, err, "translate ru batch 1/1")
		require.Len(t, fake.calls, 1)
		_, ok := e.Get("ko")
		require.False(t, ok)
	})

	t.Run("answer count mismatch", func(t *testing.T) {
		t.Parallel()

		fake := &fakeTranslator{fn: func(string, []string) ([]string, error) {
			return []string{"only"}, nil
		}}
		entries := []*parser.Entry{
			entry("a", map[string]string{"en": "A"}),
			entry("b", map[string]string{"en": "B"}),
		}

		_, err := localizer.New(langs.Default(), fake, localizer.Options{}).
			Localize(context.Background(), entries, []string{"pl"})
		require.ErrorIs(t, err, translation.ErrBatchMismatch)
		_, ok := entries[0].Get("pl")
		require.False(t, ok)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fake := &fakeTranslator{}
		_, err := localizer.New(langs.Default(), fake, localizer.Options{}).
			Localize(ctx, []*parser.Entry{entry("a", map[string]string{"en": "A"})}, []string{"fr"})
		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, fake.calls)
	})
}

func TestLocalizeLostPlaceholders(t *testing.T) {
	t.Parallel()

	fake := &fakeTranslator{fn: func(_ string, texts []string) ([]string, error) {
		return []string{"Gagné"}, nil
	}}
	e := entry("a", map[string]string{"en": "{#red}Won{#reset}"})

	report, err := localizer.New(langs.Default(), fake, localizer.Options{}).
		Localize(context.Background(), []*parser.Entry{e}, []string{"fr"})
	require.NoError(t, err)
	require.Equal(t, 1, report.Langs["fr"].LostPlaceholders)
	require.Equal(t, "Gagné", value(t, e, "fr"))
}

type progressLog struct {
	events []string
}

func (p *progressLog) Start(lang string, total int) {
	p.events = append(p.events, fmt.Sprintf("start %s %d", lang, total))
}
func (p *progressLog) Advance(n int) { p.events = append(p.events, fmt.Sprintf("advance %d", n)) }
func (p *progressLog) Finish()       { p.events = append(p.events, "finish") }

func TestLocalizeProgress(t *testing.T) {
	t.Parallel()

	entries := []*parser.Entry{
		entry("a", map[string]string{"en": "A"}),
		entry("b", map[string]string{"en": "B"}),
		entry("c", map[string]string{"en": "C"}),
	}
	progress := &progressLog{}
	_, err := localizer.New(langs.Default(), &fakeTranslator{}, localizer.Options{BatchSize: 2, Progress: progress}).
		Localize(context.Background(), entries, []string{"zh-tw"})
	require.NoError(t, err)
	require.Equal(t, []string{"start zh-tw 3", "advance 2", "advance 1", "finish"}, progress.events)
}

func TestFinish(t *testing.T) {
	t.Parallel()

	masked, mappings := interpolation.Protect(`{#red}%s{#reset}`)
	translated := "«" + masked + "» !"
	require.Equal(t, `\"{#red}%s{#reset}\" !`, localizer.Finish(translated, mappings))
}

func TestStatus(t *testing.T) {
	t.Parallel()

	entries := []*parser.Entry{
		entry("a", map[string]string{"en": "A", "fr": "A"}),
		entry("b", map[string]string{"en": "B", "fr": ""}),
		entry("c", map[string]string{"de": "C"}),
	}
	require.Equal(t, []localizer.Coverage{
		{Lang: "en", Present: 2, Missing: 1},
		{Lang: "fr", Present: 1, Missing: 2},
		{Lang: "de", Present: 1, Missing: 2},
	}, localizer.Status(entries, []string{"en", "fr", "de"}))
}

func textsOf(calls []call) [][]string {
	out := make([][]string, len(calls))
	for i, c := range calls {
		out[i] = c.texts
	}
	return out
}
