package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lualoc/internal/config"
	"lualoc/internal/langs"
	"lualoc/internal/parser"
	"lualoc/internal/translation"
)

func testConfig() *config.Config {
	return &config.Config{
		Provider:  "google",
		TableName: "localization",
		BatchSize: 25,
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(testConfig())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const unformatted = `local mod = get_mod("RitualZones")

local localization = {
	mod_name = {
		ja = "儀式ゾーン",
		en = "Ritual Zones",

		fr = "Zones rituelles",
	},
}

return localization
`

const formatted = `local mod = get_mod("RitualZones")

local localization = {
	mod_name = {
		en = "Ritual Zones",
		fr = "Zones rituelles",
		ja = "儀式ゾーン",
	},
}

return localization
`

func writeMod(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod_localization.lua")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLanguagesCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "languages")
	require.NoError(t, err)
	require.Contains(t, out, "en       en       English (source)\n")
	require.Contains(t, out, "pt-br    pt       Brazilian Portuguese\n")
	require.Contains(t, out, "zh-cn    zh-CN    Simplified Chinese\n")
}

func TestFormatCommand(t *testing.T) {
	t.Parallel()

	path := writeMod(t, unformatted)
	_, err := run(t, "format", path)
	require.NoError(t, err)
	require.Equal(t, formatted, readFile(t, path))

	_, err = run(t, "format", path)
	require.NoError(t, err)
	require.Equal(t, formatted, readFile(t, path))
}

func TestFormatCommandDirectory(t *testing.T) {
	t.Parallel()

	path := writeMod(t, unformatted)
	_, err := run(t, "format", filepath.Dir(path))
	require.NoError(t, err)
	require.Equal(t, formatted, readFile(t, path))
}

func TestFormatCommandMixedLineEndings(t *testing.T) {
	t.Parallel()

	path := writeMod(t, "-- generated\r\n"+unformatted)
	_, err := run(t, "format", path)
	require.NoError(t, err)
	require.Equal(t, "-- generated\r\n"+formatted, readFile(t, path))
}

func TestFormatCommandNoTable(t *testing.T) {
	t.Parallel()

	path := writeMod(t, "return {}\n")
	_, err := run(t, "format", path)
	require.ErrorIs(t, err, parser.ErrTableNotFound)
	require.Equal(t, "return {}\n", readFile(t, path))
}

func TestTranslateCommand(t *testing.T) {
	t.Parallel()

	t.Run("unsupported language leaves files alone", func(t *testing.T) {
		t.Parallel()

		path := writeMod(t, unformatted)
		_, err := run(t, "translate", "--lang", "fr,xx", path)
		require.ErrorIs(t, err, langs.ErrUnsupportedLanguage)
		require.Equal(t, unformatted, readFile(t, path))
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		path := writeMod(t, unformatted)
		_, err := run(t, "translate", "--provider", "deepl", path)
		require.ErrorIs(t, err, translation.ErrUnavailable)
		require.Equal(t, unformatted, readFile(t, path))
	})

	t.Run("gemini without key", func(t *testing.T) {
		t.Parallel()

		path := writeMod(t, unformatted)
		_, err := run(t, "translate", "--provider", "gemini", path)
		require.ErrorIs(t, err, translation.ErrUnavailable)
	})

	t.Run("nothing pending only formats", func(t *testing.T) {
		t.Parallel()

		path := writeMod(t, unformatted)
		_, err := run(t, "translate", "--lang", "fr,ja", "--no-cache", path)
		require.NoError(t, err)
		require.Equal(t, formatted, readFile(t, path))
	})

	t.Run("format only flag", func(t *testing.T) {
		t.Parallel()

		path := writeMod(t, unformatted)
		_, err := run(t, "translate", "--format-only", "--lang", "xx", path)
		require.NoError(t, err)
		require.Equal(t, formatted, readFile(t, path))
	})

	t.Run("no files", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, "translate", t.TempDir())
		require.ErrorIs(t, err, errNoPaths)
	})
}

func TestStatusCommand(t *testing.T) {
	t.Parallel()

	path := writeMod(t, unformatted)
	out, err := run(t, "status", path)
	require.NoError(t, err)
	require.Contains(t, out, path+" (1 entries, lines 3-10)\n")
	require.Contains(t, out, "  en         1/1     100.0%\n")
	require.Contains(t, out, "  de         0/1       0.0%\n")
	require.Equal(t, unformatted, readFile(t, path))
}

func TestLanguagesFileFlag(t *testing.T) {
	t.Parallel()

	table := filepath.Join(t.TempDir(), "languages.yaml")
	require.NoError(t, os.WriteFile(table, []byte("languages:\n  - code: en\n  - code: ja\n  - code: fr\n"), 0644))

	path := writeMod(t, unformatted)
	_, err := run(t, "--languages", table, "format", path)
	require.NoError(t, err)
	require.Contains(t, readFile(t, path), "\t\ten = \"Ritual Zones\",\n\t\tja = \"儀式ゾーン\",\n\t\tfr = \"Zones rituelles\",\n")
}
