package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
)

// DefaultPattern selects localization files inside directories.
const DefaultPattern = "*localization*.lua"

// Walker expands command-line paths into the list of files to process.
type Walker struct {
	pattern string
}

// NewWalker creates a Walker matching file names against pattern
// (filepath.Match syntax). An empty pattern uses DefaultPattern.
func NewWalker(pattern string) (*Walker, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &Walker{pattern: pattern}, nil
}

// Resolve returns the files named by paths. Files are taken as given;
// directories are walked for names matching the pattern. The result is
// de-duplicated and sorted within each directory.
func (w *Walker) Resolve(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		found, err := w.Walk(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

// Walk discovers matching files under root.
func (w *Walker) Walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(w.pattern, d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	slices.Sort(files)
	log.Debug().Int("count", len(files)).Str("root", root).Msg("Discovered files")
	return files, nil
}
