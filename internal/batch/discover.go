package batch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"converty/internal/imageio"
)

// Matcher decides whether a file found during discovery is a raw dump.
type Matcher struct {
	Extensions []string // lower-case, with leading dot
	// ExpectedSize, when > 0, also accepts any uncompressed file of exactly this size.
	ExpectedSize int64
}

// Match reports whether the file name (and size) qualifies. A trailing .zst is ignored
// when comparing extensions.
func (m Matcher) Match(name string, size int64) bool {
	lower := strings.ToLower(name)
	compressed := strings.HasSuffix(lower, imageio.CompressedSuffix)
	lower = strings.TrimSuffix(lower, imageio.CompressedSuffix)
	ext := filepath.Ext(lower)
	for _, e := range m.Extensions {
		if ext == e {
			return true
		}
	}
	return !compressed && m.ExpectedSize > 0 && size == m.ExpectedSize
}

// Discover walks root and returns matching files in lexical order. Symlinks are
// followed when they point at a regular file. skipDir, when non-empty, is never
// entered (the output directory). Unreadable entries below root are logged and
// skipped; only a failure on root itself is returned.
func Discover(root string, recursive bool, m Matcher, skipDir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root = filepath.Clean(root)
	if skipDir != "" {
		skipDir = filepath.Clean(skipDir)
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable entry", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || path == skipDir {
				return fs.SkipDir
			}
			return nil
		}

		var info fs.FileInfo
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			if info, err = os.Stat(path); err != nil {
				logger.Warn("skipping broken symlink", "path", path, "err", err)
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		case !d.Type().IsRegular():
			return nil
		case m.ExpectedSize > 0:
			if info, err = d.Info(); err != nil {
				logger.Warn("skipping unreadable entry", "path", path, "err", err)
				return nil
			}
		}
		var size int64
		if info != nil {
			size = info.Size()
		}
		if m.Match(d.Name(), size) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Stem returns the base name without .zst and without the raw extension.
func Stem(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(base), imageio.CompressedSuffix) {
		base = base[:len(base)-len(imageio.CompressedSuffix)]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// planOutputs maps each input to outDir/<stem><ext>. Inputs from different
// directories can share a stem once flattened; later ones get _1, _2, ... in input
// order so the mapping is stable across runs.
func planOutputs(inputs []string, outDir, ext string) []string {
	used := make(map[string]bool, len(inputs))
	outs := make([]string, len(inputs))
	for i, in := range inputs {
		stem := Stem(in)
		name := stem
		for n := 1; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", stem, n)
		}
		used[strings.ToLower(name)] = true
		outs[i] = filepath.Join(outDir, name+ext)
	}
	return outs
}
