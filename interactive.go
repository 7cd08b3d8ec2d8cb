package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// previewLimit caps how many matching lines the finder preview shows.
const previewLimit = 50

// pickRoots lets the user choose search roots under dir. The preview pane
// shows what cfg would match in the highlighted file. A nil slice with a
// nil error means the user aborted.
func pickRoots(dir string, cfg SearchConfig) ([]string, error) {
	candidates, err := interactiveCandidates(dir)
	if err != nil {
		return nil, err
	}
	matcher := NewLineMatcher(cfg)

	picked, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string { return candidates[i] },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 {
				return "Tab marks a root, Enter searches the marked roots."
			}
			return previewMatches(matcher, candidates[i], h)
		}),
		fuzzyfinder.WithHeader("grep "+cfg.Query),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fuzzy finder: %w", err)
	}

	roots := make([]string, 0, len(picked))
	for _, i := range picked {
		roots = append(roots, candidates[i])
	}
	return roots, nil
}

// previewMatches renders the lines of path that matcher accepts, numbered
// the way -n numbers them.
func previewMatches(matcher *LineMatcher, path string, height int) string {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return err.Error()
	case info.IsDir():
		return path + " (directory, searched recursively)"
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err.Error()
	}

	result := matcher.Match(path, string(content))
	if !result.HasMatch() {
		return "no matching lines"
	}
	limit := previewLimit
	if height > 0 && height < limit {
		limit = height
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d matching lines\n", len(result.Matches))
	for n, m := range result.Matches {
		if n == limit {
			b.WriteString("...\n")
			break
		}
		fmt.Fprintf(&b, "%d%s%s\n", m.LineNo, separator, m.Text)
	}
	return b.String()
}

// interactiveCandidates lists the files and directories under dir,
// leaving out hidden entries such as .git and everything below them.
func interactiveCandidates(dir string) ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debugf("interactive scan: %v", err)
			return nil
		}
		if path == dir {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("nothing to pick from under %s", dir)
	}
	return candidates, nil
}

func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}
