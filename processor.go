package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/karrick/godirwalk"
	gitignore "github.com/monochromegane/go-gitignore"
)

// PathCollector expands roots into the files to search.
type PathCollector struct {
	opts      CollectOptions
	fileTypes *FileTypes
}

// NewPathCollector returns a collector applying opts to directory
// expansions. fileTypes may be nil when no type filter is used.
func NewPathCollector(opts CollectOptions, fileTypes *FileTypes) *PathCollector {
	return &PathCollector{opts: opts, fileTypes: fileTypes}
}

// Collect returns the files to search for root. Without recursion, or when
// root is not a directory, the result is root itself and existence is left
// to the read step. A directory yields its regular files in listing order,
// followed by the expansion of each subdirectory in listing order.
//
// Symlinked directories are followed without cycle detection; MaxDepth is
// the only guard against cyclic trees.
func (c *PathCollector) Collect(root string, recursive bool) ([]string, error) {
	if !recursive {
		return []string{root}, nil
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return []string{root}, nil
	}
	if !utf8.ValidString(root) {
		return nil, &CollectError{Root: root, Path: root, Err: ErrEncoding}
	}

	w := &walker{
		root:    root,
		opts:    c.opts,
		types:   c.fileTypes,
		scratch: make([]byte, godirwalk.MinimumScratchBufferSize),
	}
	if c.opts.Gitignore {
		w.ignore = loadGitignore(root)
	}

	files, err := w.walk(root, 1)
	if err != nil {
		return nil, err
	}
	logger.Debugf("collected %d files under %s", len(files), root)
	return files, nil
}

// walker carries the per-root state of one recursive expansion.
type walker struct {
	root    string
	opts    CollectOptions
	types   *FileTypes
	ignore  gitignore.IgnoreMatcher
	scratch []byte
}

func (w *walker) walk(dir string, depth int) ([]string, error) {
	dirents, err := godirwalk.ReadDirents(dir, w.scratch)
	if err != nil {
		return nil, &CollectError{Root: w.root, Path: dir, Err: err}
	}

	var files, subdirs []string
	for _, de := range dirents {
		path := filepath.Join(dir, de.Name())
		if !utf8.ValidString(de.Name()) {
			return nil, &CollectError{Root: w.root, Path: path, Err: fmt.Errorf("%w: %q", ErrEncoding, path)}
		}

		isDir, isFile := classify(de, path)
		switch {
		case isDir:
			if w.keepDir(path, de.Name(), depth) {
				subdirs = append(subdirs, path)
			}
		case isFile:
			if w.keepFile(path, de.Name()) {
				files = append(files, path)
			}
		}
	}

	for _, sub := range subdirs {
		nested, err := w.walk(sub, depth+1)
		if err != nil {
			return nil, err
		}
		files = append(files, nested...)
	}
	return files, nil
}

// classify resolves symlinks so that links to directories are descended
// into and links to regular files are searched.
func classify(de *godirwalk.Dirent, path string) (isDir, isFile bool) {
	switch {
	case de.IsDir():
		return true, false
	case de.IsRegular():
		return false, true
	case de.IsSymlink():
		info, err := os.Stat(path)
		if err != nil {
			logger.Debugf("skipping dangling symlink %s: %v", path, err)
			return false, false
		}
		return info.IsDir(), info.Mode().IsRegular()
	}
	return false, false
}

func (w *walker) keepDir(path, name string, depth int) bool {
	if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
		return false
	}
	if w.ignore != nil && w.ignore.Match(path, true) {
		return false
	}
	excluded, err := matchesAnyPattern(name, w.opts.Exclude)
	if err != nil {
		logger.Warnf("error in exclude pattern matching for %s: %v", path, err)
	}
	return !excluded
}

func (w *walker) keepFile(path, name string) bool {
	if w.ignore != nil && w.ignore.Match(path, false) {
		return false
	}

	excluded, err := matchesAnyPattern(name, w.opts.Exclude)
	if err != nil {
		logger.Warnf("error in exclude pattern matching for %s: %v", path, err)
	}
	if excluded {
		return false
	}

	if len(w.opts.Include) > 0 {
		included, err := matchesAnyPattern(name, w.opts.Include)
		if err != nil {
			logger.Warnf("error in include pattern matching for %s: %v", path, err)
		}
		if !included {
			return false
		}
	}

	if len(w.opts.Types) > 0 && !w.types.HasType(path, w.opts.Types) {
		return false
	}

	if w.opts.MaxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			logger.Warnf("could not get info for %s: %v", path, err)
			return false
		}
		if info.Size() > w.opts.MaxSize {
			logger.Debugf("skipping %s: %d bytes exceeds max size", path, info.Size())
			return false
		}
	}
	return true
}

// loadGitignore reads root/.gitignore. A missing or unreadable file yields
// a nil matcher.
func loadGitignore(root string) gitignore.IgnoreMatcher {
	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err != nil {
		return nil
	}
	matcher, err := gitignore.NewGitIgnore(gitIgnorePath)
	if err != nil {
		logger.Warnf("could not parse .gitignore file %s: %v", gitIgnorePath, err)
		return nil
	}
	return matcher
}

// parsePatterns splits a comma-separated string of patterns into a slice.
func parsePatterns(patterns string) []string {
	if patterns == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchesAnyPattern checks if the given name matches any of the provided glob patterns.
func matchesAnyPattern(name string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
