package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yml
var builtinFileTypes []byte

// typeDef is one entry of languages.yml.
type typeDef struct {
	Kind       string   `yaml:"type"`
	Extensions []string `yaml:"extensions"`
	Filenames  []string `yaml:"filenames"`
}

// FileTypes resolves file names to the type names accepted by --type.
type FileTypes struct {
	defs        map[string]typeDef
	byExtension map[string]string // ".go" -> "Go", keys lower-cased
	byFilename  map[string]string // "Makefile" -> "Makefile", exact
}

// loadFileTypes prefers a languages.yml in the user config directory, then
// one in the working directory, then the built-in table.
func loadFileTypes() (*FileTypes, error) {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "grep", "languages.yml"))
	}
	candidates = append(candidates, "languages.yml")

	for _, path := range candidates {
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading type definitions %s: %w", path, err)
		}
		logger.Debugf("loading type definitions from %s", path)
		ft, err := parseFileTypes(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing type definitions %s: %w", path, err)
		}
		return ft, nil
	}
	return parseFileTypes(builtinFileTypes)
}

func parseFileTypes(raw []byte) (*FileTypes, error) {
	defs := map[string]typeDef{}
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, err
	}
	ft := &FileTypes{
		defs:        defs,
		byExtension: map[string]string{},
		byFilename:  map[string]string{},
	}

	// Sorted so a shared extension always maps to the same type.
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := defs[name]
		for _, ext := range def.Extensions {
			key := strings.ToLower(ext)
			if _, taken := ft.byExtension[key]; !taken {
				ft.byExtension[key] = name
			}
		}
		for _, base := range def.Filenames {
			if _, taken := ft.byFilename[base]; !taken {
				ft.byFilename[base] = name
			}
		}
	}

	logger.Debugf("loaded %d file types", len(defs))
	return ft, nil
}

// TypeOf names the type of path. A known file name beats its extension.
func (ft *FileTypes) TypeOf(path string) (string, bool) {
	if ft == nil {
		return "", false
	}
	base := filepath.Base(path)
	if name, ok := ft.byFilename[base]; ok {
		return name, true
	}
	name, ok := ft.byExtension[strings.ToLower(filepath.Ext(base))]
	return name, ok
}

// HasType reports whether path is of one of types, compared
// case-insensitively.
func (ft *FileTypes) HasType(path string, types []string) bool {
	name, ok := ft.TypeOf(path)
	if !ok {
		return false
	}
	for _, t := range types {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// ValidateTypes rejects the first name in types that has no definition.
func (ft *FileTypes) ValidateTypes(types []string) error {
next:
	for _, t := range types {
		for name := range ft.defs {
			if strings.EqualFold(t, name) {
				continue next
			}
		}
		return argumentErrorf("unknown file type %q", t)
	}
	return nil
}
