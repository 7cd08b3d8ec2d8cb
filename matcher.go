package main

import (
	"strconv"
	"strings"
)

// LineMatcher applies one SearchConfig to file text. It holds no state
// beyond the configuration and is safe for concurrent use.
type LineMatcher struct {
	query           string
	foldedQuery     string
	caseInsensitive bool
	invert          bool
	lineNumbers     bool
	countOnly       bool
}

// NewLineMatcher prepares a matcher for cfg.
func NewLineMatcher(cfg SearchConfig) *LineMatcher {
	return &LineMatcher{
		query:           cfg.Query,
		foldedQuery:     strings.ToLower(cfg.Query),
		caseInsensitive: cfg.CaseInsensitive,
		invert:          cfg.Invert,
		lineNumbers:     cfg.ShowLineNumbers,
		countOnly:       cfg.CountOnly,
	}
}

// Matches reports whether line passes the predicate.
func (m *LineMatcher) Matches(line string) bool {
	var found bool
	if m.caseInsensitive {
		found = strings.Contains(strings.ToLower(line), m.foldedQuery)
	} else {
		found = strings.Contains(line, m.query)
	}
	return found != m.invert
}

// Match filters text line by line and renders the survivors.
func (m *LineMatcher) Match(filename, text string) MatchedFile {
	result := MatchedFile{Filename: filename}
	for i, line := range splitLines(text) {
		if m.Matches(line) {
			result.Matches = append(result.Matches, LineMatch{LineNo: i, Text: line})
		}
	}

	if m.countOnly {
		result.Lines = []string{strconv.Itoa(len(result.Matches))}
		return result
	}

	result.Lines = make([]string, 0, len(result.Matches))
	for _, lm := range result.Matches {
		result.Lines = append(result.Lines, plainPainter.matchLine(lm, m.lineNumbers, lm.Text))
	}
	return result
}

// Search is the one-shot form of NewLineMatcher(cfg).Match.
func Search(cfg SearchConfig, filename, text string) MatchedFile {
	return NewLineMatcher(cfg).Match(filename, text)
}

// splitLines breaks text on '\n'. A trailing newline does not start an
// extra empty line, and one '\r' is trimmed from each line end.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
