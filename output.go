package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// separator joins a file name or line number to the text that follows it.
const separator = ":"

// Painter colors the parts of an output line. A disabled Painter returns
// its input unchanged.
type Painter struct {
	enabled bool
	file    *color.Color
	lineNo  *color.Color
	sep     *color.Color
	match   *color.Color
}

func newPainter(enabled bool) *Painter {
	p := &Painter{
		enabled: enabled,
		file:    color.New(color.FgMagenta),
		lineNo:  color.New(color.FgGreen),
		sep:     color.New(color.FgCyan),
		match:   color.New(color.FgRed, color.Bold),
	}
	if enabled {
		// Explicit choice overrides color's own TTY detection.
		for _, c := range []*color.Color{p.file, p.lineNo, p.sep, p.match} {
			c.EnableColor()
		}
	}
	return p
}

// plainPainter renders without color.
var plainPainter = &Painter{}

func (p *Painter) paint(c *color.Color, s string) string {
	if !p.enabled || s == "" {
		return s
	}
	return c.Sprint(s)
}

func (p *Painter) fileName(name string) string { return p.paint(p.file, name) }
func (p *Painter) divider() string { return p.paint(p.sep, separator) }
func (p *Painter) lineNumber(n int) string { return p.paint(p.lineNo, strconv.Itoa(n)) }

// highlight colors every occurrence of query in text. Occurrences are
// found the same way the matcher finds them; a line whose lower-cased form
// is not byte-aligned with it is left plain.
func (p *Painter) highlight(text, query string, fold bool) string {
	if !p.enabled || query == "" {
		return text
	}
	haystack, needle := text, query
	if fold {
		var ok bool
		if haystack, ok = foldAligned(text); !ok {
			return text
		}
		needle = strings.ToLower(query)
	}

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			break
		}
		i += start
		b.WriteString(text[start:i])
		b.WriteString(p.paint(p.match, text[i:i+len(needle)]))
		start = i + len(needle)
	}
	b.WriteString(text[start:])
	return b.String()
}

// foldAligned lower-cases s rune by rune. It reports false when any rune
// changes its encoded width, since offsets into the result would then not
// be offsets into s.
func foldAligned(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		lower := unicode.ToLower(r)
		if utf8.RuneLen(lower) != size {
			return "", false
		}
		b.WriteRune(lower)
		i += size
	}
	return b.String(), true
}

// matchLine renders one matched line, numbered when asked. Every "N:text"
// line, plain or colored, is built here.
func (p *Painter) matchLine(m LineMatch, numbered bool, text string) string {
	if !numbered {
		return text
	}
	return p.lineNumber(m.LineNo) + p.divider() + text
}

// renderResults lays out results for printing. Whether lines carry a file
// name prefix depends on how many files were searched, not on how many
// matched. Failed files print nothing.
func renderResults(results []MatchedFile, filesSearched int, cfg SearchConfig, p *Painter) string {
	var builder strings.Builder
	multi := filesSearched > 1

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		prefix := ""
		if multi {
			prefix = p.fileName(r.Filename) + p.divider()
		}

		switch {
		case cfg.CountOnly:
			for _, line := range r.Lines {
				builder.WriteString(prefix + line + "\n")
			}
		case cfg.FilesWithMatchesOnly:
			if r.HasMatch() {
				builder.WriteString(p.fileName(r.Filename) + "\n")
			}
		default:
			for _, m := range r.Matches {
				text := m.Text
				if !cfg.Invert {
					text = p.highlight(text, cfg.Query, cfg.CaseInsensitive)
				}
				builder.WriteString(prefix + p.matchLine(m, cfg.ShowLineNumbers, text) + "\n")
			}
		}
	}
	return builder.String()
}

// colorEnabled resolves the --color mode for a destination. auto colors
// only a terminal stdout and honours NO_COLOR.
func colorEnabled(mode string, w io.Writer, toStdout bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if !toStdout || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// deliver sends the report to the configured destination. The PDF report
// takes priority, then an output file, then the clipboard, then stdout.
func deliver(report *Report, cfg SearchConfig, out OutputOptions, stdout io.Writer) error {
	if out.PDF != "" {
		if err := generatePDF(report, cfg, out.PDF); err != nil {
			return fmt.Errorf("error generating PDF: %w", err)
		}
		logger.Debugf("report saved to %s", out.PDF)
		return nil
	}

	toStdout := out.File == "" && !out.Clipboard
	painter := newPainter(colorEnabled(out.Color, stdout, toStdout))
	finalOutput := renderResults(report.Results, report.Summary.FilesSearched, cfg, painter)

	switch {
	case out.File != "":
		if err := os.WriteFile(out.File, []byte(finalOutput), 0644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", out.File, err)
		}
		logger.Debugf("output saved to %s", out.File)
	case out.Clipboard:
		if err := clipboard.WriteAll(finalOutput); err != nil {
			logger.Warnf("error writing to clipboard: %v", err)
			_, err = io.WriteString(stdout, finalOutput)
			return err
		}
		logger.Debugf("output copied to clipboard")
	default:
		if _, err := io.WriteString(stdout, finalOutput); err != nil {
			return err
		}
	}
	return nil
}
