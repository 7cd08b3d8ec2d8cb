package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePDF(t *testing.T) {
	cfg := SearchConfig{Query: "rust", CaseInsensitive: true, ShowLineNumbers: true}
	results := []MatchedFile{
		Search(cfg, "poem.txt", poem),
		Search(cfg, "café.txt", "Crème brûlée\tand rust\n"),
		Search(cfg, "none.txt", "nothing here\n"),
		{Filename: "gone.txt", Err: os.ErrNotExist},
	}
	report := &Report{Results: results, Summary: summarize(results)}

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, generatePDF(report, cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF", "output is a PDF document")
}

func TestGeneratePDF_UnwritablePath(t *testing.T) {
	report := &Report{}
	err := generatePDF(report, SearchConfig{Query: "x"}, filepath.Join(t.TempDir(), "missing", "report.pdf"))
	assert.Error(t, err)
}

func TestReportLines(t *testing.T) {
	r := Search(SearchConfig{Query: "e"}, "poem.txt", poem)

	assert.Equal(t, r.Lines, reportLines(r, SearchConfig{Query: "e"}))
	assert.Equal(t, []string{"3 matching lines"}, reportLines(r, SearchConfig{Query: "e", FilesWithMatchesOnly: true}))

	counted := Search(SearchConfig{Query: "e", CountOnly: true}, "poem.txt", poem)
	assert.Equal(t, []string{"3"}, reportLines(counted, SearchConfig{Query: "e", CountOnly: true, FilesWithMatchesOnly: true}))
}
