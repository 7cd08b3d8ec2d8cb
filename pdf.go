package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 5   // Line height in mm
	pdfFontSize   = 9
	pdfTabWidth   = 4 // Number of spaces for a tab
)

// generatePDF writes the run as a report: a summary, then one section per
// file that produced output.
func generatePDF(report *Report, cfg SearchConfig, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("grep "+cfg.Query, true)
	pdf.AddPage()

	// Core fonts are cp1252; translate so accented text survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	width := float64(pdfPageWidth - 2*pdfMargin)

	pdf.SetFont("Helvetica", "B", pdfFontSize+3)
	pdf.MultiCell(width, pdfLineHeight+1, tr(fmt.Sprintf("Matches for %q", cfg.Query)), "", "L", false)
	pdf.Ln(pdfLineHeight / 2)

	s := report.Summary
	pdf.SetFont("Helvetica", "", pdfFontSize)
	summaryString := fmt.Sprintf("Files searched: %d\nFiles matched: %d\nMatched lines: %d", s.FilesSearched, s.FilesMatched, s.MatchedLines)
	if s.Unreadable > 0 {
		summaryString += fmt.Sprintf("\nUnreadable files: %d", s.Unreadable)
	}
	pdf.MultiCell(width, pdfLineHeight, summaryString, "", "L", false)
	pdf.Ln(pdfLineHeight)

	for _, r := range report.Results {
		if r.Err != nil || (!r.HasMatch() && !cfg.CountOnly) {
			continue
		}

		pdf.SetFont("Helvetica", "B", pdfFontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(width, pdfLineHeight, tr(r.Filename), "", "L", false)
		pdf.Line(pdfMargin, pdf.GetY(), pdfPageWidth-pdfMargin, pdf.GetY())
		pdf.Ln(pdfLineHeight / 2)

		pdf.SetFont("Courier", "", pdfFontSize)
		for _, line := range reportLines(r, cfg) {
			line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", pdfTabWidth))
			pdf.MultiCell(width, pdfLineHeight, tr(line), "", "L", false)
		}
		pdf.Ln(pdfLineHeight)
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}

// reportLines is what a file contributes to the report body.
func reportLines(r MatchedFile, cfg SearchConfig) []string {
	if cfg.FilesWithMatchesOnly && !cfg.CountOnly {
		return []string{strconv.Itoa(len(r.Matches)) + " matching lines"}
	}
	return r.Lines
}
