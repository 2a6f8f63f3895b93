// Package report renders a screen's current page as a PDF table.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

var ErrNoColumns = errors.New("report has no columns")

// Table is one page of a list screen.
type Table struct {
	Title       string
	Subtitle    string
	Columns     []string
	Rows        [][]string
	GeneratedAt time.Time
}

const (
	pageWidth = 277.0 // A4 landscape minus 10mm margins
	rowHeight = 7.0
)

// WritePDF renders t to w.
func WritePDF(w io.Writer, t Table) error {
	if len(t.Columns) == 0 {
		return ErrNoColumns
	}
	if t.GeneratedAt.IsZero() {
		t.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(t.Title, true)
	pdf.SetCreator("enclave", false)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(t.Title))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 9)
	meta := "Generated " + t.GeneratedAt.Format("2006-01-02 15:04")
	if t.Subtitle != "" {
		meta = t.Subtitle + "  |  " + meta
	}
	pdf.Cell(0, 6, tr(meta))
	pdf.Ln(9)

	width := pageWidth / float64(len(t.Columns))

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range t.Columns {
			pdf.CellFormat(width, rowHeight, fit(pdf, tr(c), width), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if len(t.Rows) == 0 {
		pdf.CellFormat(pageWidth, rowHeight, "No records found.", "1", 1, "C", false, 0, "")
	}
	for _, row := range t.Rows {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i := range t.Columns {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(width, rowHeight, fit(pdf, tr(cell), width), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// fit truncates s with "..." so it fits a cell of the given width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	avail := width - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(s) <= avail {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > avail {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
