package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Page geometry for landscape A4 in points. Rows are fixed height; when the
// running offset passes pageBreakY a new page is started and the header row
// is redrawn.
const (
	pdfMargin     = 30.0
	pdfRowHeight  = 20.0
	firstTableTop = 90.0
	pageBreakY    = 560.0
	newPageTop    = 50.0
)

// RenderPDF renders the table as a paginated landscape-A4 document.
func RenderPDF(t Table) ([]byte, error) {
	if err := t.validateRows(); err != nil {
		return nil, fmt.Errorf("invalid export table: %w", err)
	}

	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(pdfMargin, pdfMargin+10)
	pdf.CellFormat(0, 24, t.Title, "", 0, "C", false, 0, "")

	drawRow(pdf, t.Columns, headerValues(t.Columns), firstTableTop, true)
	y := firstTableTop + pdfRowHeight + 3

	emitRow := func(values []string) {
		if y > pageBreakY {
			pdf.AddPage()
			drawRow(pdf, t.Columns, headerValues(t.Columns), newPageTop, true)
			y = newPageTop + pdfRowHeight + 3
		}
		drawRow(pdf, t.Columns, values, y, false)
		y += pdfRowHeight
	}

	for _, row := range t.Rows {
		emitRow(row)
	}
	if t.Summary != nil {
		emitRow(t.Summary)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return buf.Bytes(), nil
}

func drawRow(pdf *fpdf.Fpdf, cols []Column, values []string, y float64, header bool) {
	x := pdfMargin
	for i, col := range cols {
		w := col.PDFWidth

		if header {
			pdf.SetFillColor(240, 240, 240)
			pdf.Rect(x, y-5, w, pdfRowHeight, "FD")
			pdf.SetFont("Helvetica", "B", 8)
		} else {
			pdf.Rect(x, y-5, w, pdfRowHeight, "D")
			pdf.SetFont("Helvetica", "", 7)
		}

		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(x+3, y-2)
		pdf.CellFormat(w-6, 14, values[i], "", 0, "L", false, 0, "")

		x += w
	}
}

func headerValues(cols []Column) []string {
	values := make([]string, len(cols))
	for i, col := range cols {
		values[i] = col.Header
	}
	return values
}
