package shopping

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer lays a List out as a printable A4 table.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

var pdfColumns = []struct {
	header string
	width  float64
	align  string
}{
	{"Item", 70, "L"},
	{"Quantity", 28, "R"},
	{"Unit", 22, "L"},
	{"Unit price", 30, "R"},
	{"Line total", 30, "R"},
}

func (r *PDFRenderer) Render(w io.Writer, list *List, title string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+list.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range list.Lines {
		cells := []string{
			tr(l.Name),
			FormatQuantity(l.Quantity),
			tr(l.Unit),
			FormatAmount(l.UnitPrice),
			FormatAmount(l.LineTotal),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var labelWidth float64
	for _, col := range pdfColumns[:len(pdfColumns)-1] {
		labelWidth += col.width
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(pdfColumns[len(pdfColumns)-1].width, 8, FormatAmount(list.Total), "1", 1, "R", true, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// FormatQuantity prints a quantity rounded to three decimals, without
// trailing zeros.
func FormatQuantity(q float64) string {
	r := math.Round(q*1000) / 1000
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// FormatAmount prints a money amount with two decimals, no currency symbol.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
