package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// WritePDF renders the summary followed by a transaction table.
func WritePDF(w io.Writer, r Report, currency string, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Financial Report", true)
	pdf.SetCreationDate(generatedAt)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Financial Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range [][2]string{
		{"Total Income", formatAmount(r.Summary.TotalIncome)},
		{"Total Expenses", formatAmount(r.Summary.TotalExpense)},
		{"Balance", formatAmount(r.Summary.Balance)},
	} {
		pdf.CellFormat(50, 7, line[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("%s %s", line[1], currency), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	widths := []float64{28, 22, 45, 30, 65}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 240)
	for i, h := range csvHeader {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range r.Rows {
		cells := []string{
			row.Date.Format("2006-01-02"),
			row.Kind,
			tr(row.Category),
			formatAmount(row.Amount),
			tr(truncate(row.Notes, 40)),
		}
		for i, c := range cells {
			align := "L"
			if i == 3 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
