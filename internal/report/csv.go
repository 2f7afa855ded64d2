package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{"Date", "Type", "Category", "Amount", "Notes"}

// WriteCSV writes one line per row under a fixed header.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range r.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Kind,
			row.Category,
			formatAmount(row.Amount),
			row.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
