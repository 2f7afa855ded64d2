package http

import (
	"bytes"

	"github.com/gin-gonic/gin"

	"finance-tracker-go/internal/report"
)

func (s *Server) buildReport(c *gin.Context) (report.Report, bool) {
	f, ok := transactionFilter(c)
	if !ok {
		return report.Report{}, false
	}
	r, err := s.svc.Report(c.Request.Context(), c.MustGet("userID").(uint), f)
	if err != nil {
		s.fail(c, err)
		return report.Report{}, false
	}
	return r, true
}

// GET /api/reports/csv
func (s *Server) reportCSV(c *gin.Context) {
	r, ok := s.buildReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, r); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(200, "text/csv; charset=utf-8", buf.Bytes())
}

// GET /api/reports/pdf
func (s *Server) reportPDF(c *gin.Context) {
	r, ok := s.buildReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, r, currentUser(c).Currency, s.now()); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="financial-report.pdf"`)
	c.Data(200, "application/pdf", buf.Bytes())
}
