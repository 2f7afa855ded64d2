package http

import (
	"github.com/gin-gonic/gin"

	"finance-tracker-go/internal/service"
)

// GET /api/dashboard
func (s *Server) dashboard(c *gin.Context) {
	d, err := s.svc.Dashboard(c.Request.Context(), c.MustGet("userID").(uint), s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, d)
}

// GET /api/analytics/income-expense?period=monthly|yearly&year=
func (s *Server) incomeExpense(c *gin.Context) {
	year, err := queryInt(c, "year", s.now().UTC().Year())
	if err != nil {
		c.JSON(400, gin.H{"error": "year must be a number"})
		return
	}
	period := c.DefaultQuery("period", service.PeriodMonthly)
	series, err := s.svc.IncomeExpense(c.Request.Context(), c.MustGet("userID").(uint), period, year)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"period": period, "year": year, "data": series})
}

// GET /api/analytics/category-breakdown?type=&month=&year=
func (s *Server) categoryBreakdown(c *gin.Context) {
	month, year, ok := s.monthYear(c)
	if !ok {
		return
	}
	kind := c.Query("type")
	breakdown, err := s.svc.CategoryBreakdown(c.Request.Context(), c.MustGet("userID").(uint), kind, month, year)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"month": month, "year": year, "data": breakdown})
}

// GET /api/analytics/daily-trends?month=&year=
func (s *Server) dailyTrends(c *gin.Context) {
	month, year, ok := s.monthYear(c)
	if !ok {
		return
	}
	points, err := s.svc.DailyTrends(c.Request.Context(), c.MustGet("userID").(uint), month, year)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"month": month, "year": year, "data": points})
}
