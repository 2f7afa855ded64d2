package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/service"
)

func (s *Server) listBudgets(c *gin.Context) {
	month, year, ok := s.monthYear(c)
	if !ok {
		return
	}
	budgets, err := s.svc.ListBudgets(c.Request.Context(), c.MustGet("userID").(uint), month, year)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, budgets)
}

func (s *Server) getBudget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	budget, err := s.svc.Budget(c.Request.Context(), c.MustGet("userID").(uint), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, budget)
}

// POST /api/budgets creates the month's budget or replaces its limit.
func (s *Server) setBudget(c *gin.Context) {
	raw, ok := s.validBody(c, "budget")
	if !ok {
		return
	}
	var input struct {
		CategoryID uint            `json:"category_id"`
		Month      int             `json:"month"`
		Year       int             `json:"year"`
		Limit      decimal.Decimal `json:"limit"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	budget, created, err := s.svc.SetBudget(c.Request.Context(), c.MustGet("userID").(uint), service.BudgetInput{
		CategoryID: input.CategoryID,
		Month:      input.Month,
		Year:       input.Year,
		Limit:      input.Limit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	status := 200
	if created {
		status = 201
	}
	c.JSON(status, budget)
}

func (s *Server) updateBudget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := s.validBody(c, "budget_update")
	if !ok {
		return
	}
	var input struct {
		Limit decimal.Decimal `json:"limit"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	budget, err := s.svc.UpdateBudgetLimit(c.Request.Context(), c.MustGet("userID").(uint), id, input.Limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, budget)
}

func (s *Server) deleteBudget(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteBudget(c.Request.Context(), c.MustGet("userID").(uint), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "budget deleted"})
}

// GET /api/budgets/history/:categoryId?months=6
func (s *Server) budgetHistory(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	months, err := queryInt(c, "months", service.DefaultHistoryMonths)
	if err != nil {
		c.JSON(400, gin.H{"error": "months must be a number"})
		return
	}
	history, err := s.svc.BudgetHistory(c.Request.Context(), c.MustGet("userID").(uint), categoryID, months)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, history)
}
