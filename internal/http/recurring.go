package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/service"
)

type recurringBody struct {
	Amount     *decimal.Decimal `json:"amount"`
	Kind       *string          `json:"type"`
	CategoryID *uint            `json:"category_id"`
	Frequency  *string          `json:"frequency"`
	DayOfMonth *int             `json:"day_of_month"`
	Notes      *string          `json:"notes"`
	Enabled    *bool            `json:"is_active"`
}

func (s *Server) listRecurring(c *gin.Context) {
	templates, err := s.svc.ListRecurring(c.Request.Context(), c.MustGet("userID").(uint))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, templates)
}

func (s *Server) getRecurring(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tmpl, err := s.svc.Recurring(c.Request.Context(), c.MustGet("userID").(uint), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, tmpl)
}

func (s *Server) createRecurring(c *gin.Context) {
	raw, ok := s.validBody(c, "recurring")
	if !ok {
		return
	}
	var body recurringBody
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	in := service.RecurringInput{
		Amount:     *body.Amount,
		Kind:       *body.Kind,
		CategoryID: *body.CategoryID,
		Enabled:    body.Enabled,
	}
	if body.Frequency != nil {
		in.Frequency = *body.Frequency
	}
	if body.DayOfMonth != nil {
		in.DayOfMonth = *body.DayOfMonth
	}
	if body.Notes != nil {
		in.Notes = *body.Notes
	}

	tmpl, err := s.svc.CreateRecurring(c.Request.Context(), c.MustGet("userID").(uint), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, tmpl)
}

func (s *Server) updateRecurring(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := s.validBody(c, "recurring_update")
	if !ok {
		return
	}
	var body recurringBody
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	tmpl, err := s.svc.UpdateRecurring(c.Request.Context(), c.MustGet("userID").(uint), id, service.RecurringPatch{
		Amount:     body.Amount,
		Kind:       body.Kind,
		CategoryID: body.CategoryID,
		Frequency:  body.Frequency,
		DayOfMonth: body.DayOfMonth,
		Notes:      body.Notes,
		Enabled:    body.Enabled,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, tmpl)
}

func (s *Server) deleteRecurring(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteRecurring(c.Request.Context(), c.MustGet("userID").(uint), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "recurring transaction deleted"})
}

// POST /api/recurring/generate materializes every due template of the caller.
// A partial run still reports what was generated.
func (s *Server) generateRecurring(c *gin.Context) {
	generated, err := s.svc.GenerateRecurring(c.Request.Context(), c.MustGet("userID").(uint), s.now())
	if generated == nil {
		generated = []models.Transaction{}
	}
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status >= 500 {
			s.log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Error("recurring generation failed")
			msg = "internal_error"
		}
		c.JSON(status, gin.H{"error": msg, "generated": len(generated), "transactions": generated})
		return
	}
	c.JSON(200, gin.H{"generated": len(generated), "transactions": generated})
}
