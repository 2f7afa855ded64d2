package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-tracker-go/internal/service"
)

// POST /api/auth/register
func (s *Server) authRegister(c *gin.Context) {
	raw, ok := s.validBody(c, "register")
	if !ok {
		return
	}
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	session, err := s.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Currency: input.Currency,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, session)
}

// POST /api/auth/login
func (s *Server) authLogin(c *gin.Context) {
	raw, ok := s.validBody(c, "login")
	if !ok {
		return
	}
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	session, err := s.svc.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, session)
}

// POST /api/auth/refresh
func (s *Server) authRefresh(c *gin.Context) {
	raw, ok := s.validBody(c, "refresh")
	if !ok {
		return
	}
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	session, err := s.svc.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, session)
}

// POST /api/auth/logout
func (s *Server) authLogout(c *gin.Context) {
	if err := s.svc.Logout(c.Request.Context(), c.MustGet("userID").(uint)); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "logged out"})
}

// GET /api/users/profile
func (s *Server) getProfile(c *gin.Context) {
	c.JSON(200, gin.H{"user": currentUser(c)})
}

// PUT /api/users/profile
func (s *Server) updateProfile(c *gin.Context) {
	raw, ok := s.validBody(c, "profile")
	if !ok {
		return
	}
	var payload struct {
		Name           *string `json:"name"`
		Currency       *string `json:"currency"`
		FinancialGoals *struct {
			MonthlySavings *decimal.Decimal `json:"monthly_savings"`
		} `json:"financial_goals"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	in := service.ProfileUpdate{Name: payload.Name, Currency: payload.Currency}
	if payload.FinancialGoals != nil {
		in.MonthlySavings = payload.FinancialGoals.MonthlySavings
	}
	user, err := s.svc.UpdateProfile(c.Request.Context(), c.MustGet("userID").(uint), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"user": user})
}

// DELETE /api/users/profile
func (s *Server) deleteProfile(c *gin.Context) {
	if err := s.svc.DeleteAccount(c.Request.Context(), c.MustGet("userID").(uint)); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "account deleted"})
}
