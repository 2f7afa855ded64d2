package http

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"finance-tracker-go/internal/service"
)

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.svc.ListCategories(c.Request.Context(), c.MustGet("userID").(uint), c.Query("type"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, categories)
}

func (s *Server) getCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := s.svc.Category(c.Request.Context(), c.MustGet("userID").(uint), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, category)
}

func (s *Server) createCategory(c *gin.Context) {
	raw, ok := s.validBody(c, "category")
	if !ok {
		return
	}
	var input struct {
		Name  string `json:"name"`
		Kind  string `json:"type"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	category, err := s.svc.CreateCategory(c.Request.Context(), c.MustGet("userID").(uint), service.CategoryInput{
		Name:  input.Name,
		Kind:  input.Kind,
		Icon:  input.Icon,
		Color: input.Color,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := s.validBody(c, "category_update")
	if !ok {
		return
	}
	var input struct {
		Name  *string `json:"name"`
		Icon  *string `json:"icon"`
		Color *string `json:"color"`
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	category, err := s.svc.UpdateCategory(c.Request.Context(), c.MustGet("userID").(uint), id, service.CategoryUpdate{
		Name:  input.Name,
		Icon:  input.Icon,
		Color: input.Color,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteCategory(c.Request.Context(), c.MustGet("userID").(uint), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "category deleted"})
}

// GET /api/categories/:id/summary?month=&year=
func (s *Server) categorySummary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	month, year, ok := s.monthYear(c)
	if !ok {
		return
	}
	summary, err := s.svc.CategorySummary(c.Request.Context(), c.MustGet("userID").(uint), id, month, year)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, summary)
}
