package http

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/service"
	"finance-tracker-go/internal/store"
)

type Server struct {
	cfg     *config.Config
	svc     *service.Service
	log     logrus.FieldLogger
	schemas map[string]*gojsonschema.Schema
	now     func() time.Time
}

type Option func(*Server)

// WithClock sets the reference time used for "current month" defaults and
// recurring generation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(cfg *config.Config, svc *service.Service, log logrus.FieldLogger, opts ...Option) (*gin.Engine, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, svc: svc, log: log, schemas: schemas, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(cors(cfg))
	r.Use(requestLogger(log))
	r.Use(timeout(time.Duration(cfg.ReqTimeoutSec) * time.Second))

	api := r.Group("/api")
	api.GET("/health", s.health)

	// Auth
	api.POST("/auth/register", s.authRegister)
	api.POST("/auth/login", s.authLogin)
	api.POST("/auth/refresh", s.authRefresh)

	// Protected Routes (User Token)
	authorized := api.Group("")
	authorized.Use(AuthMiddleware(svc))
	{
		authorized.POST("/auth/logout", s.authLogout)

		authorized.GET("/users/profile", s.getProfile)
		authorized.PUT("/users/profile", s.updateProfile)
		authorized.DELETE("/users/profile", s.deleteProfile)

		authorized.GET("/transactions", s.listTransactions)
		authorized.POST("/transactions", s.createTransaction)
		authorized.GET("/transactions/:id", s.getTransaction)
		authorized.PUT("/transactions/:id", s.updateTransaction)
		authorized.DELETE("/transactions/:id", s.deleteTransaction)

		authorized.GET("/categories", s.listCategories)
		authorized.POST("/categories", s.createCategory)
		authorized.GET("/categories/:id", s.getCategory)
		authorized.PUT("/categories/:id", s.updateCategory)
		authorized.DELETE("/categories/:id", s.deleteCategory)
		authorized.GET("/categories/:id/summary", s.categorySummary)

		authorized.GET("/budgets", s.listBudgets)
		authorized.POST("/budgets", s.setBudget)
		authorized.GET("/budgets/history/:categoryId", s.budgetHistory)
		authorized.GET("/budgets/:id", s.getBudget)
		authorized.PUT("/budgets/:id", s.updateBudget)
		authorized.DELETE("/budgets/:id", s.deleteBudget)

		authorized.GET("/recurring", s.listRecurring)
		authorized.POST("/recurring", s.createRecurring)
		authorized.POST("/recurring/generate", s.generateRecurring)
		authorized.GET("/recurring/:id", s.getRecurring)
		authorized.PUT("/recurring/:id", s.updateRecurring)
		authorized.DELETE("/recurring/:id", s.deleteRecurring)

		authorized.GET("/dashboard", s.dashboard)
		authorized.GET("/analytics/income-expense", s.incomeExpense)
		authorized.GET("/analytics/category-breakdown", s.categoryBreakdown)
		authorized.GET("/analytics/daily-trends", s.dailyTrends)

		authorized.GET("/reports/csv", s.reportCSV)
		authorized.GET("/reports/pdf", s.reportPDF)
	}

	return r, nil
}

func (s *Server) health(c *gin.Context) {
	if err := s.svc.Ping(c.Request.Context()); err != nil {
		s.log.WithError(err).Warn("health check failed")
		c.JSON(503, gin.H{"ok": false})
		return
	}
	c.JSON(200, gin.H{"ok": true})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, ledger.ErrValidation
	}
	return i, nil
}

// monthYear reads ?month=&year=, defaulting to the server's current month.
func (s *Server) monthYear(c *gin.Context) (int, int, bool) {
	now := s.now().UTC()
	month, err := queryInt(c, "month", int(now.Month()))
	if err != nil {
		c.JSON(400, gin.H{"error": "month must be a number"})
		return 0, 0, false
	}
	year, err := queryInt(c, "year", now.Year())
	if err != nil {
		c.JSON(400, gin.H{"error": "year must be a number"})
		return 0, 0, false
	}
	return month, year, true
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// transactionFilter reads the listing/report query parameters. endDate is
// inclusive of the whole day.
func transactionFilter(c *gin.Context) (store.TransactionFilter, bool) {
	var f store.TransactionFilter
	if t := strings.TrimSpace(c.Query("type")); t != "" && !strings.EqualFold(t, "all") {
		f.Kind = t
	}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		id, err := strconv.ParseUint(cat, 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "category must be an id"})
			return f, false
		}
		f.CategoryID = uint(id)
	}
	if v := c.Query("startDate"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			c.JSON(400, gin.H{"error": "invalid startDate"})
			return f, false
		}
		f.From = &from
	}
	if v := c.Query("endDate"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			c.JSON(400, gin.H{"error": "invalid endDate"})
			return f, false
		}
		if len(strings.TrimSpace(v)) == len("2006-01-02") {
			to = to.AddDate(0, 0, 1)
		}
		f.To = &to
	}
	return f, true
}

type transactionBody struct {
	Amount     *decimal.Decimal `json:"amount"`
	Kind       *string          `json:"type"`
	CategoryID *uint            `json:"category_id"`
	Date       *string          `json:"date"`
	Notes      *string          `json:"notes"`
}

func (b transactionBody) date() (*time.Time, error) {
	if b.Date == nil {
		return nil, nil
	}
	t, err := parseDate(*b.Date)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Server) listTransactions(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	f, ok := transactionFilter(c)
	if !ok {
		return
	}
	var err error
	if f.Page, err = queryInt(c, "page", 1); err != nil {
		c.JSON(400, gin.H{"error": "page must be a number"})
		return
	}
	if f.Limit, err = queryInt(c, "limit", service.DefaultPageSize); err != nil {
		c.JSON(400, gin.H{"error": "limit must be a number"})
		return
	}
	f.Sort = c.DefaultQuery("sort", "-date")

	page, err := s.svc.ListTransactions(c.Request.Context(), userID, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, page)
}

func (s *Server) createTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	raw, ok := s.validBody(c, "transaction")
	if !ok {
		return
	}
	var body transactionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := body.date()
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid date"})
		return
	}
	in := service.TransactionInput{Amount: *body.Amount, Kind: *body.Kind, CategoryID: *body.CategoryID, Date: s.now()}
	if date != nil {
		in.Date = *date
	}
	if body.Notes != nil {
		in.Notes = *body.Notes
	}

	txn, err := s.svc.CreateTransaction(c.Request.Context(), userID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, txn)
}

func (s *Server) getTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	txn, err := s.svc.Transaction(c.Request.Context(), userID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, txn)
}

func (s *Server) updateTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw, ok := s.validBody(c, "transaction_update")
	if !ok {
		return
	}
	var body transactionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	date, err := body.date()
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid date"})
		return
	}

	txn, err := s.svc.UpdateTransaction(c.Request.Context(), userID, id, service.TransactionPatch{
		Amount:     body.Amount,
		Kind:       body.Kind,
		CategoryID: body.CategoryID,
		Date:       date,
		Notes:      body.Notes,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, txn)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteTransaction(c.Request.Context(), userID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "transaction deleted"})
}
