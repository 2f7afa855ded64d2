package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"finance-tracker-go/internal/auth"
	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/database"
	"finance-tracker-go/internal/logging"
	"finance-tracker-go/internal/service"
	"finance-tracker-go/internal/store"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type ServerTestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
	food   uint
	salary uint
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	db, err := database.OpenMemory()
	require.NoError(s.T(), err)

	cfg := &config.Config{AllowOrigins: "*", ReqTimeoutSec: 5}
	tokens := auth.NewTokens("server-test-secret-123", time.Hour, 24*time.Hour)
	svc := service.New(store.New(db), tokens, logging.Discard(), "USD")

	s.router, err = NewServer(cfg, svc, logging.Discard(), WithClock(func() time.Time { return testNow }))
	s.Require().NoError(err)

	s.token = s.register("ann@example.com")

	var categories []struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	s.decode(s.do("GET", "/api/categories", s.token, ""), 200, &categories)
	for _, c := range categories {
		switch c.Name {
		case "Food & Dining":
			s.food = c.ID
		case "Salary":
			s.salary = c.ID
		}
	}
	s.Require().NotZero(s.food)
	s.Require().NotZero(s.salary)
}

func (s *ServerTestSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, status int, out any) {
	s.Require().Equal(status, w.Code, w.Body.String())
	if out != nil {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
	}
}

func (s *ServerTestSuite) register(email string) string {
	var session struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	body := fmt.Sprintf(`{"name":"Ann","email":%q,"password":"secret1"}`, email)
	s.decode(s.do("POST", "/api/auth/register", "", body), 201, &session)
	s.Require().NotEmpty(session.AccessToken)
	s.Require().NotEmpty(session.RefreshToken)
	return session.AccessToken
}

func (s *ServerTestSuite) createExpense(amount string, date string) uint {
	var txn struct {
		ID uint `json:"id"`
	}
	body := fmt.Sprintf(`{"amount":%s,"type":"expense","category_id":%d,"date":%q}`, amount, s.food, date)
	s.decode(s.do("POST", "/api/transactions", s.token, body), 201, &txn)
	return txn.ID
}

type budgetView struct {
	ID         uint            `json:"id"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Percentage int64           `json:"percentage"`
	Alert      *struct {
		Type string `json:"type"`
	} `json:"alert"`
}

func (s *ServerTestSuite) TestHealth() {
	var body map[string]bool
	s.decode(s.do("GET", "/api/health", "", ""), 200, &body)
	s.True(body["ok"])
}

func (s *ServerTestSuite) TestAuthRequired() {
	w := s.do("GET", "/api/transactions", "", "")
	s.Equal(401, w.Code)

	w = s.do("GET", "/api/transactions", "not-a-token", "")
	s.Equal(401, w.Code)
}

func (s *ServerTestSuite) TestRegister_DuplicateEmail() {
	w := s.do("POST", "/api/auth/register", "", `{"name":"Ann","email":"ANN@example.com","password":"secret1"}`)
	s.Equal(409, w.Code)
}

func (s *ServerTestSuite) TestLoginAndRefresh() {
	var session struct {
		RefreshToken string `json:"refresh_token"`
	}
	s.decode(s.do("POST", "/api/auth/login", "", `{"email":"ann@example.com","password":"secret1"}`), 200, &session)

	w := s.do("POST", "/api/auth/login", "", `{"email":"ann@example.com","password":"wrong-pass"}`)
	s.Equal(401, w.Code)

	var refreshed struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	s.decode(s.do("POST", "/api/auth/refresh", "", fmt.Sprintf(`{"refresh_token":%q}`, session.RefreshToken)), 200, &refreshed)
	s.NotEqual(session.RefreshToken, refreshed.RefreshToken)

	// rotated tokens cannot be replayed
	w = s.do("POST", "/api/auth/refresh", "", fmt.Sprintf(`{"refresh_token":%q}`, session.RefreshToken))
	s.Equal(401, w.Code)
}

func (s *ServerTestSuite) TestProfileUpdate() {
	var out struct {
		User struct {
			Name           string `json:"name"`
			Currency       string `json:"currency"`
			FinancialGoals struct {
				MonthlySavings decimal.Decimal `json:"monthly_savings"`
			} `json:"financial_goals"`
		} `json:"user"`
	}
	body := `{"name":"Ann B","currency":"eur","financial_goals":{"monthly_savings":250}}`
	s.decode(s.do("PUT", "/api/users/profile", s.token, body), 200, &out)
	s.Equal("Ann B", out.User.Name)
	s.Equal("EUR", out.User.Currency)
	s.True(out.User.FinancialGoals.MonthlySavings.Equal(decimal.NewFromInt(250)))
}

func (s *ServerTestSuite) TestTransaction_SchemaRejectsBadBody() {
	body := fmt.Sprintf(`{"amount":-5,"type":"expense","category_id":%d}`, s.food)
	var out map[string]any
	s.decode(s.do("POST", "/api/transactions", s.token, body), 400, &out)
	s.Equal("schema_invalid", out["error"])

	body = fmt.Sprintf(`{"amount":5,"type":"income","category_id":%d}`, s.food)
	w := s.do("POST", "/api/transactions", s.token, body)
	s.Equal(400, w.Code, "kind must match the category")
}

func (s *ServerTestSuite) TestTransaction_AmountIsAJSONNumber() {
	body := fmt.Sprintf(`{"amount":1.234,"type":"expense","category_id":%d,"date":"2024-03-04"}`, s.food)
	w := s.do("POST", "/api/transactions", s.token, body)
	s.Require().Equal(201, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"amount":1.234`)

	body = fmt.Sprintf(`{"amount":0.00001,"type":"expense","category_id":%d}`, s.food)
	var out map[string]any
	s.decode(s.do("POST", "/api/transactions", s.token, body), 400, &out)
	s.Contains(out["error"], "decimal places")
}

func (s *ServerTestSuite) TestTransactions_ListPaginates() {
	for i := 1; i <= 3; i++ {
		s.createExpense("10", fmt.Sprintf("2024-03-0%d", i))
	}

	var page struct {
		Transactions []struct {
			ID uint `json:"id"`
		} `json:"transactions"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"total_pages"`
	}
	s.decode(s.do("GET", "/api/transactions?page=1&limit=2", s.token, ""), 200, &page)
	s.Len(page.Transactions, 2)
	s.EqualValues(3, page.Total)
	s.EqualValues(2, page.TotalPages)

	s.decode(s.do("GET", "/api/transactions?startDate=2024-03-02&endDate=2024-03-02", s.token, ""), 200, &page)
	s.EqualValues(1, page.Total)
}

func (s *ServerTestSuite) TestTransactions_OtherUserCannotSee() {
	id := s.createExpense("10", "2024-03-01")
	other := s.register("bob@example.com")

	w := s.do("GET", fmt.Sprintf("/api/transactions/%d", id), other, "")
	s.Equal(404, w.Code)

	w = s.do("DELETE", fmt.Sprintf("/api/transactions/%d", id), other, "")
	s.Equal(404, w.Code)
}

func (s *ServerTestSuite) TestBudget_TracksSpending() {
	var created budgetView
	body := fmt.Sprintf(`{"category_id":%d,"month":3,"year":2024,"limit":100}`, s.food)
	s.decode(s.do("POST", "/api/budgets", s.token, body), 201, &created)
	s.True(created.Spent.IsZero())

	id := s.createExpense("85.50", "2024-03-10")
	s.createExpense("20", "2024-04-01")

	var budgets []budgetView
	s.decode(s.do("GET", "/api/budgets?month=3&year=2024", s.token, ""), 200, &budgets)
	s.Require().Len(budgets, 1)
	s.True(budgets[0].Spent.Equal(decimal.RequireFromString("85.5")), budgets[0].Spent.String())
	s.EqualValues(86, budgets[0].Percentage)
	s.Require().NotNil(budgets[0].Alert)
	s.Equal("warning", budgets[0].Alert.Type)

	// moving the expense out of March releases the budget
	s.decode(s.do("PUT", fmt.Sprintf("/api/transactions/%d", id), s.token, `{"date":"2024-02-28"}`), 200, nil)
	var after budgetView
	s.decode(s.do("GET", fmt.Sprintf("/api/budgets/%d", created.ID), s.token, ""), 200, &after)
	s.True(after.Spent.IsZero(), after.Spent.String())
	s.Nil(after.Alert)

	// posting the same period again replaces the limit
	body = fmt.Sprintf(`{"category_id":%d,"month":3,"year":2024,"limit":50}`, s.food)
	var replaced budgetView
	s.decode(s.do("POST", "/api/budgets", s.token, body), 200, &replaced)
	s.Equal(created.ID, replaced.ID)
	s.True(replaced.Limit.Equal(decimal.NewFromInt(50)))
}

func (s *ServerTestSuite) TestCategory_DeleteInUse() {
	var category struct {
		ID uint `json:"id"`
	}
	s.decode(s.do("POST", "/api/categories", s.token, `{"name":"Pets","type":"expense","color":"#112233"}`), 201, &category)

	body := fmt.Sprintf(`{"amount":12,"type":"expense","category_id":%d,"date":"2024-03-02"}`, category.ID)
	s.decode(s.do("POST", "/api/transactions", s.token, body), 201, nil)

	w := s.do("DELETE", fmt.Sprintf("/api/categories/%d", category.ID), s.token, "")
	s.Equal(409, w.Code)

	w = s.do("DELETE", fmt.Sprintf("/api/categories/%d", s.food), s.token, "")
	s.Equal(400, w.Code, "default categories are read-only")
}

func (s *ServerTestSuite) TestRecurring_GenerateOncePerMonth() {
	body := fmt.Sprintf(`{"amount":3000,"type":"income","category_id":%d,"day_of_month":1,"notes":"Pay"}`, s.salary)
	s.decode(s.do("POST", "/api/recurring", s.token, body), 201, nil)

	var first struct {
		Generated    int `json:"generated"`
		Transactions []struct {
			Notes string `json:"notes"`
			Date  string `json:"date"`
		} `json:"transactions"`
	}
	s.decode(s.do("POST", "/api/recurring/generate", s.token, ""), 200, &first)
	s.Require().Equal(1, first.Generated)
	s.Equal("Pay (Auto-generated)", first.Transactions[0].Notes)
	s.True(strings.HasPrefix(first.Transactions[0].Date, "2024-03-01"), first.Transactions[0].Date)

	var second struct {
		Generated int `json:"generated"`
	}
	s.decode(s.do("POST", "/api/recurring/generate", s.token, ""), 200, &second)
	s.Zero(second.Generated)
}

func (s *ServerTestSuite) TestDashboardAndAnalytics() {
	s.createExpense("40", "2024-03-05")
	body := fmt.Sprintf(`{"amount":1000,"type":"income","category_id":%d,"date":"2024-03-01"}`, s.salary)
	s.decode(s.do("POST", "/api/transactions", s.token, body), 201, nil)

	var dash struct {
		Month   int             `json:"month"`
		Income  decimal.Decimal `json:"income"`
		Balance decimal.Decimal `json:"balance"`
	}
	s.decode(s.do("GET", "/api/dashboard", s.token, ""), 200, &dash)
	s.Equal(3, dash.Month)
	s.True(dash.Income.Equal(decimal.NewFromInt(1000)))
	s.True(dash.Balance.Equal(decimal.NewFromInt(960)))

	var breakdown struct {
		Data []struct {
			Total decimal.Decimal `json:"total"`
		} `json:"data"`
	}
	s.decode(s.do("GET", "/api/analytics/category-breakdown?month=3&year=2024", s.token, ""), 200, &breakdown)
	s.Require().Len(breakdown.Data, 1)
	s.True(breakdown.Data[0].Total.Equal(decimal.NewFromInt(40)))

	w := s.do("GET", "/api/analytics/income-expense?period=weekly", s.token, "")
	s.Equal(400, w.Code)

	w = s.do("GET", "/api/analytics/daily-trends?month=13&year=2024", s.token, "")
	s.Equal(400, w.Code)
}

func (s *ServerTestSuite) TestReports() {
	s.createExpense("12.5", "2024-03-05")

	w := s.do("GET", "/api/reports/csv", s.token, "")
	s.Require().Equal(200, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/csv")
	s.Contains(w.Header().Get("Content-Disposition"), "transactions.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	s.Require().Len(lines, 2)
	s.Equal("Date,Type,Category,Amount,Notes", strings.TrimSpace(lines[0]))
	s.Contains(lines[1], "Food & Dining")

	w = s.do("GET", "/api/reports/pdf?type=expense", s.token, "")
	s.Require().Equal(200, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func (s *ServerTestSuite) TestDeleteProfile() {
	s.decode(s.do("DELETE", "/api/users/profile", s.token, ""), 200, nil)
	w := s.do("GET", "/api/users/profile", s.token, "")
	s.Equal(401, w.Code)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}
