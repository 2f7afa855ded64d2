package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"finance-tracker-go/internal/database"
	"finance-tracker-go/internal/ledger"
	"finance-tracker-go/internal/models"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	user  *models.User
	food  *models.Category
	taxi  *models.Category
	pay   *models.Category
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	db, err := database.OpenMemory()
	require.NoError(s.T(), err, "failed to create test database")
	s.ctx = context.Background()
	s.store = New(db)

	s.user = &models.User{UUID: "user-1", Email: "ann@example.com", Name: "Ann", Currency: "USD"}
	seed := []models.Category{
		{Name: "Food", Kind: models.KindExpense, Icon: "🍔", Color: "#ef4444", IsDefault: true},
		{Name: "Transport", Kind: models.KindExpense, Icon: "🚗", Color: "#f59e0b", IsDefault: true},
		{Name: "Salary", Kind: models.KindIncome, Icon: "💰", Color: "#10b981", IsDefault: true},
	}
	s.Require().NoError(s.store.CreateUser(s.ctx, s.user, seed))
	s.food, s.taxi, s.pay = &seed[0], &seed[1], &seed[2]
}

func (s *StoreTestSuite) addTxn(cat *models.Category, amt string, at time.Time) *models.Transaction {
	txn := &models.Transaction{
		UserID:     s.user.ID,
		CategoryID: cat.ID,
		Kind:       cat.Kind,
		Amount:     decimal.RequireFromString(amt),
		OccurredAt: at,
	}
	s.Require().NoError(s.store.CreateTransaction(s.ctx, txn))
	return txn
}

func (s *StoreTestSuite) assertDecimal(want string, got decimal.Decimal) {
	s.True(decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func (s *StoreTestSuite) TestCreateUserSeedsCategories() {
	categories, err := s.store.ListCategories(s.ctx, s.user.ID, "")
	s.Require().NoError(err)
	s.Len(categories, 3)
	s.Equal("Food", categories[0].Name)

	income, err := s.store.ListCategories(s.ctx, s.user.ID, models.KindIncome)
	s.Require().NoError(err)
	s.Len(income, 1)
}

func (s *StoreTestSuite) TestDuplicateEmailIsConflict() {
	err := s.store.CreateUser(s.ctx, &models.User{UUID: "user-2", Email: "ann@example.com"}, nil)
	s.True(errors.Is(err, ledger.ErrConflict), "got %v", err)
}

func (s *StoreTestSuite) TestCategoriesAreOwnerScoped() {
	other := &models.User{UUID: "user-2", Email: "bob@example.com"}
	s.Require().NoError(s.store.CreateUser(s.ctx, other, nil))

	_, err := s.store.CategoryByID(s.ctx, other.ID, s.food.ID)
	s.True(errors.Is(err, ledger.ErrNotFound))

	shared := &models.Category{Name: "Gifts", Kind: models.KindExpense}
	s.Require().NoError(s.store.CreateCategory(s.ctx, shared))
	got, err := s.store.CategoryByID(s.ctx, other.ID, shared.ID)
	s.Require().NoError(err)
	s.Equal("Gifts", got.Name)

	taken, err := s.store.CategoryNameTaken(s.ctx, s.user.ID, "food", models.KindExpense, 0)
	s.Require().NoError(err)
	s.True(taken)
	taken, err = s.store.CategoryNameTaken(s.ctx, s.user.ID, "Food", models.KindExpense, s.food.ID)
	s.Require().NoError(err)
	s.False(taken)
}

func (s *StoreTestSuite) TestDeleteCategoryWithTransactionsIsRejected() {
	s.addTxn(s.food, "10", date(2024, 3, 1))
	_, err := s.store.UpsertBudget(s.ctx, &models.Budget{UserID: s.user.ID, CategoryID: s.food.ID, Month: 3, Year: 2024, LimitAmount: decimal.NewFromInt(100)})
	s.Require().NoError(err)

	err = s.store.DeleteCategory(s.ctx, s.user.ID, s.food.ID)
	s.True(errors.Is(err, ledger.ErrConflict))

	_, err = s.store.CategoryByID(s.ctx, s.user.ID, s.food.ID)
	s.NoError(err)
	budgets, err := s.store.ListBudgets(s.ctx, s.user.ID, 3, 2024)
	s.Require().NoError(err)
	s.Len(budgets, 1)
}

func (s *StoreTestSuite) TestDeleteCategoryCascadesBudgets() {
	_, err := s.store.UpsertBudget(s.ctx, &models.Budget{UserID: s.user.ID, CategoryID: s.taxi.ID, Month: 3, Year: 2024, LimitAmount: decimal.NewFromInt(100)})
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteCategory(s.ctx, s.user.ID, s.taxi.ID))

	budgets, err := s.store.ListBudgets(s.ctx, s.user.ID, 3, 2024)
	s.Require().NoError(err)
	s.Empty(budgets)
	s.True(errors.Is(s.store.DeleteCategory(s.ctx, s.user.ID, s.taxi.ID), ledger.ErrNotFound))
}

func (s *StoreTestSuite) TestListTransactionsFiltersAndPages() {
	s.addTxn(s.food, "5", date(2024, 3, 1))
	s.addTxn(s.food, "15", date(2024, 3, 2))
	s.addTxn(s.taxi, "25", date(2024, 3, 3))
	s.addTxn(s.pay, "1000", date(2024, 3, 4))
	s.addTxn(s.food, "35", date(2024, 4, 1))

	all, total, err := s.store.ListTransactions(s.ctx, s.user.ID, TransactionFilter{})
	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Len(all, 5)
	s.assertDecimal("35", all[0].Amount)
	s.Require().NotNil(all[0].Category)
	s.Equal("Food", all[0].Category.Name)

	from, to := date(2024, 3, 1).Truncate(24*time.Hour), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	page, total, err := s.store.ListTransactions(s.ctx, s.user.ID, TransactionFilter{
		Kind: models.KindExpense, From: &from, To: &to, Sort: "amount", Page: 2, Limit: 2,
	})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(page, 1)
	s.assertDecimal("25", page[0].Amount)

	byCat, total, err := s.store.ListTransactions(s.ctx, s.user.ID, TransactionFilter{CategoryID: s.food.ID})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(byCat, 3)
}

func (s *StoreTestSuite) TestSumExpensesAndSetBudgetSpent() {
	s.addTxn(s.food, "50.10", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	s.addTxn(s.food, "30", time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	s.addTxn(s.food, "99", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	s.addTxn(s.taxi, "99", date(2024, 3, 5))

	march, _ := ledger.MonthPeriod(3, 2024)
	sum, err := s.store.SumExpenses(s.ctx, s.user.ID, s.food.ID, march)
	s.Require().NoError(err)
	s.assertDecimal("80.10", sum)

	empty, _ := ledger.MonthPeriod(5, 2024)
	sum, err = s.store.SumExpenses(s.ctx, s.user.ID, s.food.ID, empty)
	s.Require().NoError(err)
	s.True(sum.IsZero())

	budget := &models.Budget{UserID: s.user.ID, CategoryID: s.food.ID, Month: 3, Year: 2024, LimitAmount: decimal.NewFromInt(200)}
	_, err = s.store.UpsertBudget(s.ctx, budget)
	s.Require().NoError(err)
	s.Require().NoError(s.store.SetBudgetSpent(s.ctx, s.user.ID, s.food.ID, 3, 2024, decimal.RequireFromString("80.10")))

	got, err := s.store.BudgetByID(s.ctx, s.user.ID, budget.ID)
	s.Require().NoError(err)
	s.assertDecimal("80.10", got.Spent)

	// no budget for April: silently ignored
	s.NoError(s.store.SetBudgetSpent(s.ctx, s.user.ID, s.food.ID, 4, 2024, decimal.NewFromInt(1)))
}

func (s *StoreTestSuite) TestUpsertBudgetKeepsOneRowPerPeriod() {
	first := &models.Budget{UserID: s.user.ID, CategoryID: s.food.ID, Month: 3, Year: 2024, LimitAmount: decimal.NewFromInt(100)}
	created, err := s.store.UpsertBudget(s.ctx, first)
	s.Require().NoError(err)
	s.True(created)

	second := &models.Budget{UserID: s.user.ID, CategoryID: s.food.ID, Month: 3, Year: 2024, LimitAmount: decimal.NewFromInt(250)}
	created, err = s.store.UpsertBudget(s.ctx, second)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)
	s.assertDecimal("250", second.LimitAmount)

	budgets, err := s.store.ListBudgets(s.ctx, s.user.ID, 3, 2024)
	s.Require().NoError(err)
	s.Len(budgets, 1)

	limit, spent, err := s.store.BudgetTotals(s.ctx, s.user.ID, 3, 2024)
	s.Require().NoError(err)
	s.assertDecimal("250", limit)
	s.True(spent.IsZero())
}

func (s *StoreTestSuite) TestListBudgetsByCategoryName() {
	apparel := &models.Category{UserID: &s.user.ID, Name: "Apparel", Kind: models.KindExpense}
	s.Require().NoError(s.store.CreateCategory(s.ctx, apparel))
	for _, cat := range []*models.Category{s.taxi, s.food, apparel} {
		_, err := s.store.UpsertBudget(s.ctx, &models.Budget{UserID: s.user.ID, CategoryID: cat.ID, Month: 3, Year: 2024, LimitAmount: decimal.NewFromInt(100)})
		s.Require().NoError(err)
	}

	budgets, err := s.store.ListBudgets(s.ctx, s.user.ID, 3, 2024)
	s.Require().NoError(err)
	s.Require().Len(budgets, 3)
	names := []string{budgets[0].Category.Name, budgets[1].Category.Name, budgets[2].Category.Name}
	s.Equal([]string{"Apparel", "Food", "Transport"}, names)
}

func (s *StoreTestSuite) TestBudgetHistoryNewestFirst() {
	for _, p := range [][2]int{{11, 2023}, {1, 2024}, {12, 2023}, {2, 2024}} {
		_, err := s.store.UpsertBudget(s.ctx, &models.Budget{UserID: s.user.ID, CategoryID: s.food.ID, Month: p[0], Year: p[1], LimitAmount: decimal.NewFromInt(10)})
		s.Require().NoError(err)
	}
	history, err := s.store.BudgetHistory(s.ctx, s.user.ID, s.food.ID, 3)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal([]int{2, 1, 12}, []int{history[0].Month, history[1].Month, history[2].Month})
}

func (s *StoreTestSuite) TestCategoryBreakdown() {
	s.addTxn(s.food, "50", date(2024, 3, 1))
	s.addTxn(s.food, "30", date(2024, 3, 2))
	s.addTxn(s.taxi, "20", date(2024, 3, 3))
	s.addTxn(s.pay, "500", date(2024, 3, 3))
	s.addTxn(s.taxi, "999", date(2024, 4, 3))

	march, _ := ledger.MonthPeriod(3, 2024)
	rows, err := s.store.CategoryBreakdown(s.ctx, s.user.ID, models.KindExpense, march)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("Food", rows[0].Name)
	s.assertDecimal("80", rows[0].Total)
	s.Equal(int64(2), rows[0].Count)
	s.Equal("🍔", rows[0].Icon)
	s.Equal("Transport", rows[1].Name)
	s.assertDecimal("20", rows[1].Total)
	s.Equal(int64(1), rows[1].Count)
}

func (s *StoreTestSuite) TestIncomeExpenseSeriesAndTotals() {
	s.addTxn(s.food, "10", date(2024, 1, 5))
	s.addTxn(s.food, "20", date(2024, 1, 6))
	s.addTxn(s.pay, "100", date(2024, 2, 1))
	s.addTxn(s.food, "7", date(2023, 12, 31))

	series, err := s.store.IncomeExpenseSeries(s.ctx, s.user.ID, ledger.YearPeriod(2024), true)
	s.Require().NoError(err)
	s.Require().Len(series, 2)
	s.Equal(1, series[0].Month)
	s.Equal(models.KindExpense, series[0].Kind)
	s.assertDecimal("30", series[0].Total)
	s.Equal(2, series[1].Month)
	s.Equal(models.KindIncome, series[1].Kind)

	yearly, err := s.store.IncomeExpenseSeries(s.ctx, s.user.ID, ledger.YearsPeriod(2019, 2024), false)
	s.Require().NoError(err)
	s.Require().Len(yearly, 3)
	s.Equal(2023, yearly[0].Year)
	s.Equal(0, yearly[0].Month)

	totals, err := s.store.KindTotals(s.ctx, s.user.ID, ledger.YearPeriod(2024))
	s.Require().NoError(err)
	s.Require().Len(totals, 2)
	s.Equal(models.KindExpense, totals[0].Kind)
	s.assertDecimal("30", totals[0].Total)
	s.Equal(int64(2), totals[0].Count)
}

func (s *StoreTestSuite) TestDailyTrend() {
	s.addTxn(s.food, "10", date(2024, 3, 5))
	s.addTxn(s.food, "5", date(2024, 3, 5))
	s.addTxn(s.pay, "100", date(2024, 3, 5))
	s.addTxn(s.food, "1", date(2024, 3, 1))

	march, _ := ledger.MonthPeriod(3, 2024)
	trend, err := s.store.DailyTrend(s.ctx, s.user.ID, march)
	s.Require().NoError(err)
	s.Require().Len(trend, 3)
	s.Equal(1, trend[0].Day)
	s.Equal(5, trend[1].Day)
	s.Equal(models.KindExpense, trend[1].Kind)
	s.assertDecimal("15", trend[1].Total)
	s.Equal(models.KindIncome, trend[2].Kind)
}

func (s *StoreTestSuite) TestMaterializeClaimsOncePerMonth() {
	tmpl := &models.RecurringTemplate{
		UserID: s.user.ID, Amount: decimal.NewFromInt(1200), Kind: models.KindExpense,
		CategoryID: s.food.ID, Frequency: models.FrequencyMonthly, DayOfMonth: 1, Enabled: true,
	}
	s.Require().NoError(s.store.CreateTemplate(s.ctx, tmpl))
	asOf := date(2024, 3, 20)

	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txn := ledger.Instantiate(tmpl, asOf)
			ok, err := s.store.Materialize(s.ctx, tmpl, &txn, asOf)
			s.NoError(err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	claimed := 0
	for _, ok := range results {
		if ok {
			claimed++
		}
	}
	s.Equal(1, claimed)

	_, total, err := s.store.ListTransactions(s.ctx, s.user.ID, TransactionFilter{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)

	stored, err := s.store.TemplateByID(s.ctx, s.user.ID, tmpl.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.LastGeneratedAt)
	s.True(stored.LastGeneratedAt.Equal(asOf))

	next := date(2024, 4, 2)
	txn := ledger.Instantiate(tmpl, next)
	ok, err := s.store.Materialize(s.ctx, tmpl, &txn, next)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *StoreTestSuite) TestDeleteUserRemovesOwnedData() {
	s.addTxn(s.food, "10", date(2024, 3, 1))
	_, err := s.store.UpsertBudget(s.ctx, &models.Budget{UserID: s.user.ID, CategoryID: s.food.ID, Month: 3, Year: 2024, LimitAmount: decimal.NewFromInt(10)})
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteUser(s.ctx, s.user.ID))

	_, err = s.store.UserByID(s.ctx, s.user.ID)
	s.True(errors.Is(err, ledger.ErrNotFound))
	categories, err := s.store.ListCategories(s.ctx, s.user.ID, "")
	s.Require().NoError(err)
	s.Empty(categories)
	ids, err := s.store.ListUserIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StoreTestSuite) TestRefreshToken() {
	token := "refresh-1"
	s.Require().NoError(s.store.SetRefreshToken(s.ctx, s.user.ID, &token))
	got, err := s.store.UserByEmail(s.ctx, " ANN@example.com ")
	s.Require().NoError(err)
	s.Require().NotNil(got.RefreshToken)
	s.Equal(token, *got.RefreshToken)

	s.Require().NoError(s.store.SetRefreshToken(s.ctx, s.user.ID, nil))
	got, err = s.store.UserByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Nil(got.RefreshToken)

	s.True(errors.Is(s.store.SetRefreshToken(s.ctx, 999, nil), ledger.ErrNotFound))
}
