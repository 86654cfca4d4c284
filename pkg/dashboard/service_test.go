package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/budgetwise/internal/utils"
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/currency"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transactionsStub struct {
	transactions []transaction.Transaction
	err          error
}

func (s *transactionsStub) GetAll(ctx context.Context) ([]transaction.Transaction, error) {
	return s.transactions, s.err
}

type categoriesStub struct {
	categories []category.Category
}

func (s *categoriesStub) GetAll(ctx context.Context) ([]category.Category, error) {
	return s.categories, nil
}

type budgetsStub struct {
	goals         []budget.Goal
	customBudgets []budget.CustomBudget
}

func (s *budgetsStub) GetGoals(ctx context.Context) ([]budget.Goal, error) {
	return s.goals, nil
}

func (s *budgetsStub) GetCustomBudgets(ctx context.Context) ([]budget.CustomBudget, error) {
	return s.customBudgets, nil
}

var rates = currency.NewRateTable([]currency.ExchangeRate{
	{FromCurrency: "USD", ToCurrency: "EUR", Rate: decimal.RequireFromString("0.92")},
})

var budgetRepo *budget.RepositoryStub
var transactions *transactionsStub
var service *ServiceImpl

func setupService() {
	budgetRepo = budget.NewRepositoryStub()
	transactions = &transactionsStub{transactions: januaryTransactions}
	service = NewService(
		transactions,
		&categoriesStub{categories: categories},
		&budgetsStub{goals: budget.DefaultGoals(), customBudgets: []budget.CustomBudget{vacationFund}},
		budget.NewSystemBudgetSync(budgetRepo, decimal.Zero),
		rates,
		"USD",
	)
}

func contextWithSettings(settings user.Settings) context.Context {
	return user.WithUser(context.Background(), user.User{Id: 5, Username: "jane", Settings: settings})
}

func TestServiceImpl_GetSummary(t *testing.T) {
	t.Run("should create the system budgets of the month from its income", func(t *testing.T) {
		// given
		setupService()

		// when
		summary, err := service.GetSummary(contextWithSettings(user.Settings{}), january)

		// then
		require.NoError(t, err)
		require.Len(t, summary.SystemBudgets, 3)
		assertAmount(t, "3100", summary.SystemBudgets[0].Allocated)
		assertAmount(t, "1860", summary.SystemBudgets[1].Allocated)
		assertAmount(t, "1240", summary.SystemBudgets[2].Allocated)
		stored, _ := budgetRepo.GetSystemBudgets(context.Background(), 5)
		assert.Len(t, stored, 3)
		assert.Equal(t, "USD", summary.Currency)
		require.Len(t, summary.CustomBudgets, 1)
	})

	t.Run("should pin needs in fixed lifestyle mode", func(t *testing.T) {
		// given
		setupService()
		settings := user.Settings{FixedLifestyleMode: true, FixedNeedsAmount: decimal.NewFromInt(3000)}

		// when
		summary, err := service.GetSummary(contextWithSettings(settings), january)

		// then
		require.NoError(t, err)
		require.Len(t, summary.SystemBudgets, 3)
		assert.Equal(t, priority.Needs, summary.SystemBudgets[0].Priority)
		assertAmount(t, "3000", summary.SystemBudgets[0].Allocated)
		assertAmount(t, "1340", summary.SystemBudgets[2].Allocated)
	})

	t.Run("should display amounts in the user's currency", func(t *testing.T) {
		// given
		setupService()

		// when
		summary, err := service.GetSummary(contextWithSettings(user.Settings{Currency: "EUR"}), january)

		// then
		require.NoError(t, err)
		assert.Equal(t, "EUR", summary.Currency)
		assertAmount(t, "5704", summary.MonthlyIncome)
		stored, _ := budgetRepo.GetSystemBudgets(context.Background(), 5)
		require.Len(t, stored, 3)
		assertAmount(t, "3100", stored[0].BudgetAmount)
	})

	t.Run("should fall back to the base currency without a rate", func(t *testing.T) {
		// given
		setupService()

		// when
		summary, err := service.GetSummary(contextWithSettings(user.Settings{Currency: "CHF"}), january)

		// then
		require.NoError(t, err)
		assert.Equal(t, "USD", summary.Currency)
		assertAmount(t, "6200", summary.MonthlyIncome)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		// given
		setupService()

		// when
		_, err := service.GetSummary(context.Background(), january)

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
	})

	t.Run("should return error when transactions cannot be loaded", func(t *testing.T) {
		// given
		setupService()
		transactions.err = errors.New("connection lost")

		// when
		_, err := service.GetSummary(contextWithSettings(user.Settings{}), january)

		// then
		assert.Error(t, err)
		assert.Equal(t, 0, budgetRepo.Writes())
	})
}

func TestHandler_GetSummary(t *testing.T) {
	clock := &utils.MockClock{FixedNow: date(2025, 1, 20)}

	serve := func(target string) *httptest.ResponseRecorder {
		setupService()
		router := mux.NewRouter()
		router.HandleFunc("/api/dashboard", NewHandler(service, clock).GetSummary).Methods("GET")
		request := httptest.NewRequest(http.MethodGet, target, nil)
		request = request.WithContext(contextWithSettings(user.Settings{}))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("should default to the current month", func(t *testing.T) {
		// when
		recorder := serve("/api/dashboard")

		// then
		require.Equal(t, http.StatusOK, recorder.Code)
		var dto SummaryDTO
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&dto))
		assert.Equal(t, "2025-01", dto.Month)
		assertAmount(t, "6200", dto.MonthlyIncome)
		assertAmount(t, "4580", dto.RemainingBudget)
		assert.Len(t, dto.SystemBudgets, 3)
		require.Len(t, dto.Warnings, 1)
		assert.Equal(t, "savings_shortfall", dto.Warnings[0].Kind)
	})

	t.Run("should summarize the requested month", func(t *testing.T) {
		// when
		recorder := serve("/api/dashboard?month=2025-02")

		// then
		require.Equal(t, http.StatusOK, recorder.Code)
		var dto SummaryDTO
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&dto))
		assert.Equal(t, period.Month{Year: 2025, Month: 2}.String(), dto.Month)
		assertAmount(t, "0", dto.MonthlyIncome)
	})

	t.Run("should reject an invalid month", func(t *testing.T) {
		// when
		recorder := serve("/api/dashboard?month=January")

		// then
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
