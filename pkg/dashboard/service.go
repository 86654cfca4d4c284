package dashboard

import (
	"context"
	"fmt"

	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/calculation"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/currency"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetSummary(ctx context.Context, month period.Month) (Summary, error)
}

type TransactionReader interface {
	GetAll(ctx context.Context) ([]transaction.Transaction, error)
}

type CategoryReader interface {
	GetAll(ctx context.Context) ([]category.Category, error)
}

type BudgetReader interface {
	GetGoals(ctx context.Context) ([]budget.Goal, error)
	GetCustomBudgets(ctx context.Context) ([]budget.CustomBudget, error)
}

type SystemBudgetSyncer interface {
	Sync(ctx context.Context, userId int, month period.Month, income decimal.Decimal, goals []budget.Goal, policy budget.AllocationPolicy) []budget.SystemBudget
}

type ServiceImpl struct {
	transactions TransactionReader
	categories   CategoryReader
	budgets      BudgetReader
	syncer       SystemBudgetSyncer
	rates        currency.RateTable
	baseCurrency string
}

func NewService(
	transactions TransactionReader,
	categories CategoryReader,
	budgets BudgetReader,
	syncer SystemBudgetSyncer,
	rates currency.RateTable,
	baseCurrency string,
) *ServiceImpl {
	return &ServiceImpl{
		transactions: transactions,
		categories:   categories,
		budgets:      budgets,
		syncer:       syncer,
		rates:        rates,
		baseCurrency: baseCurrency,
	}
}

// GetSummary brings the system budgets of the month in line with the month's income and
// composes the summary in the user's display currency.
func (s *ServiceImpl) GetSummary(ctx context.Context, month period.Month) (Summary, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get current user: %w", err)
	}

	transactions, err := s.transactions.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	customBudgets, err := s.budgets.GetCustomBudgets(ctx)
	if err != nil {
		return Summary{}, err
	}
	goals, err := s.budgets.GetGoals(ctx)
	if err != nil {
		return Summary{}, err
	}

	income := calculation.SettlementTotal(transactions, month.Start(), month.End(), transaction.TypeIncome)
	policy := budget.PolicyFor(currentUser.Settings)
	systemBudgets := s.syncer.Sync(ctx, currentUser.Id, month, income, goals, policy)

	return Compose(Input{
		Month:         month,
		Transactions:  transactions,
		Categories:    categories,
		SystemBudgets: systemBudgets,
		CustomBudgets: customBudgets,
	}, s.displayOptions(currentUser.Settings)), nil
}

func (s *ServiceImpl) displayOptions(settings user.Settings) Options {
	display := settings.Currency
	if display == "" {
		display = s.baseCurrency
	}
	rate, err := s.rates.Rate(s.baseCurrency, display)
	if err != nil {
		log.Warnf("cannot display amounts in %s, falling back to %s: %v", display, s.baseCurrency, err)
		return Options{Currency: s.baseCurrency, Rate: decimal.NewFromInt(1)}
	}
	return Options{Currency: display, Rate: rate}
}
