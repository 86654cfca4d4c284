package stats

import (
	"context"
	"fmt"

	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/klokku/budgetwise/pkg/user"
	log "github.com/sirupsen/logrus"
)

type StatsService interface {
	GetMonthStats(ctx context.Context, month period.Month) (MonthStats, error)
}

type TransactionReader interface {
	GetAll(ctx context.Context) ([]transaction.Transaction, error)
}

type CategoryReader interface {
	GetAll(ctx context.Context) ([]category.Category, error)
}

type BudgetReader interface {
	GetSystemBudgetsForMonth(ctx context.Context, month period.Month) ([]budget.SystemBudget, error)
	GetCustomBudgets(ctx context.Context) ([]budget.CustomBudget, error)
}

type StatsServiceImpl struct {
	transactions TransactionReader
	categories   CategoryReader
	budgets      BudgetReader
}

func NewStatsServiceImpl(transactions TransactionReader, categories CategoryReader, budgets BudgetReader) *StatsServiceImpl {
	return &StatsServiceImpl{
		transactions: transactions,
		categories:   categories,
		budgets:      budgets,
	}
}

// GetMonthStats computes the statistics of the month from the stored budgets. It does not
// create missing system budgets; the dashboard does that.
func (s *StatsServiceImpl) GetMonthStats(ctx context.Context, month period.Month) (MonthStats, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return MonthStats{}, fmt.Errorf("failed to get current user: %w", err)
	}

	transactions, err := s.transactions.GetAll(ctx)
	if err != nil {
		return MonthStats{}, err
	}
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return MonthStats{}, err
	}
	systemBudgets, err := s.budgets.GetSystemBudgetsForMonth(ctx, month)
	if err != nil {
		return MonthStats{}, err
	}
	customBudgets, err := s.budgets.GetCustomBudgets(ctx)
	if err != nil {
		return MonthStats{}, err
	}
	log.Tracef("computing stats of %s for user %d: %d transactions, %d system budgets, %d custom budgets",
		month, userId, len(transactions), len(systemBudgets), len(customBudgets))

	return ComputeMonth(Input{
		Month:         month,
		Transactions:  transactions,
		Categories:    categories,
		SystemBudgets: systemBudgets,
		CustomBudgets: customBudgets,
	}), nil
}
