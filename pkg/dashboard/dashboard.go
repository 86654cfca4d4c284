// Package dashboard composes the monthly budget summary shown on the dashboard.
package dashboard

import (
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/calculation"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/stats"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/shopspring/decimal"
)

type WarningKind string

const (
	WarningSavingsShortfall WarningKind = "savings_shortfall"
	WarningOverBudget       WarningKind = "over_budget"
)

type Warning struct {
	Kind     WarningKind
	BudgetId int
	Message  string
}

type Input struct {
	Month         period.Month
	Transactions  []transaction.Transaction
	Categories    []category.Category
	SystemBudgets []budget.SystemBudget
	CustomBudgets []budget.CustomBudget
}

// Options carry the display settings. Amounts are multiplied by Rate and formatted in Currency.
// A zero Rate means no conversion.
type Options struct {
	Currency string
	Rate     decimal.Decimal
}

type Summary struct {
	Month           period.Month
	Currency        string
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	RemainingBudget decimal.Decimal
	Priorities      []stats.PriorityTotals
	SystemBudgets   []stats.BudgetStats
	// CustomBudgets holds the custom and mini budgets overlapping the month that are not completed.
	CustomBudgets          []stats.BudgetStats
	Savings                *stats.SavingsProgress
	CrossPeriodSettlements []calculation.CrossPeriodSettlement
	Warnings               []Warning
}
