package stats

import (
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
)

const (
	StatusOverBudget   = "Over Budget"
	StatusWithinBudget = "Within Budget"
	StatusShortfall    = "Shortfall"
	StatusSurplus      = "Surplus"
	StatusOnTarget     = "On Target"
)

// BudgetStats is the consumption of one budget. Needs and wants budgets drain: Remaining is
// what is left to spend. The savings budget fills up instead, see Savings.
type BudgetStats struct {
	BudgetId     int
	Name         string
	Kind         budget.Kind
	Priority     priority.Priority
	Allocated    decimal.Decimal
	PaidAmount   decimal.Decimal
	UnpaidAmount decimal.Decimal
	// Remaining is Allocated minus paid and unpaid expenses, negative when over budget.
	Remaining      decimal.Decimal
	IsOver         bool
	PercentageUsed decimal.Decimal
	// DisplayRemaining is Remaining, or the size of the overage when over budget.
	DisplayRemaining decimal.Decimal
	StatusLabel      string
	Savings          *SavingsProgress
	Allocations      []AllocationStats
}

func (s BudgetStats) Used() decimal.Decimal {
	return s.PaidAmount.Add(s.UnpaidAmount)
}

// SavingsProgress compares what was put aside with the savings target.
type SavingsProgress struct {
	Target      decimal.Decimal
	Actual      decimal.Decimal
	Shortfall   decimal.Decimal
	Surplus     decimal.Decimal
	StatusLabel string
}

// PriorityTotals rolls up the system budgets of one priority.
type PriorityTotals struct {
	Priority        priority.Priority
	Allocated       decimal.Decimal
	Paid            decimal.Decimal
	Unpaid          decimal.Decimal
	Total           decimal.Decimal
	PercentOfIncome decimal.Decimal
}

// AllocationStats is the spending of one category within a custom budget.
type AllocationStats struct {
	CategoryId   int
	CategoryName string
	Allocated    decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	IsOver       bool
}

type MonthStats struct {
	Month         period.Month
	Income        decimal.Decimal
	SystemBudgets []BudgetStats
	CustomBudgets []BudgetStats
	Priorities    []PriorityTotals
	Savings       *SavingsProgress
}
