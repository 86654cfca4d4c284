package dashboard

import (
	"fmt"

	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/calculation"
	"github.com/klokku/budgetwise/pkg/currency"
	"github.com/klokku/budgetwise/pkg/money"
	"github.com/klokku/budgetwise/pkg/stats"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/shopspring/decimal"
)

// Compose builds the summary of a month. Income and expenses follow the Settlement View:
// paid transactions count in the month they were paid, unpaid ones in the month they were
// committed.
func Compose(in Input, opts Options) Summary {
	start, end := in.Month.Start(), in.Month.End()
	monthStats := stats.ComputeMonth(stats.Input{
		Month:         in.Month,
		Transactions:  in.Transactions,
		Categories:    in.Categories,
		SystemBudgets: in.SystemBudgets,
		CustomBudgets: in.CustomBudgets,
	})

	expenses := calculation.SettlementTotal(in.Transactions, start, end, transaction.TypeExpense)
	summary := Summary{
		Month:                  in.Month,
		Currency:               opts.Currency,
		MonthlyIncome:          monthStats.Income,
		MonthlyExpenses:        expenses,
		RemainingBudget:        monthStats.Income.Sub(expenses),
		Priorities:             monthStats.Priorities,
		SystemBudgets:          monthStats.SystemBudgets,
		CustomBudgets:          openBudgets(monthStats.CustomBudgets, in.CustomBudgets),
		Savings:                monthStats.Savings,
		CrossPeriodSettlements: calculation.CrossPeriodSettlements(in.Transactions, start, end, in.CustomBudgets),
	}
	if opts.Rate.IsPositive() && !opts.Rate.Equal(decimal.NewFromInt(1)) {
		summary = convert(summary, opts.Rate)
	}
	summary.Warnings = warnings(summary)
	return summary
}

func openBudgets(computed []stats.BudgetStats, budgets []budget.CustomBudget) []stats.BudgetStats {
	open := make([]stats.BudgetStats, 0, len(computed))
	for _, s := range computed {
		b, found := budget.FindCustomBudget(budgets, s.BudgetId)
		if found && b.Status == budget.StatusCompleted {
			continue
		}
		open = append(open, s)
	}
	return open
}

func warnings(s Summary) []Warning {
	var result []Warning
	if s.Savings != nil && s.Savings.Shortfall.IsPositive() {
		result = append(result, Warning{
			Kind:    WarningSavingsShortfall,
			Message: fmt.Sprintf("Savings are %s short of the %s target", currency.Format(s.Savings.Shortfall, s.Currency), currency.Format(s.Savings.Target, s.Currency)),
		})
	}
	for _, b := range append(append([]stats.BudgetStats(nil), s.SystemBudgets...), s.CustomBudgets...) {
		if !b.IsOver || b.Savings != nil {
			continue
		}
		result = append(result, Warning{
			Kind:     WarningOverBudget,
			BudgetId: b.BudgetId,
			Message:  fmt.Sprintf("%s is over budget by %s", b.Name, currency.Format(b.DisplayRemaining, s.Currency)),
		})
	}
	return result
}

func convert(s Summary, rate decimal.Decimal) Summary {
	c := func(amount decimal.Decimal) decimal.Decimal {
		return money.Round(amount.Mul(rate))
	}
	s.MonthlyIncome = c(s.MonthlyIncome)
	s.MonthlyExpenses = c(s.MonthlyExpenses)
	s.RemainingBudget = c(s.RemainingBudget)

	priorities := make([]stats.PriorityTotals, len(s.Priorities))
	for i, p := range s.Priorities {
		p.Allocated, p.Paid, p.Unpaid, p.Total = c(p.Allocated), c(p.Paid), c(p.Unpaid), c(p.Total)
		priorities[i] = p
	}
	s.Priorities = priorities
	s.SystemBudgets = convertBudgetStats(s.SystemBudgets, c)
	s.CustomBudgets = convertBudgetStats(s.CustomBudgets, c)
	s.Savings = convertSavings(s.Savings, c)

	settlements := make([]calculation.CrossPeriodSettlement, len(s.CrossPeriodSettlements))
	for i, settlement := range s.CrossPeriodSettlements {
		settlement.Transaction.Amount = c(settlement.Transaction.Amount)
		settlements[i] = settlement
	}
	s.CrossPeriodSettlements = settlements
	return s
}

func convertBudgetStats(budgets []stats.BudgetStats, c func(decimal.Decimal) decimal.Decimal) []stats.BudgetStats {
	converted := make([]stats.BudgetStats, len(budgets))
	for i, b := range budgets {
		b.Allocated = c(b.Allocated)
		b.PaidAmount = c(b.PaidAmount)
		b.UnpaidAmount = c(b.UnpaidAmount)
		b.Remaining = c(b.Remaining)
		b.DisplayRemaining = c(b.DisplayRemaining)
		b.Savings = convertSavings(b.Savings, c)
		allocations := make([]stats.AllocationStats, len(b.Allocations))
		for j, a := range b.Allocations {
			a.Allocated, a.Spent, a.Remaining = c(a.Allocated), c(a.Spent), c(a.Remaining)
			allocations[j] = a
		}
		if b.Allocations == nil {
			allocations = nil
		}
		b.Allocations = allocations
		converted[i] = b
	}
	return converted
}

func convertSavings(progress *stats.SavingsProgress, c func(decimal.Decimal) decimal.Decimal) *stats.SavingsProgress {
	if progress == nil {
		return nil
	}
	converted := *progress
	converted.Target = c(converted.Target)
	converted.Actual = c(converted.Actual)
	converted.Shortfall = c(converted.Shortfall)
	converted.Surplus = c(converted.Surplus)
	return &converted
}
