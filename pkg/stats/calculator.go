package stats

import (
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/calculation"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/money"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/shopspring/decimal"
)

// Input is everything needed to compute the statistics of a month.
type Input struct {
	Month         period.Month
	Transactions  []transaction.Transaction
	Categories    []category.Category
	SystemBudgets []budget.SystemBudget
	CustomBudgets []budget.CustomBudget
}

// ComputeSystemBudgetStats counts the expenses whose resolved priority matches the budget type.
// Paid expenses count in the budget holding their paid date, unpaid ones in the budget
// holding their commitment date.
func ComputeSystemBudgetStats(b budget.SystemBudget, transactions []transaction.Transaction, resolver calculation.Resolver) BudgetStats {
	paid := decimal.Zero
	unpaid := decimal.Zero
	for _, t := range transactions {
		if !t.IsExpense() || resolver.Resolve(t) != b.SystemBudgetType {
			continue
		}
		if t.IsPaid {
			if b.Contains(t.EffectiveDate()) {
				paid = paid.Add(t.Amount)
			}
			continue
		}
		if b.Contains(t.Date) {
			unpaid = unpaid.Add(t.Amount)
		}
	}

	stats := newBudgetStats(b.BudgetAmount, paid, unpaid, b.SystemBudgetType)
	stats.BudgetId = b.Id
	stats.Name = b.Name
	stats.Kind = budget.KindSystem
	return stats
}

// ComputeCustomBudgetStats counts every expense assigned to the budget, whatever its dates.
func ComputeCustomBudgetStats(b budget.CustomBudget, transactions []transaction.Transaction, categories []category.Category) BudgetStats {
	paid := decimal.Zero
	unpaid := decimal.Zero
	var assigned []transaction.Transaction
	for _, t := range transactions {
		if !t.IsExpense() || !t.BucketIs(b.Id) {
			continue
		}
		assigned = append(assigned, t)
		if t.IsPaid {
			paid = paid.Add(t.Amount)
		} else {
			unpaid = unpaid.Add(t.Amount)
		}
	}

	stats := newBudgetStats(b.AllocatedAmount, paid, unpaid, priority.Wants)
	stats.BudgetId = b.Id
	stats.Name = b.Name
	stats.Kind = b.Kind
	stats.Savings = nil
	stats.StatusLabel = drainingLabel(stats.IsOver)
	stats.Allocations = ComputeAllocationStats(b, assigned, categories)
	return stats
}

// ComputeAllocationStats compares each category allocation of a custom budget with the
// expenses of that category assigned to the budget.
func ComputeAllocationStats(b budget.CustomBudget, assigned []transaction.Transaction, categories []category.Category) []AllocationStats {
	if len(b.Allocations) == 0 {
		return nil
	}
	names := category.ById(categories)
	allocations := make([]AllocationStats, 0, len(b.Allocations))
	for _, a := range b.Allocations {
		spent := decimal.Zero
		for _, t := range assigned {
			if t.CategoryId != nil && *t.CategoryId == a.CategoryId {
				spent = spent.Add(t.Amount)
			}
		}
		remaining := a.AllocatedAmount.Sub(spent)
		allocations = append(allocations, AllocationStats{
			CategoryId:   a.CategoryId,
			CategoryName: names[a.CategoryId].Name,
			Allocated:    a.AllocatedAmount,
			Spent:        money.Round(spent),
			Remaining:    money.Round(remaining),
			IsOver:       remaining.IsNegative(),
		})
	}
	return allocations
}

// ComputeSavingsProgress compares actual savings with the target. Unlike spending budgets,
// falling short is the problem and going over is good.
func ComputeSavingsProgress(target, actual decimal.Decimal) SavingsProgress {
	progress := SavingsProgress{
		Target:    target,
		Actual:    actual,
		Shortfall: money.NonNegative(target.Sub(actual)),
		Surplus:   money.NonNegative(actual.Sub(target)),
	}
	switch {
	case progress.Shortfall.IsPositive():
		progress.StatusLabel = StatusShortfall
	case progress.Surplus.IsPositive():
		progress.StatusLabel = StatusSurplus
	default:
		progress.StatusLabel = StatusOnTarget
	}
	return progress
}

// PriorityRollup totals the system budget statistics per priority, ordered needs, wants, savings.
func PriorityRollup(systemStats []BudgetStats, income decimal.Decimal) []PriorityTotals {
	totals := make([]PriorityTotals, 0, len(priority.All))
	for _, p := range priority.All {
		rollup := PriorityTotals{Priority: p, Allocated: decimal.Zero, Paid: decimal.Zero, Unpaid: decimal.Zero}
		for _, s := range systemStats {
			if s.Priority != p {
				continue
			}
			rollup.Allocated = rollup.Allocated.Add(s.Allocated)
			rollup.Paid = rollup.Paid.Add(s.PaidAmount)
			rollup.Unpaid = rollup.Unpaid.Add(s.UnpaidAmount)
		}
		rollup.Total = rollup.Paid.Add(rollup.Unpaid)
		rollup.PercentOfIncome = money.Percentage(rollup.Total, income)
		totals = append(totals, rollup)
	}
	return totals
}

// ComputeMonth computes the statistics of every budget of the month. Custom budgets are
// those whose period overlaps the month.
func ComputeMonth(in Input) MonthStats {
	resolver := calculation.NewResolver(in.Categories, in.CustomBudgets)
	start, end := in.Month.Start(), in.Month.End()

	systemStats := make([]BudgetStats, 0, len(in.SystemBudgets))
	var savings *SavingsProgress
	for _, b := range in.SystemBudgets {
		if !period.Overlaps(b.StartDate, b.EndDate, start, end) {
			continue
		}
		s := ComputeSystemBudgetStats(b, in.Transactions, resolver)
		if s.Savings != nil && savings == nil {
			savings = s.Savings
		}
		systemStats = append(systemStats, s)
	}

	customStats := make([]BudgetStats, 0, len(in.CustomBudgets))
	for _, b := range in.CustomBudgets {
		if period.Overlaps(b.StartDate, b.EndDate, start, end) {
			customStats = append(customStats, ComputeCustomBudgetStats(b, in.Transactions, in.Categories))
		}
	}

	income := calculation.SettlementTotal(in.Transactions, start, end, transaction.TypeIncome)
	return MonthStats{
		Month:         in.Month,
		Income:        income,
		SystemBudgets: systemStats,
		CustomBudgets: customStats,
		Priorities:    PriorityRollup(systemStats, income),
		Savings:       savings,
	}
}

func newBudgetStats(allocated, paid, unpaid decimal.Decimal, p priority.Priority) BudgetStats {
	paid = money.Round(paid)
	unpaid = money.Round(unpaid)
	used := paid.Add(unpaid)
	remaining := allocated.Sub(used)
	stats := BudgetStats{
		Priority:         p,
		Allocated:        allocated,
		PaidAmount:       paid,
		UnpaidAmount:     unpaid,
		Remaining:        remaining,
		IsOver:           remaining.IsNegative(),
		PercentageUsed:   money.Percentage(used, allocated),
		DisplayRemaining: remaining.Abs(),
	}
	if p == priority.Savings {
		progress := ComputeSavingsProgress(allocated, used)
		stats.Savings = &progress
		stats.StatusLabel = progress.StatusLabel
	} else {
		stats.StatusLabel = drainingLabel(stats.IsOver)
	}
	return stats
}

func drainingLabel(isOver bool) string {
	if isOver {
		return StatusOverBudget
	}
	return StatusWithinBudget
}
