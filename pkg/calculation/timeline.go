package calculation

import (
	"time"

	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/money"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/shopspring/decimal"
)

const UnknownBudgetName = "Unknown Budget"

// CommitmentTotal sums the expenses assigned to the bucket, paid or not, whatever their dates.
func CommitmentTotal(bucketId int, expenses []transaction.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range expenses {
		if t.IsExpense() && t.BucketIs(bucketId) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// SettlementTotal sums the transactions of the given type whose effective date (paid date
// once paid, commitment date before) falls inside [start, end].
func SettlementTotal(transactions []transaction.Transaction, start, end time.Time, transactionType transaction.Type) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.Type != transactionType {
			continue
		}
		if period.Contains(t.EffectiveDate(), start, end) {
			total = total.Add(t.Amount)
		}
	}
	return money.Round(total)
}

// CrossPeriodResult describes an expense committed in one period and paid in another.
type CrossPeriodResult struct {
	IsCrossPeriod bool
	// OriginalPeriod is the month label of the commitment date, e.g. "Jan 2025".
	OriginalPeriod string
	BucketName     string
}

// DetectCrossPeriod reports whether a paid expense was settled inside [periodStart, periodEnd]
// while its commitment date lies outside of it.
func DetectCrossPeriod(t transaction.Transaction, periodStart, periodEnd time.Time, customBudgets []budget.CustomBudget) CrossPeriodResult {
	if !t.IsExpense() || !t.HasPaidDate() || t.CustomBudgetId == nil || t.Date.IsZero() {
		return CrossPeriodResult{}
	}
	if !period.Contains(t.PaidDate, periodStart, periodEnd) || period.Contains(t.Date, periodStart, periodEnd) {
		return CrossPeriodResult{}
	}
	name := UnknownBudgetName
	if b, found := budget.FindCustomBudget(customBudgets, *t.CustomBudgetId); found {
		name = b.Name
	}
	return CrossPeriodResult{
		IsCrossPeriod:  true,
		OriginalPeriod: period.Label(t.Date),
		BucketName:     name,
	}
}

// CrossPeriodSettlement pairs a transaction with its cross period detection result.
type CrossPeriodSettlement struct {
	Transaction transaction.Transaction
	CrossPeriodResult
}

// CrossPeriodSettlements lists every transaction settled in the period but committed outside of it.
func CrossPeriodSettlements(transactions []transaction.Transaction, start, end time.Time, customBudgets []budget.CustomBudget) []CrossPeriodSettlement {
	settlements := make([]CrossPeriodSettlement, 0)
	for _, t := range transactions {
		result := DetectCrossPeriod(t, start, end, customBudgets)
		if result.IsCrossPeriod {
			settlements = append(settlements, CrossPeriodSettlement{Transaction: t, CrossPeriodResult: result})
		}
	}
	return settlements
}

// MigrateOnPaidDateChange returns the bucket an expense belongs to once paid on newPaidDate.
//
// Only expenses assigned to a system budget move: they go to the system budget of the same
// type whose month contains newPaidDate. Without such a budget, or for expenses without a
// bucket, with an unknown bucket or assigned to a custom or mini budget, the current bucket
// is returned unchanged.
func MigrateOnPaidDateChange(expense transaction.Transaction, newPaidDate time.Time, systemBudgets []budget.SystemBudget) *int {
	if expense.CustomBudgetId == nil {
		return nil
	}
	current, found := budget.FindSystemBudget(systemBudgets, *expense.CustomBudgetId)
	if !found {
		return expense.CustomBudgetId
	}
	for _, b := range systemBudgets {
		if b.SystemBudgetType == current.SystemBudgetType && b.Contains(newPaidDate) {
			id := b.Id
			return &id
		}
	}
	return expense.CustomBudgetId
}
