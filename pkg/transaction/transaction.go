package transaction

import (
	"errors"
	"time"

	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

var (
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidType     = errors.New("transaction type must be income or expense")
	ErrPaidWithoutDate = errors.New("paid transaction requires a paid date")
	ErrMissingDate     = errors.New("transaction date is required")
)

// Transaction is an income or expense record. Date is the commitment date, when the
// expense was incurred; PaidDate is when money actually moved and is only set while IsPaid.
// CustomBudgetId ("bucket") may point at a system budget or at a custom/mini budget.
type Transaction struct {
	Id                int
	Title             string
	Amount            decimal.Decimal
	Type              Type
	Date              time.Time
	IsPaid            bool
	PaidDate          time.Time
	CategoryId        *int
	FinancialPriority priority.Priority
	CustomBudgetId    *int
}

func (t Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

func (t Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// HasPaidDate reports whether the transaction is paid and the payment date is known.
func (t Transaction) HasPaidDate() bool {
	return t.IsPaid && !t.PaidDate.IsZero()
}

// EffectiveDate is the settlement date: PaidDate once paid, the commitment date before that.
func (t Transaction) EffectiveDate() time.Time {
	if t.HasPaidDate() {
		return t.PaidDate
	}
	return t.Date
}

// BucketIs reports whether the transaction is assigned to the given budget.
func (t Transaction) BucketIs(budgetId int) bool {
	return t.CustomBudgetId != nil && *t.CustomBudgetId == budgetId
}

func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.Type != TypeIncome && t.Type != TypeExpense {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if t.IsPaid && t.PaidDate.IsZero() {
		return ErrPaidWithoutDate
	}
	if t.FinancialPriority != priority.None && !t.FinancialPriority.IsValid() {
		return priority.ErrInvalidPriority
	}
	return nil
}

// Normalize truncates dates to calendar days and drops a paid date left on an unpaid record.
func (t Transaction) Normalize() Transaction {
	if !t.Date.IsZero() {
		t.Date = period.DateOf(t.Date)
	}
	if !t.IsPaid {
		t.PaidDate = time.Time{}
	} else if !t.PaidDate.IsZero() {
		t.PaidDate = period.DateOf(t.PaidDate)
	}
	return t
}
