package budget

import (
	"time"

	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindSystem Kind = "system"
	KindCustom Kind = "custom"
	KindMini   Kind = "mini"
)

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// SystemBudget is the automatically managed envelope for one priority in one calendar month.
type SystemBudget struct {
	Id               int
	Name             string
	BudgetAmount     decimal.Decimal
	StartDate        time.Time
	EndDate          time.Time
	SystemBudgetType priority.Priority
}

// CustomBudget is a user defined goal. Transactions assigned to it stay assigned no matter
// when they are paid. Mini budgets are the same thing without category allocations.
type CustomBudget struct {
	Id              int
	Kind            Kind
	Name            string
	AllocatedAmount decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	Status          Status
	Allocations     []Allocation
}

// Allocation is a per-category share of a custom budget.
type Allocation struct {
	Id              int
	CustomBudgetId  int
	CategoryId      int
	AllocatedAmount decimal.Decimal
}

// Contains reports whether the date falls inside the budget period, both bounds inclusive.
func (b SystemBudget) Contains(date time.Time) bool {
	return period.Contains(date, b.StartDate, b.EndDate)
}

// FindSystemBudget returns the system budget with the given id.
func FindSystemBudget(budgets []SystemBudget, id int) (SystemBudget, bool) {
	for _, b := range budgets {
		if b.Id == id {
			return b, true
		}
	}
	return SystemBudget{}, false
}

// FindCustomBudget returns the custom or mini budget with the given id.
func FindCustomBudget(budgets []CustomBudget, id int) (CustomBudget, bool) {
	for _, b := range budgets {
		if b.Id == id {
			return b, true
		}
	}
	return CustomBudget{}, false
}

var systemBudgetNames = map[priority.Priority]string{
	priority.Needs:   "Needs",
	priority.Wants:   "Wants",
	priority.Savings: "Savings",
}

// SystemBudgetName returns the display name of a system budget, e.g. "Needs Jan 2025".
func SystemBudgetName(p priority.Priority, monthLabel string) string {
	return systemBudgetNames[p] + " " + monthLabel
}
