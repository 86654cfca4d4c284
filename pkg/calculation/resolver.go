// Package calculation reconciles transactions against budgets on two timelines.
//
// The Commitment View attributes an expense to the period of its commitment date, the
// Settlement View to the period its money actually moved. System budgets follow the
// settlement month (an expense assigned to one migrates when its paid date moves to another
// month), custom and mini budgets keep their expenses no matter when they are paid.
//
// Everything in here is pure: inputs are slices loaded by the caller, nothing is persisted.
package calculation

import (
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/transaction"
)

// Resolver resolves the priority of many transactions against the same categories and budgets.
type Resolver struct {
	categories    map[int]category.Category
	customBudgets map[int]budget.CustomBudget
}

func NewResolver(categories []category.Category, customBudgets []budget.CustomBudget) Resolver {
	byId := make(map[int]budget.CustomBudget, len(customBudgets))
	for _, b := range customBudgets {
		byId[b.Id] = b
	}
	return Resolver{categories: category.ById(categories), customBudgets: byId}
}

// Resolve returns the priority a transaction counts towards:
//  1. assigned to a custom or mini budget: wants
//  2. explicit financial priority
//  3. the priority of its category
//  4. none, the transaction is left out of priority totals
//
// References that do not resolve fall through to the next rule.
func (r Resolver) Resolve(t transaction.Transaction) priority.Priority {
	if t.CustomBudgetId != nil {
		if _, ok := r.customBudgets[*t.CustomBudgetId]; ok {
			return priority.Wants
		}
	}
	if t.FinancialPriority.IsValid() {
		return t.FinancialPriority
	}
	if t.CategoryId != nil {
		if c, ok := r.categories[*t.CategoryId]; ok && c.Priority.IsValid() {
			return c.Priority
		}
	}
	return priority.None
}

// ResolvePriority resolves a single transaction. Use a Resolver for many.
func ResolvePriority(t transaction.Transaction, categories []category.Category, customBudgets []budget.CustomBudget) priority.Priority {
	return NewResolver(categories, customBudgets).Resolve(t)
}
