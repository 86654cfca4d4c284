package budget

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type RepositoryStub struct {
	nextId        int
	systemBudgets map[int][]SystemBudget
	customBudgets map[int][]CustomBudget
	goals         map[int][]Goal
	// failWrites makes every create/update return an error, simulating an unavailable database.
	failWrites bool
	writes     int
}

func NewRepositoryStub() *RepositoryStub {
	s := &RepositoryStub{}
	s.Reset()
	return s
}

func (s *RepositoryStub) GetSystemBudgets(ctx context.Context, userId int) ([]SystemBudget, error) {
	budgets := append([]SystemBudget(nil), s.systemBudgets[userId]...)
	sort.SliceStable(budgets, func(i, j int) bool {
		return budgets[i].StartDate.Before(budgets[j].StartDate)
	})
	return budgets, nil
}

func (s *RepositoryStub) GetSystemBudgetsForPeriod(ctx context.Context, userId int, start, end time.Time) ([]SystemBudget, error) {
	var budgets []SystemBudget
	for _, b := range s.systemBudgets[userId] {
		if !b.StartDate.After(end) && !b.EndDate.Before(start) {
			budgets = append(budgets, b)
		}
	}
	return budgets, nil
}

func (s *RepositoryStub) UpsertSystemBudget(ctx context.Context, userId int, budget SystemBudget) (SystemBudget, error) {
	if s.failWrites {
		return SystemBudget{}, errors.New("database unavailable")
	}
	s.writes++
	for i, b := range s.systemBudgets[userId] {
		if b.SystemBudgetType == budget.SystemBudgetType && b.StartDate.Equal(budget.StartDate) {
			s.systemBudgets[userId][i].BudgetAmount = budget.BudgetAmount
			return s.systemBudgets[userId][i], nil
		}
	}
	s.nextId++
	budget.Id = s.nextId
	s.systemBudgets[userId] = append(s.systemBudgets[userId], budget)
	return budget, nil
}

func (s *RepositoryStub) UpdateSystemBudgetAmount(ctx context.Context, userId int, id int, amount decimal.Decimal) error {
	if s.failWrites {
		return errors.New("database unavailable")
	}
	s.writes++
	for i, b := range s.systemBudgets[userId] {
		if b.Id == id {
			s.systemBudgets[userId][i].BudgetAmount = amount
			return nil
		}
	}
	return ErrBudgetNotFound
}

func (s *RepositoryStub) GetCustomBudgets(ctx context.Context, userId int) ([]CustomBudget, error) {
	return append([]CustomBudget(nil), s.customBudgets[userId]...), nil
}

func (s *RepositoryStub) GetCustomBudget(ctx context.Context, userId int, id int) (CustomBudget, error) {
	b, found := FindCustomBudget(s.customBudgets[userId], id)
	if !found {
		return CustomBudget{}, ErrBudgetNotFound
	}
	return b, nil
}

func (s *RepositoryStub) StoreCustomBudget(ctx context.Context, userId int, budget CustomBudget) (CustomBudget, error) {
	if s.failWrites {
		return CustomBudget{}, errors.New("database unavailable")
	}
	s.nextId++
	budget.Id = s.nextId
	for i := range budget.Allocations {
		s.nextId++
		budget.Allocations[i].Id = s.nextId
		budget.Allocations[i].CustomBudgetId = budget.Id
	}
	s.customBudgets[userId] = append(s.customBudgets[userId], budget)
	return budget, nil
}

func (s *RepositoryStub) UpdateCustomBudgetStatus(ctx context.Context, userId int, id int, status Status) error {
	if s.failWrites {
		return errors.New("database unavailable")
	}
	for i, b := range s.customBudgets[userId] {
		if b.Id == id {
			s.customBudgets[userId][i].Status = status
			return nil
		}
	}
	return ErrBudgetNotFound
}

func (s *RepositoryStub) DeleteCustomBudget(ctx context.Context, userId int, id int) (bool, error) {
	for i, b := range s.customBudgets[userId] {
		if b.Id == id {
			s.customBudgets[userId] = append(s.customBudgets[userId][:i], s.customBudgets[userId][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *RepositoryStub) GetGoals(ctx context.Context, userId int) ([]Goal, error) {
	return s.goals[userId], nil
}

func (s *RepositoryStub) StoreGoals(ctx context.Context, userId int, goals []Goal) error {
	if s.failWrites {
		return errors.New("database unavailable")
	}
	s.goals[userId] = goals
	return nil
}

// AddSystemBudget stores a budget as is, bypassing the upsert logic.
func (s *RepositoryStub) AddSystemBudget(userId int, budget SystemBudget) SystemBudget {
	s.nextId++
	budget.Id = s.nextId
	s.systemBudgets[userId] = append(s.systemBudgets[userId], budget)
	return budget
}

func (s *RepositoryStub) SetFailWrites(fail bool) {
	s.failWrites = fail
}

// Writes returns the number of successful create/update calls on system budgets.
func (s *RepositoryStub) Writes() int {
	return s.writes
}

func (s *RepositoryStub) Reset() {
	s.nextId = 0
	s.systemBudgets = map[int][]SystemBudget{}
	s.customBudgets = map[int][]CustomBudget{}
	s.goals = map[int][]Goal{}
	s.failWrites = false
	s.writes = 0
}
