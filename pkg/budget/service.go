package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/klokku/budgetwise/internal/database"
	"github.com/klokku/budgetwise/internal/event_bus"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidStatusTransition = errors.New("invalid custom budget status transition")

// statusTransitions lists the statuses a custom budget may move to from each status.
// A completed budget can be reopened.
var statusTransitions = map[Status][]Status{
	StatusPlanned:   {StatusActive, StatusCompleted},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {StatusActive},
}

type Service interface {
	GetGoals(ctx context.Context) ([]Goal, error)
	UpdateGoals(ctx context.Context, goals []Goal) ([]Goal, error)
	UpdateGoalSplits(ctx context.Context, split1, split2 int) ([]Goal, error)
	GetSystemBudgets(ctx context.Context) ([]SystemBudget, error)
	GetSystemBudgetsForMonth(ctx context.Context, month period.Month) ([]SystemBudget, error)
	GetCustomBudgets(ctx context.Context) ([]CustomBudget, error)
	CreateCustomBudget(ctx context.Context, budget CustomBudget) (CustomBudget, error)
	UpdateCustomBudgetStatus(ctx context.Context, id int, status Status) (CustomBudget, error)
	// DeleteCustomBudget removes a custom or mini budget together with the transactions assigned to it.
	DeleteCustomBudget(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo       Repository
	eventBus   *event_bus.EventBus
	transactor database.Transactor
}

func NewService(repo Repository, eventBus *event_bus.EventBus, transactor database.Transactor) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus, transactor: transactor}
}

func (s *ServiceImpl) GetGoals(ctx context.Context) ([]Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.GetGoals(ctx, userId)
	if err != nil {
		return nil, err
	}
	byPriority := GoalsByPriority(stored)
	goals := make([]Goal, 0, len(priority.All))
	for _, p := range priority.All {
		goals = append(goals, byPriority[p])
	}
	return goals, nil
}

func (s *ServiceImpl) UpdateGoals(ctx context.Context, goals []Goal) ([]Goal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validateGoals(goals); err != nil {
		return nil, err
	}
	if err := s.repo.StoreGoals(ctx, userId, goals); err != nil {
		return nil, err
	}
	return s.GetGoals(ctx)
}

func (s *ServiceImpl) UpdateGoalSplits(ctx context.Context, split1, split2 int) ([]Goal, error) {
	return s.UpdateGoals(ctx, GoalsFromSplits(split1, split2))
}

func (s *ServiceImpl) GetSystemBudgets(ctx context.Context) ([]SystemBudget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetSystemBudgets(ctx, userId)
}

func (s *ServiceImpl) GetSystemBudgetsForMonth(ctx context.Context, month period.Month) ([]SystemBudget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetSystemBudgetsForPeriod(ctx, userId, month.Start(), month.End())
}

func (s *ServiceImpl) GetCustomBudgets(ctx context.Context) ([]CustomBudget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetCustomBudgets(ctx, userId)
}

func (s *ServiceImpl) CreateCustomBudget(ctx context.Context, budget CustomBudget) (CustomBudget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return CustomBudget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if budget.Kind == "" {
		budget.Kind = KindCustom
	}
	if budget.Status == "" {
		budget.Status = StatusPlanned
	}
	if err := validateCustomBudget(budget); err != nil {
		return CustomBudget{}, err
	}
	return s.repo.StoreCustomBudget(ctx, userId, budget)
}

func (s *ServiceImpl) DeleteCustomBudget(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.GetCustomBudget(ctx, userId, id)
	if err != nil {
		return false, err
	}

	// Subscribers and the budget delete share one database transaction carried by txCtx.
	var deleted bool
	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		err := s.eventBus.Publish(event_bus.NewEvent(txCtx, event_bus.CustomBudgetDeleting, event_bus.CustomBudgetRemoval{
			BudgetId: existing.Id,
			UserId:   userId,
			Name:     existing.Name,
		}))
		if err != nil {
			log.Errorf("failed to remove records owned by budget %d: %v", id, err)
			return err
		}
		deleted, err = s.repo.DeleteCustomBudget(txCtx, userId, id)
		return err
	})
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("custom budget not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
	}
	return deleted, nil
}

func (s *ServiceImpl) UpdateCustomBudgetStatus(ctx context.Context, id int, status Status) (CustomBudget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return CustomBudget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.GetCustomBudget(ctx, userId, id)
	if err != nil {
		return CustomBudget{}, err
	}
	if existing.Status == status {
		return existing, nil
	}
	if !canTransition(existing.Status, status) {
		return CustomBudget{}, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, existing.Status, status)
	}
	if err := s.repo.UpdateCustomBudgetStatus(ctx, userId, id, status); err != nil {
		return CustomBudget{}, err
	}
	log.Debugf("custom budget %d moved from %s to %s", id, existing.Status, status)
	existing.Status = status
	return existing, nil
}

func canTransition(from, to Status) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func validateCustomBudget(budget CustomBudget) error {
	if budget.Name == "" {
		return fmt.Errorf("custom budget name is required")
	}
	if budget.Kind != KindCustom && budget.Kind != KindMini {
		return fmt.Errorf("invalid custom budget kind: %s", budget.Kind)
	}
	if budget.Status != StatusPlanned && budget.Status != StatusActive && budget.Status != StatusCompleted {
		return fmt.Errorf("invalid custom budget status: %s", budget.Status)
	}
	if budget.AllocatedAmount.IsNegative() {
		return fmt.Errorf("allocated amount cannot be negative")
	}
	if !budget.StartDate.IsZero() && !budget.EndDate.IsZero() && budget.EndDate.Before(budget.StartDate) {
		return fmt.Errorf("custom budget ends before it starts")
	}
	if budget.Kind == KindMini && len(budget.Allocations) > 0 {
		return fmt.Errorf("mini budgets have no category allocations")
	}
	for _, a := range budget.Allocations {
		if a.AllocatedAmount.IsNegative() {
			return fmt.Errorf("allocation for category %d cannot be negative", a.CategoryId)
		}
	}
	return nil
}
