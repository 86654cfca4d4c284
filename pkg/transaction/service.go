package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/budgetwise/internal/event_bus"
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrNotPaid = errors.New("transaction is not paid")

type Service interface {
	GetAll(ctx context.Context) ([]Transaction, error)
	Create(ctx context.Context, t Transaction) (Transaction, error)
	// MarkPaid records the payment and moves an expense assigned to a system budget to the
	// same-type system budget of the payment month.
	MarkPaid(ctx context.Context, id int, paidDate time.Time) (Transaction, error)
	// UpdatePaidDate changes the payment date of a paid transaction, migrating it like MarkPaid.
	UpdatePaidDate(ctx context.Context, id int, paidDate time.Time) (Transaction, error)
	// MarkUnpaid clears the payment. The bucket is left as it is.
	MarkUnpaid(ctx context.Context, id int) (Transaction, error)
	Reassign(ctx context.Context, id int, assignment Assignment) (Transaction, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// SystemBudgetReader provides the system budgets used as migration targets.
type SystemBudgetReader interface {
	GetSystemBudgets(ctx context.Context) ([]budget.SystemBudget, error)
}

// BucketMigrator returns the bucket an expense belongs to once it is paid on newPaidDate.
type BucketMigrator func(expense Transaction, newPaidDate time.Time, systemBudgets []budget.SystemBudget) *int

type ServiceImpl struct {
	repo          Repository
	systemBudgets SystemBudgetReader
	migrate       BucketMigrator
}

func NewService(repo Repository, systemBudgets SystemBudgetReader, migrate BucketMigrator, eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{repo: repo, systemBudgets: systemBudgets, migrate: migrate}
	event_bus.SubscribeTyped[event_bus.CustomBudgetRemoval](
		eventBus,
		event_bus.CustomBudgetDeleting,
		func(e event_bus.EventT[event_bus.CustomBudgetRemoval]) error {
			log.Debugf("received custom budget removal event: %v", e.Data)
			count, err := service.repo.DeleteByBucket(e.Context(), e.Data.UserId, e.Data.BudgetId)
			if err != nil {
				log.Errorf("failed to delete transactions of budget %d: %v", e.Data.BudgetId, err)
				return err
			}
			log.Debugf("deleted %d transactions of budget %q", count, e.Data.Name)
			return nil
		},
	)
	return service
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Create(ctx context.Context, t Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	t = t.Normalize()
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return s.repo.Store(ctx, userId, t)
}

func (s *ServiceImpl) MarkPaid(ctx context.Context, id int, paidDate time.Time) (Transaction, error) {
	return s.settle(ctx, id, paidDate, false)
}

func (s *ServiceImpl) UpdatePaidDate(ctx context.Context, id int, paidDate time.Time) (Transaction, error) {
	return s.settle(ctx, id, paidDate, true)
}

func (s *ServiceImpl) settle(ctx context.Context, id int, paidDate time.Time, mustBePaid bool) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if paidDate.IsZero() {
		return Transaction{}, ErrPaidWithoutDate
	}
	paidDate = period.DateOf(paidDate)

	systemBudgets, err := s.systemBudgets.GetSystemBudgets(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to load system budgets: %w", err)
	}

	var updated Transaction
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		current, err := repo.Get(ctx, userId, id)
		if err != nil {
			return err
		}
		if mustBePaid && !current.IsPaid {
			return ErrNotPaid
		}

		bucketId := current.CustomBudgetId
		if current.IsExpense() {
			bucketId = s.migrate(current, paidDate, systemBudgets)
		}

		updated, err = repo.UpdatePayment(ctx, userId, id, true, paidDate, bucketId)
		if err != nil {
			return err
		}
		if !sameBucket(current.CustomBudgetId, bucketId) {
			log.Debugf("transaction %d moved from bucket %v to %v after payment on %s",
				id, bucketLabel(current.CustomBudgetId), bucketLabel(bucketId), period.FormatDate(paidDate))
		}
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) MarkUnpaid(ctx context.Context, id int) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	var updated Transaction
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		current, err := repo.Get(ctx, userId, id)
		if err != nil {
			return err
		}
		updated, err = repo.UpdatePayment(ctx, userId, id, false, time.Time{}, current.CustomBudgetId)
		return err
	})
	if err != nil {
		return Transaction{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) Reassign(ctx context.Context, id int, assignment Assignment) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if assignment.FinancialPriority != priority.None && !assignment.FinancialPriority.IsValid() {
		return Transaction{}, priority.ErrInvalidPriority
	}
	return s.repo.UpdateAssignment(ctx, userId, id, assignment)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("transaction not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
	}
	return deleted, nil
}

func sameBucket(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func bucketLabel(id *int) any {
	if id == nil {
		return "none"
	}
	return *id
}
