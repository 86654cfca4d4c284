package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/budgetwise/internal/database"
	"github.com/klokku/budgetwise/internal/event_bus"
	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/calculation"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/transaction"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{
	Id:          10,
	Uid:         uuid.NewString(),
	Username:    "test-user-1",
	DisplayName: "Test User 1",
})

type systemBudgetsStub []budget.SystemBudget

func (s systemBudgetsStub) GetSystemBudgets(ctx context.Context) ([]budget.SystemBudget, error) {
	return s, nil
}

var (
	january  = period.Month{Year: 2025, Month: time.January}
	february = period.Month{Year: 2025, Month: time.February}
)

var systemBudgets = systemBudgetsStub{
	{Id: 1, Name: "Needs Jan 2025", StartDate: january.Start(), EndDate: january.End(), SystemBudgetType: priority.Needs},
	{Id: 2, Name: "Needs Feb 2025", StartDate: february.Start(), EndDate: february.End(), SystemBudgetType: priority.Needs},
	{Id: 3, Name: "Wants Feb 2025", StartDate: february.Start(), EndDate: february.End(), SystemBudgetType: priority.Wants},
}

var repoStub = transaction.NewRepositoryStub()
var eventBus *event_bus.EventBus
var service transaction.Service

func setup(t *testing.T) func() {
	eventBus = event_bus.NewEventBus()
	service = transaction.NewService(repoStub, systemBudgets, calculation.MigrateOnPaidDateChange, eventBus)
	return func() {
		t.Log("Teardown after test")
		repoStub.Reset()
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ptr(v int) *int {
	return &v
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("stores a valid transaction", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, transaction.Transaction{
			Title:  "New Shoes",
			Amount: decimal.NewFromInt(120),
			Type:   transaction.TypeExpense,
			Date:   time.Date(2025, 1, 18, 15, 30, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, date(2025, 1, 18), created.Date)
		assert.False(t, created.IsPaid)
	})

	t.Run("paid without date is rejected", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, transaction.Transaction{
			Title:  "Rent",
			Amount: decimal.NewFromInt(1500),
			Type:   transaction.TypeExpense,
			Date:   date(2025, 1, 1),
			IsPaid: true,
		})

		assert.ErrorIs(t, err, transaction.ErrPaidWithoutDate)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, transaction.Transaction{
			Amount: decimal.NewFromInt(-1),
			Type:   transaction.TypeExpense,
			Date:   date(2025, 1, 1),
		})

		assert.ErrorIs(t, err, transaction.ErrNegativeAmount)
	})

	t.Run("requires a user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(context.Background(), transaction.Transaction{})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_MarkPaid(t *testing.T) {
	t.Run("expense in a system budget follows the payment month", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		created, err := service.Create(ctx, transaction.Transaction{
			Title:          "Rent",
			Amount:         decimal.NewFromInt(1500),
			Type:           transaction.TypeExpense,
			Date:           date(2025, 1, 28),
			CustomBudgetId: ptr(1),
		})
		require.NoError(t, err)

		paid, err := service.MarkPaid(ctx, created.Id, date(2025, 2, 3))

		require.NoError(t, err)
		assert.True(t, paid.IsPaid)
		assert.Equal(t, date(2025, 2, 3), paid.PaidDate)
		assert.Equal(t, 2, *paid.CustomBudgetId)
		assert.Equal(t, date(2025, 1, 28), paid.Date)
	})

	t.Run("custom budget assignment is kept", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		created, err := service.Create(ctx, transaction.Transaction{
			Title:          "Flights",
			Amount:         decimal.NewFromInt(300),
			Type:           transaction.TypeExpense,
			Date:           date(2025, 1, 28),
			CustomBudgetId: ptr(100),
		})
		require.NoError(t, err)

		paid, err := service.MarkPaid(ctx, created.Id, date(2025, 2, 3))

		require.NoError(t, err)
		assert.Equal(t, 100, *paid.CustomBudgetId)
	})

	t.Run("missing transaction", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.MarkPaid(ctx, 404, date(2025, 2, 3))

		assert.ErrorIs(t, err, transaction.ErrTransactionNotFound)
	})
}

func TestServiceImpl_UpdatePaidDate(t *testing.T) {
	t.Run("moving the payment back migrates back", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		created, err := service.Create(ctx, transaction.Transaction{
			Title:          "Electricity",
			Amount:         decimal.NewFromInt(90),
			Type:           transaction.TypeExpense,
			Date:           date(2025, 1, 20),
			CustomBudgetId: ptr(1),
		})
		require.NoError(t, err)
		_, err = service.MarkPaid(ctx, created.Id, date(2025, 2, 3))
		require.NoError(t, err)

		updated, err := service.UpdatePaidDate(ctx, created.Id, date(2025, 1, 30))

		require.NoError(t, err)
		assert.Equal(t, 1, *updated.CustomBudgetId)
		assert.Equal(t, date(2025, 1, 30), updated.PaidDate)
	})

	t.Run("unpaid transaction is rejected", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		created, err := service.Create(ctx, transaction.Transaction{
			Amount: decimal.NewFromInt(90),
			Type:   transaction.TypeExpense,
			Date:   date(2025, 1, 20),
		})
		require.NoError(t, err)

		_, err = service.UpdatePaidDate(ctx, created.Id, date(2025, 2, 3))

		assert.ErrorIs(t, err, transaction.ErrNotPaid)
	})
}

func TestServiceImpl_MarkUnpaid(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	created, err := service.Create(ctx, transaction.Transaction{
		Amount:         decimal.NewFromInt(90),
		Type:           transaction.TypeExpense,
		Date:           date(2025, 1, 20),
		CustomBudgetId: ptr(1),
	})
	require.NoError(t, err)
	_, err = service.MarkPaid(ctx, created.Id, date(2025, 2, 3))
	require.NoError(t, err)

	unpaid, err := service.MarkUnpaid(ctx, created.Id)

	require.NoError(t, err)
	assert.False(t, unpaid.IsPaid)
	assert.True(t, unpaid.PaidDate.IsZero())
	assert.Equal(t, 2, *unpaid.CustomBudgetId)
}

func TestServiceImpl_Reassign(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	created, err := service.Create(ctx, transaction.Transaction{
		Amount: decimal.NewFromInt(90),
		Type:   transaction.TypeExpense,
		Date:   date(2025, 1, 20),
	})
	require.NoError(t, err)

	updated, err := service.Reassign(ctx, created.Id, transaction.Assignment{
		CategoryId:        ptr(4),
		FinancialPriority: priority.Savings,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, *updated.CategoryId)
	assert.Equal(t, priority.Savings, updated.FinancialPriority)
	assert.Nil(t, updated.CustomBudgetId)

	_, err = service.Reassign(ctx, created.Id, transaction.Assignment{FinancialPriority: "luxury"})
	assert.ErrorIs(t, err, priority.ErrInvalidPriority)
}

func TestServiceImpl_CustomBudgetRemoval(t *testing.T) {
	t.Run("deletes the transactions of the removed budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		for _, bucket := range []*int{ptr(100), ptr(100), ptr(1), nil} {
			_, err := service.Create(ctx, transaction.Transaction{
				Amount:         decimal.NewFromInt(10),
				Type:           transaction.TypeExpense,
				Date:           date(2025, 1, 5),
				CustomBudgetId: bucket,
			})
			require.NoError(t, err)
		}

		err := eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CustomBudgetDeleting, event_bus.CustomBudgetRemoval{
			BudgetId: 100,
			UserId:   10,
			Name:     "Vacation Fund",
		}))

		require.NoError(t, err)
		remaining, err := service.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})

	t.Run("failure is reported to the publisher", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		repoStub.SetFailDelete(true)

		err := eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CustomBudgetDeleting, event_bus.CustomBudgetRemoval{BudgetId: 100, UserId: 10}))

		assert.Error(t, err)
	})
}

// rollbackTransactor runs the unit of work inside the stub repository transaction, so a
// failure restores the deleted transactions.
type rollbackTransactor struct {
	repo *transaction.RepositoryStub
}

func (r rollbackTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.repo.WithTransaction(ctx, func(transaction.Repository) error { return fn(ctx) })
}

var _ database.Transactor = rollbackTransactor{}

type failingBudgetDeletes struct {
	*budget.RepositoryStub
}

func (f failingBudgetDeletes) DeleteCustomBudget(ctx context.Context, userId int, id int) (bool, error) {
	return false, errors.New("db down")
}

func TestBudgetDeletion_KeepsTransactionsWhenBudgetDeleteFails(t *testing.T) {
	// given
	teardown := setup(t)
	defer teardown()
	budgets := failingBudgetDeletes{budget.NewRepositoryStub()}
	budgetService := budget.NewService(budgets, eventBus, rollbackTransactor{repo: repoStub})
	vacation, err := budgetService.CreateCustomBudget(ctx, budget.CustomBudget{Name: "Vacation Fund"})
	require.NoError(t, err)
	_, err = service.Create(ctx, transaction.Transaction{
		Title:          "Flights",
		Amount:         decimal.NewFromInt(600),
		Type:           transaction.TypeExpense,
		Date:           date(2025, 1, 28),
		CustomBudgetId: ptr(vacation.Id),
	})
	require.NoError(t, err)

	// when
	deleted, err := budgetService.DeleteCustomBudget(ctx, vacation.Id)

	// then
	assert.Error(t, err)
	assert.False(t, deleted)
	remainingBudgets, err := budgetService.GetCustomBudgets(ctx)
	require.NoError(t, err)
	assert.Len(t, remainingBudgets, 1)
	remaining, err := service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Flights", remaining[0].Title)
}

func TestServiceImpl_Delete(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	created, err := service.Create(ctx, transaction.Transaction{
		Amount: decimal.NewFromInt(90),
		Type:   transaction.TypeExpense,
		Date:   date(2025, 1, 20),
	})
	require.NoError(t, err)

	deleted, err := service.Delete(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = service.Delete(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

type failingRepository struct {
	*transaction.RepositoryStub
}

func (r failingRepository) WithTransaction(ctx context.Context, fn func(repo transaction.Repository) error) error {
	return r.RepositoryStub.WithTransaction(ctx, func(transaction.Repository) error {
		return fn(r)
	})
}

func (r failingRepository) UpdatePayment(ctx context.Context, userId int, id int, isPaid bool, paidDate time.Time, bucketId *int) (transaction.Transaction, error) {
	return transaction.Transaction{}, errors.New("database unavailable")
}

func TestServiceImpl_MarkPaid_FailureLeavesRecordUntouched(t *testing.T) {
	repo := failingRepository{transaction.NewRepositoryStub()}
	s := transaction.NewService(repo, systemBudgets, calculation.MigrateOnPaidDateChange, event_bus.NewEventBus())
	created, err := s.Create(ctx, transaction.Transaction{
		Amount:         decimal.NewFromInt(90),
		Type:           transaction.TypeExpense,
		Date:           date(2025, 1, 20),
		CustomBudgetId: ptr(1),
	})
	require.NoError(t, err)

	_, err = s.MarkPaid(ctx, created.Id, date(2025, 2, 3))

	assert.Error(t, err)
	stored, err := repo.Get(ctx, 10, created.Id)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
	assert.Equal(t, 1, *stored.CustomBudgetId)
}
