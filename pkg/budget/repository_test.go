package budget

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/budgetwise/internal/database"
	"github.com/klokku/budgetwise/internal/test_utils"
	"github.com/klokku/budgetwise/pkg/category"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, *pgxpool.Pool, int) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	userId := test_utils.CreateUser(t, ctx, db)
	return ctx, NewRepository(db), db, userId
}

func systemBudget(p priority.Priority, amount int64) SystemBudget {
	return SystemBudget{
		Name:             SystemBudgetName(p, january.Label()),
		BudgetAmount:     decimal.NewFromInt(amount),
		StartDate:        january.Start(),
		EndDate:          january.End(),
		SystemBudgetType: p,
	}
}

func TestRepositoryImpl_UpsertSystemBudget(t *testing.T) {
	t.Run("should create system budget", func(t *testing.T) {
		// given
		ctx, repo, _, userId := setupTestRepository(t)

		// when
		created, err := repo.UpsertSystemBudget(ctx, userId, systemBudget(priority.Needs, 3100))

		// then
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		stored, err := repo.GetSystemBudgets(ctx, userId)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "Needs Jan 2025", stored[0].Name)
		assertAmount(t, "3100", stored[0].BudgetAmount)
		assert.True(t, january.Start().Equal(stored[0].StartDate))
		assert.True(t, january.End().Equal(stored[0].EndDate))
	})

	t.Run("should keep one budget per type and month", func(t *testing.T) {
		// given
		ctx, repo, _, userId := setupTestRepository(t)
		first, err := repo.UpsertSystemBudget(ctx, userId, systemBudget(priority.Needs, 3100))
		require.NoError(t, err)

		// when
		second, err := repo.UpsertSystemBudget(ctx, userId, systemBudget(priority.Needs, 3500))

		// then
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
		stored, err := repo.GetSystemBudgets(ctx, userId)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assertAmount(t, "3500", stored[0].BudgetAmount)
	})
}

func TestRepositoryImpl_GetSystemBudgetsForPeriod(t *testing.T) {
	// given
	ctx, repo, _, userId := setupTestRepository(t)
	_, err := repo.UpsertSystemBudget(ctx, userId, systemBudget(priority.Needs, 3100))
	require.NoError(t, err)
	february := january.Next()
	_, err = repo.UpsertSystemBudget(ctx, userId, SystemBudget{
		Name:             "Needs Feb 2025",
		BudgetAmount:     decimal.NewFromInt(3000),
		StartDate:        february.Start(),
		EndDate:          february.End(),
		SystemBudgetType: priority.Needs,
	})
	require.NoError(t, err)

	// when
	budgets, err := repo.GetSystemBudgetsForPeriod(ctx, userId, february.Start(), february.End())

	// then
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "Needs Feb 2025", budgets[0].Name)
}

func TestRepositoryImpl_UpdateSystemBudgetAmount(t *testing.T) {
	t.Run("should update amount", func(t *testing.T) {
		// given
		ctx, repo, _, userId := setupTestRepository(t)
		created, err := repo.UpsertSystemBudget(ctx, userId, systemBudget(priority.Wants, 1860))
		require.NoError(t, err)

		// when
		err = repo.UpdateSystemBudgetAmount(ctx, userId, created.Id, decimal.RequireFromString("2100.50"))

		// then
		require.NoError(t, err)
		stored, _ := repo.GetSystemBudgets(ctx, userId)
		assertAmount(t, "2100.50", stored[0].BudgetAmount)
	})

	t.Run("should return not found for unknown budget", func(t *testing.T) {
		ctx, repo, _, userId := setupTestRepository(t)

		err := repo.UpdateSystemBudgetAmount(ctx, userId, 999, decimal.NewFromInt(1))

		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})
}

func TestRepositoryImpl_CustomBudgets(t *testing.T) {
	t.Run("should store custom budget with allocations", func(t *testing.T) {
		// given
		ctx, repo, db, userId := setupTestRepository(t)
		flightsId, err := category.NewRepository(db).Store(ctx, userId, category.Category{Name: "Flights", Priority: priority.Wants})
		require.NoError(t, err)
		vacation := CustomBudget{
			Kind:            KindCustom,
			Name:            "Vacation Fund",
			AllocatedAmount: decimal.NewFromInt(2000),
			StartDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:         time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			Status:          StatusActive,
			Allocations:     []Allocation{{CategoryId: flightsId, AllocatedAmount: decimal.NewFromInt(800)}},
		}

		// when
		created, err := repo.StoreCustomBudget(ctx, userId, vacation)

		// then
		require.NoError(t, err)
		stored, err := repo.GetCustomBudget(ctx, userId, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "Vacation Fund", stored.Name)
		assert.Equal(t, KindCustom, stored.Kind)
		assert.Equal(t, StatusActive, stored.Status)
		assertAmount(t, "2000", stored.AllocatedAmount)
		require.Len(t, stored.Allocations, 1)
		assert.Equal(t, flightsId, stored.Allocations[0].CategoryId)
		assert.Equal(t, created.Id, stored.Allocations[0].CustomBudgetId)
		assertAmount(t, "800", stored.Allocations[0].AllocatedAmount)
	})

	t.Run("should delete custom budget with its allocations", func(t *testing.T) {
		// given
		ctx, repo, db, userId := setupTestRepository(t)
		categoryId, err := category.NewRepository(db).Store(ctx, userId, category.Category{Name: "Hotels", Priority: priority.Wants})
		require.NoError(t, err)
		created, err := repo.StoreCustomBudget(ctx, userId, CustomBudget{
			Kind: KindCustom, Name: "Trip", AllocatedAmount: decimal.NewFromInt(500),
			StartDate: january.Start(), EndDate: january.End(), Status: StatusPlanned,
			Allocations: []Allocation{{CategoryId: categoryId, AllocatedAmount: decimal.NewFromInt(500)}},
		})
		require.NoError(t, err)

		// when
		deleted, err := repo.DeleteCustomBudget(ctx, userId, created.Id)

		// then
		require.NoError(t, err)
		assert.True(t, deleted)
		_, err = repo.GetCustomBudget(ctx, userId, created.Id)
		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})

	t.Run("should never delete system budget as custom", func(t *testing.T) {
		ctx, repo, _, userId := setupTestRepository(t)
		created, err := repo.UpsertSystemBudget(ctx, userId, systemBudget(priority.Savings, 1240))
		require.NoError(t, err)

		deleted, err := repo.DeleteCustomBudget(ctx, userId, created.Id)

		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestRepositoryImpl_UpdateCustomBudgetStatus(t *testing.T) {
	t.Run("should update status", func(t *testing.T) {
		// given
		ctx, repo, _, userId := setupTestRepository(t)
		created, err := repo.StoreCustomBudget(ctx, userId, CustomBudget{
			Kind: KindMini, Name: "Groceries top-up", AllocatedAmount: decimal.NewFromInt(100),
			StartDate: january.Start(), EndDate: january.End(), Status: StatusActive,
		})
		require.NoError(t, err)

		// when
		err = repo.UpdateCustomBudgetStatus(ctx, userId, created.Id, StatusCompleted)

		// then
		require.NoError(t, err)
		stored, err := repo.GetCustomBudget(ctx, userId, created.Id)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, stored.Status)
	})

	t.Run("should not touch system budgets", func(t *testing.T) {
		ctx, repo, _, userId := setupTestRepository(t)
		created, err := repo.UpsertSystemBudget(ctx, userId, systemBudget(priority.Needs, 3100))
		require.NoError(t, err)

		err = repo.UpdateCustomBudgetStatus(ctx, userId, created.Id, StatusCompleted)

		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})
}

func TestRepositoryImpl_DeleteCustomBudgetInTransaction(t *testing.T) {
	t.Run("should keep budget and its transactions when the unit of work fails", func(t *testing.T) {
		// given
		ctx, repo, db, userId := setupTestRepository(t)
		created, err := repo.StoreCustomBudget(ctx, userId, CustomBudget{
			Kind: KindCustom, Name: "Vacation Fund", AllocatedAmount: decimal.NewFromInt(2000),
			StartDate: january.Start(), EndDate: january.End(), Status: StatusActive,
		})
		require.NoError(t, err)
		_, err = db.Exec(ctx, `INSERT INTO transactions (user_id, title, amount, type, date, is_paid, budget_id)
			VALUES ($1, 'Flights', 600, 'expense', '2025-01-28', false, $2)`, userId, created.Id)
		require.NoError(t, err)

		// when
		err = database.NewTransactor(db).InTx(ctx, func(txCtx context.Context) error {
			if _, err := database.QuerierFor(txCtx, db).Exec(txCtx, `DELETE FROM transactions WHERE budget_id = $1`, created.Id); err != nil {
				return err
			}
			if _, err := repo.DeleteCustomBudget(txCtx, userId, created.Id); err != nil {
				return err
			}
			return errors.New("db down")
		})

		// then
		require.Error(t, err)
		_, err = repo.GetCustomBudget(ctx, userId, created.Id)
		assert.NoError(t, err)
		var count int
		require.NoError(t, db.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE budget_id = $1`, created.Id).Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestRepositoryImpl_Goals(t *testing.T) {
	// given
	ctx, repo, _, userId := setupTestRepository(t)
	require.NoError(t, repo.StoreGoals(ctx, userId, DefaultGoals()))

	// when
	err := repo.StoreGoals(ctx, userId, []Goal{
		{Priority: priority.Savings, IsAbsolute: true, AbsoluteAmount: decimal.NewFromInt(900)},
	})

	// then
	require.NoError(t, err)
	goals, err := repo.GetGoals(ctx, userId)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	byPriority := GoalsByPriority(goals)
	assertAmount(t, "50", byPriority[priority.Needs].TargetPercentage)
	assert.True(t, byPriority[priority.Savings].IsAbsolute)
	assertAmount(t, "900", byPriority[priority.Savings].AbsoluteAmount)
}
