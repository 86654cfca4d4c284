package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/budgetwise/internal/database"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type Repository interface {
	// GetSystemBudgets returns every system budget of the user, oldest first.
	GetSystemBudgets(ctx context.Context, userId int) ([]SystemBudget, error)
	GetSystemBudgetsForPeriod(ctx context.Context, userId int, start, end time.Time) ([]SystemBudget, error)
	// UpsertSystemBudget creates the budget or, when one already exists for the same type and
	// start date, overwrites its amount. It returns the stored budget.
	UpsertSystemBudget(ctx context.Context, userId int, budget SystemBudget) (SystemBudget, error)
	UpdateSystemBudgetAmount(ctx context.Context, userId int, id int, amount decimal.Decimal) error
	GetCustomBudgets(ctx context.Context, userId int) ([]CustomBudget, error)
	GetCustomBudget(ctx context.Context, userId int, id int) (CustomBudget, error)
	StoreCustomBudget(ctx context.Context, userId int, budget CustomBudget) (CustomBudget, error)
	UpdateCustomBudgetStatus(ctx context.Context, userId int, id int, status Status) error
	DeleteCustomBudget(ctx context.Context, userId int, id int) (bool, error)
	GetGoals(ctx context.Context, userId int) ([]Goal, error)
	StoreGoals(ctx context.Context, userId int, goals []Goal) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetSystemBudgets(ctx context.Context, userId int) ([]SystemBudget, error) {
	query := `SELECT id, name, amount, start_date, end_date, system_type 
			  FROM budget WHERE user_id = $1 AND kind = 'system' ORDER BY start_date, system_type`
	return r.querySystemBudgets(ctx, query, userId)
}

func (r *RepositoryImpl) GetSystemBudgetsForPeriod(ctx context.Context, userId int, start, end time.Time) ([]SystemBudget, error) {
	query := `SELECT id, name, amount, start_date, end_date, system_type 
			  FROM budget 
			  WHERE user_id = $1 AND kind = 'system' AND start_date <= $3 AND end_date >= $2
			  ORDER BY start_date, system_type`
	return r.querySystemBudgets(ctx, query, userId, start, end)
}

func (r *RepositoryImpl) querySystemBudgets(ctx context.Context, query string, args ...any) ([]SystemBudget, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query system budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgets []SystemBudget
	for rows.Next() {
		var b SystemBudget
		var systemType string
		if err := rows.Scan(&b.Id, &b.Name, &b.BudgetAmount, &b.StartDate, &b.EndDate, &systemType); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		b.SystemBudgetType = priority.Priority(systemType)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return budgets, nil
}

func (r *RepositoryImpl) UpsertSystemBudget(ctx context.Context, userId int, budget SystemBudget) (SystemBudget, error) {
	query := `INSERT INTO budget (user_id, kind, name, amount, start_date, end_date, system_type)
			  VALUES ($1, 'system', $2, $3, $4, $5, $6)
			  ON CONFLICT (user_id, system_type, start_date) WHERE kind = 'system'
			  DO UPDATE SET amount = EXCLUDED.amount
			  RETURNING id, amount`
	err := r.db.QueryRow(ctx, query,
		userId,
		budget.Name,
		budget.BudgetAmount,
		budget.StartDate,
		budget.EndDate,
		string(budget.SystemBudgetType),
	).Scan(&budget.Id, &budget.BudgetAmount)
	if err != nil {
		err := fmt.Errorf("could not upsert system budget: %w", err)
		log.Error(err)
		return SystemBudget{}, err
	}
	return budget, nil
}

func (r *RepositoryImpl) UpdateSystemBudgetAmount(ctx context.Context, userId int, id int, amount decimal.Decimal) error {
	query := `UPDATE budget SET amount = $1 WHERE user_id = $2 AND id = $3 AND kind = 'system'`
	result, err := r.db.Exec(ctx, query, amount, userId, id)
	if err != nil {
		return fmt.Errorf("could not update system budget: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

func (r *RepositoryImpl) GetCustomBudgets(ctx context.Context, userId int) ([]CustomBudget, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT id, kind, name, amount, start_date, end_date, status
			  FROM budget WHERE user_id = $1 AND kind IN ('custom', 'mini') ORDER BY start_date, id`
	rows, err := tx.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query custom budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	var budgets []CustomBudget
	for rows.Next() {
		b, err := scanCustomBudget(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		budgets = append(budgets, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	allocations, err := queryAllocations(ctx, tx, userId)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		budgets[i].Allocations = allocations[budgets[i].Id]
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}
	return budgets, nil
}

func (r *RepositoryImpl) GetCustomBudget(ctx context.Context, userId int, id int) (CustomBudget, error) {
	budgets, err := r.GetCustomBudgets(ctx, userId)
	if err != nil {
		return CustomBudget{}, err
	}
	b, found := FindCustomBudget(budgets, id)
	if !found {
		return CustomBudget{}, ErrBudgetNotFound
	}
	return b, nil
}

func (r *RepositoryImpl) StoreCustomBudget(ctx context.Context, userId int, budget CustomBudget) (CustomBudget, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return CustomBudget{}, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO budget (user_id, kind, name, amount, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err = tx.QueryRow(ctx, query,
		userId,
		string(budget.Kind),
		budget.Name,
		budget.AllocatedAmount,
		budget.StartDate,
		budget.EndDate,
		string(budget.Status),
	).Scan(&budget.Id)
	if err != nil {
		err := fmt.Errorf("could not store custom budget: %w", err)
		log.Error(err)
		return CustomBudget{}, err
	}

	for i, allocation := range budget.Allocations {
		allocationQuery := `INSERT INTO custom_budget_allocation (user_id, budget_id, category_id, amount)
							VALUES ($1, $2, $3, $4) RETURNING id`
		err := tx.QueryRow(ctx, allocationQuery, userId, budget.Id, allocation.CategoryId, allocation.AllocatedAmount).
			Scan(&budget.Allocations[i].Id)
		if err != nil {
			err := fmt.Errorf("could not store allocation: %w", err)
			log.Error(err)
			return CustomBudget{}, err
		}
		budget.Allocations[i].CustomBudgetId = budget.Id
	}

	if err := tx.Commit(ctx); err != nil {
		return CustomBudget{}, fmt.Errorf("could not commit transaction: %w", err)
	}
	return budget, nil
}

func (r *RepositoryImpl) UpdateCustomBudgetStatus(ctx context.Context, userId int, id int, status Status) error {
	query := `UPDATE budget SET status = $3 WHERE user_id = $1 AND id = $2 AND kind IN ('custom', 'mini')`
	result, err := database.QuerierFor(ctx, r.db).Exec(ctx, query, userId, id, string(status))
	if err != nil {
		err := fmt.Errorf("could not update status of custom budget %d: %w", id, err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteCustomBudget(ctx context.Context, userId int, id int) (bool, error) {
	query := `DELETE FROM budget WHERE user_id = $1 AND id = $2 AND kind IN ('custom', 'mini')`
	result, err := database.QuerierFor(ctx, r.db).Exec(ctx, query, userId, id)
	if err != nil {
		err := fmt.Errorf("could not delete custom budget: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) GetGoals(ctx context.Context, userId int) ([]Goal, error) {
	query := `SELECT priority, target_percentage, is_absolute, absolute_amount 
			  FROM budget_goal WHERE user_id = $1 ORDER BY priority`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query budget goals: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var p string
		if err := rows.Scan(&p, &g.TargetPercentage, &g.IsAbsolute, &g.AbsoluteAmount); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		g.Priority = priority.Priority(p)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *RepositoryImpl) StoreGoals(ctx context.Context, userId int, goals []Goal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO budget_goal (user_id, priority, target_percentage, is_absolute, absolute_amount)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_id, priority) DO UPDATE SET 
			      target_percentage = EXCLUDED.target_percentage,
			      is_absolute = EXCLUDED.is_absolute,
			      absolute_amount = EXCLUDED.absolute_amount`
	for _, g := range goals {
		_, err := tx.Exec(ctx, query, userId, string(g.Priority), g.TargetPercentage, g.IsAbsolute, g.AbsoluteAmount)
		if err != nil {
			err := fmt.Errorf("could not store goal %s: %w", g.Priority, err)
			log.Error(err)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func scanCustomBudget(rows pgx.Rows) (CustomBudget, error) {
	var b CustomBudget
	var kind, status string
	if err := rows.Scan(&b.Id, &kind, &b.Name, &b.AllocatedAmount, &b.StartDate, &b.EndDate, &status); err != nil {
		err := fmt.Errorf("error scanning row: %w", err)
		log.Error(err)
		return CustomBudget{}, err
	}
	b.Kind = Kind(kind)
	b.Status = Status(status)
	return b, nil
}

func queryAllocations(ctx context.Context, tx pgx.Tx, userId int) (map[int][]Allocation, error) {
	query := `SELECT id, budget_id, category_id, amount FROM custom_budget_allocation WHERE user_id = $1 ORDER BY id`
	rows, err := tx.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query allocations: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	byBudget := map[int][]Allocation{}
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.Id, &a.CustomBudgetId, &a.CategoryId, &a.AllocatedAmount); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		byBudget[a.CustomBudgetId] = append(byBudget[a.CustomBudgetId], a)
	}
	return byBudget, rows.Err()
}
