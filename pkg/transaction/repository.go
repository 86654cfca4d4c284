package transaction

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

var ErrTransactionNotFound = errors.New("transaction not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	GetAll(ctx context.Context, userId int) ([]Transaction, error)
	Get(ctx context.Context, userId int, id int) (Transaction, error)
	Store(ctx context.Context, userId int, t Transaction) (Transaction, error)
	// UpdatePayment sets the payment state and the bucket in one statement.
	UpdatePayment(ctx context.Context, userId int, id int, isPaid bool, paidDate time.Time, bucketId *int) (Transaction, error)
	UpdateAssignment(ctx context.Context, userId int, id int, assignment Assignment) (Transaction, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
	// DeleteByBucket deletes every transaction assigned to the given budget and returns how many were removed.
	DeleteByBucket(ctx context.Context, userId int, budgetId int) (int, error)
}

// Assignment is the classification of a transaction: category, explicit priority and bucket.
type Assignment struct {
	CategoryId        *int
	FinancialPriority priority.Priority
	CustomBudgetId    *int
}

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

// getQueryer returns the repository transaction, the one carried by ctx, or the pool.
func (r *repositoryImpl) getQueryer(ctx context.Context) database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return database.QuerierFor(ctx, r.db)
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if tx, ok := database.TxFromContext(ctx); ok {
		return fn(&repositoryImpl{db: r.db, tx: tx})
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&repositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectColumns = `id, title, amount, type, date, is_paid, paid_date, category_id, financial_priority, budget_id`

func (r *repositoryImpl) GetAll(ctx context.Context, userId int) ([]Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE user_id = $1 ORDER BY date, id`
	rows, err := r.getQueryer(ctx).Query(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("could not query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *repositoryImpl) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE user_id = $1 AND id = $2`
	t, err := scanTransaction(r.getQueryer(ctx).QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

func (r *repositoryImpl) Store(ctx context.Context, userId int, t Transaction) (Transaction, error) {
	query := `INSERT INTO transactions 
    			(user_id, title, amount, type, date, is_paid, paid_date, category_id, financial_priority, budget_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) 
			  RETURNING id`
	err := r.getQueryer(ctx).QueryRow(ctx, query,
		userId,
		t.Title,
		t.Amount,
		string(t.Type),
		t.Date,
		t.IsPaid,
		nullableDate(t.PaidDate),
		t.CategoryId,
		nullablePriority(t.FinancialPriority),
		t.CustomBudgetId,
	).Scan(&t.Id)
	if err != nil {
		err := fmt.Errorf("could not store transaction: %w", err)
		log.Error(err)
		return Transaction{}, err
	}
	return t, nil
}

func (r *repositoryImpl) UpdatePayment(ctx context.Context, userId int, id int, isPaid bool, paidDate time.Time, bucketId *int) (Transaction, error) {
	query := `UPDATE transactions SET is_paid = $3, paid_date = $4, budget_id = $5 
			  WHERE user_id = $1 AND id = $2 
			  RETURNING ` + selectColumns
	t, err := scanTransaction(r.getQueryer(ctx).QueryRow(ctx, query, userId, id, isPaid, nullableDate(paidDate), bucketId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("could not update payment of transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *repositoryImpl) UpdateAssignment(ctx context.Context, userId int, id int, assignment Assignment) (Transaction, error) {
	query := `UPDATE transactions SET category_id = $3, financial_priority = $4, budget_id = $5 
			  WHERE user_id = $1 AND id = $2 
			  RETURNING ` + selectColumns
	t, err := scanTransaction(r.getQueryer(ctx).QueryRow(ctx, query, userId, id,
		assignment.CategoryId,
		nullablePriority(assignment.FinancialPriority),
		assignment.CustomBudgetId,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("could not update assignment of transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.getQueryer(ctx).Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		return false, fmt.Errorf("could not delete transaction %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *repositoryImpl) DeleteByBucket(ctx context.Context, userId int, budgetId int) (int, error) {
	result, err := r.getQueryer(ctx).Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND budget_id = $2`, userId, budgetId)
	if err != nil {
		return 0, fmt.Errorf("could not delete transactions of budget %d: %w", budgetId, err)
	}
	return int(result.RowsAffected()), nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var transactionType string
	var amount decimal.Decimal
	var paidDate *time.Time
	var financialPriority *string
	err := row.Scan(
		&t.Id,
		&t.Title,
		&amount,
		&transactionType,
		&t.Date,
		&t.IsPaid,
		&paidDate,
		&t.CategoryId,
		&financialPriority,
		&t.CustomBudgetId,
	)
	if err != nil {
		return Transaction{}, err
	}
	t.Amount = amount
	t.Type = Type(transactionType)
	if paidDate != nil {
		t.PaidDate = *paidDate
	}
	if financialPriority != nil {
		t.FinancialPriority = priority.Priority(*financialPriority)
	}
	return t, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullablePriority(p priority.Priority) *string {
	if p == priority.None {
		return nil
	}
	s := string(p)
	return &s
}
