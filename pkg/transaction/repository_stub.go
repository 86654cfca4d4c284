package transaction

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu           sync.Mutex
	nextId       int
	transactions map[int]Transaction
	userIds      map[int]int
	failDelete   bool
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		transactions: make(map[int]Transaction),
		userIds:      make(map[int]int),
	}
}

// WithTransaction restores the previous state when fn fails.
func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalTransactions := make(map[int]Transaction, len(r.transactions))
	for k, v := range r.transactions {
		originalTransactions[k] = v
	}
	originalUserIds := make(map[int]int, len(r.userIds))
	for k, v := range r.userIds {
		originalUserIds[k] = v
	}
	originalNextId := r.nextId
	r.mu.Unlock()

	err := fn(r)
	if err != nil {
		r.mu.Lock()
		r.transactions = originalTransactions
		r.userIds = originalUserIds
		r.nextId = originalNextId
		r.mu.Unlock()
	}
	return err
}

func (r *RepositoryStub) GetAll(ctx context.Context, userId int) ([]Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	transactions := make([]Transaction, 0)
	for id, t := range r.transactions {
		if r.userIds[id] == userId {
			transactions = append(transactions, t)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Id < transactions[j].Id
		}
		return transactions[i].Date.Before(transactions[j].Date)
	})
	return transactions, nil
}

func (r *RepositoryStub) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || r.userIds[id] != userId {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, nil
}

func (r *RepositoryStub) Store(ctx context.Context, userId int, t Transaction) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	t.Id = r.nextId
	r.transactions[t.Id] = t
	r.userIds[t.Id] = userId
	return t, nil
}

func (r *RepositoryStub) UpdatePayment(ctx context.Context, userId int, id int, isPaid bool, paidDate time.Time, bucketId *int) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || r.userIds[id] != userId {
		return Transaction{}, ErrTransactionNotFound
	}
	t.IsPaid = isPaid
	t.PaidDate = paidDate
	t.CustomBudgetId = bucketId
	r.transactions[id] = t
	return t, nil
}

func (r *RepositoryStub) UpdateAssignment(ctx context.Context, userId int, id int, assignment Assignment) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok || r.userIds[id] != userId {
		return Transaction{}, ErrTransactionNotFound
	}
	t.CategoryId = assignment.CategoryId
	t.FinancialPriority = assignment.FinancialPriority
	t.CustomBudgetId = assignment.CustomBudgetId
	r.transactions[id] = t
	return t, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, userId int, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[id]; !ok || r.userIds[id] != userId {
		return false, nil
	}
	delete(r.transactions, id)
	delete(r.userIds, id)
	return true, nil
}

func (r *RepositoryStub) DeleteByBucket(ctx context.Context, userId int, budgetId int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete {
		return 0, errors.New("database unavailable")
	}
	count := 0
	for id, t := range r.transactions {
		if r.userIds[id] == userId && t.BucketIs(budgetId) {
			delete(r.transactions, id)
			delete(r.userIds, id)
			count++
		}
	}
	return count, nil
}

// SetFailDelete makes DeleteByBucket fail, simulating an unavailable database.
func (r *RepositoryStub) SetFailDelete(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failDelete = fail
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId = 0
	r.transactions = make(map[int]Transaction)
	r.userIds = make(map[int]int)
	r.failDelete = false
}
