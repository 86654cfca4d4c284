package database

import "context"

// TransactorStub runs fn directly. It is meant for services backed by in-memory repositories.
type TransactorStub struct{}

func (TransactorStub) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
