package repository

import "context"

// ITransactionManager runs a unit of work that either commits as a whole or
// leaves the store untouched. Repositories called with the context handed to
// fn join the transaction.
type ITransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
