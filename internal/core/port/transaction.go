package port

import "context"

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

// TransactionManager runs fn inside one storage transaction. Repositories
// called with the ctx handed to fn join it; a nested WithTransaction becomes a
// savepoint. Any error returned by fn rolls everything back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
