package ports

import "context"

// TxManager runs fn as one serializable transaction. Any error returned by fn
// rolls back every write made through ctx, including ledger and custody calls.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
