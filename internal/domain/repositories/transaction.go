package repositories

import "context"

// TxFn runs inside a transaction; repositories pick the tx up from ctx
type TxFn func(ctx context.Context) error

// TransactionManager makes a multi-table snapshot write atomic. Nested
// calls join the outer transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
