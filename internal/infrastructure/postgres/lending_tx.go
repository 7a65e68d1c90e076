package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/letsema/mfi/internal/domain/port"
	pkgpostgres "github.com/letsema/mfi/pkg/postgres"
)

// LendingTx implements port.LendingTransactor with a database transaction.
type LendingTx struct {
	pool *pgxpool.Pool
}

// NewLendingTx creates a transactor over pool.
func NewLendingTx(pool *pgxpool.Pool) *LendingTx {
	return &LendingTx{pool: pool}
}

// WithinTx hands fn repositories bound to one transaction. The transaction
// commits when fn returns nil.
func (t *LendingTx) WithinTx(
	ctx context.Context,
	fn func(loans port.LoanRepository, repayments port.RepaymentRepository) error,
) error {
	return pkgpostgres.WithTransaction(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(&LoanRepo{db: tx}, &RepaymentRepo{db: tx})
	})
}
