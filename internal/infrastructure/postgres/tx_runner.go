package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/roofing-ops/internal/application/kitting"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var _ kitting.RowTxRunner = (*TxRunner)(nil)

// TxRunner runs callbacks inside a PostgreSQL transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner on the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunRow starts a transaction, runs fn with tx-bound repositories and commits.
// Any error from fn rolls the row back.
func (r *TxRunner) RunRow(ctx context.Context, fn func(
	pulltags repository.PulltagRepository,
	logs repository.KittingLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewPulltagRepository(tx), NewKittingLogRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
