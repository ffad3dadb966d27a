package kitting

import (
	"context"

	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// RowTxRunner runs the writes of a single pulltag row atomically: the pulltag update and its
// kitting log commit together or not at all. Different rows are independent.
type RowTxRunner interface {
	RunRow(ctx context.Context, fn func(
		pulltags repository.PulltagRepository,
		logs repository.KittingLogRepository,
	) error) error
}
