package repository

import (
	"context"
	"time"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// KittingLogFilter selects kitting logs. Empty fields do not filter.
// From is inclusive and To exclusive.
type KittingLogFilter struct {
	BatchIDs      []string
	Warehouses    []string
	KittingTypes  []string
	From          *time.Time
	To            *time.Time
	ExportBatchID string
}

// IsEmpty reports whether no criterion was given.
func (f KittingLogFilter) IsEmpty() bool {
	return len(f.BatchIDs) == 0 && len(f.Warehouses) == 0 && len(f.KittingTypes) == 0 &&
		f.From == nil && f.To == nil && f.ExportBatchID == ""
}

// KittingLogRepository is the persistence port for the append-only kitting log.
type KittingLogRepository interface {
	Create(ctx context.Context, log *entity.KittingLog) error
	List(ctx context.Context, filter KittingLogFilter) ([]*entity.KittingLog, error)
	// StampExport writes the export metadata on the given rows and returns how many changed.
	StampExport(ctx context.Context, ids []string, exportBatchID string, at time.Time) (int64, error)
}
