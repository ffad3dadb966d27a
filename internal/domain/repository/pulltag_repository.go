package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// KitUpdate is the pulltag snapshot written by an initial kitting pass.
type KitUpdate struct {
	KittedQty       int64
	BackorderQty    decimal.Decimal
	BackorderStatus string
	Warehouse       string
	KittedOn        time.Time
	UpdatedBy       string
}

// BackorderUpdate is the pulltag snapshot written by a backorder fulfillment.
type BackorderUpdate struct {
	KittedQty       int64
	BackorderQty    decimal.Decimal
	BackorderStatus string
	ResolvedOn      *time.Time // nil keeps the stored value
	UpdatedBy       string
}

// ItemKey identifies the pulltags touched by an exported kitting log.
type ItemKey struct {
	JobNumber string
	LotNumber string
	ItemCode  string
}

// PulltagRepository is the persistence port for pulltags.
// Transition methods are conditional updates: they report whether the row was still
// in the expected state instead of assuming the read is current.
type PulltagRepository interface {
	InsertMany(ctx context.Context, tags []*entity.Pulltag) error
	// ListByBatch returns the batch rows ordered by upload time, job, lot, uid.
	ListByBatch(ctx context.Context, batchID string) ([]*entity.Pulltag, error)
	ListByJobLots(ctx context.Context, keys []entity.JobLot) ([]*entity.Pulltag, error)
	// MarkRequested moves the pending rows of a job/lot to requested and returns how many moved.
	MarkRequested(ctx context.Context, key entity.JobLot, batchID, user string, at time.Time) (int64, error)
	// MarkKitted applies the kitting snapshot only if the row is still requested.
	MarkKitted(ctx context.Context, uid string, upd KitUpdate) (bool, error)
	// ListOpenBackorders returns rows with backorder_qty > 0 ordered by backorder_qty desc.
	ListOpenBackorders(ctx context.Context, batchID, itemCode string) ([]*entity.Pulltag, error)
	// ApplyBackorder writes upd only if backorder_qty still equals expected.
	ApplyBackorder(ctx context.Context, uid string, expected decimal.Decimal, upd BackorderUpdate) (bool, error)
	// MarkExported moves kitted rows matching the keys to exported.
	MarkExported(ctx context.Context, keys []ItemKey, at time.Time) (int64, error)
	ListKittableBatches(ctx context.Context) ([]string, error)
	RecentBatchesByUser(ctx context.Context, user string, limit int) ([]string, error)
	// FindBatchByJobLot returns "" when the lot was never requested.
	FindBatchByJobLot(ctx context.Context, key entity.JobLot) (string, error)
}
