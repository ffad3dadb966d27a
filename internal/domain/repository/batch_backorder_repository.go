package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// Fulfillment is one backorder fulfillment event applied to a BatchBackorder.
type Fulfillment struct {
	Qty       decimal.Decimal
	Note      string
	Warehouse string
	User      string
	At        time.Time
}

// BatchBackorderRepository is the persistence port for batch shortfalls.
type BatchBackorderRepository interface {
	// GetByBatchItem returns nil, nil when no row exists.
	GetByBatchItem(ctx context.Context, batchID, itemCode string) (*entity.BatchBackorder, error)
	// CreateIfAbsent inserts the row unless (batch_id, item_code) exists; reports whether it inserted.
	CreateIfAbsent(ctx context.Context, bo *entity.BatchBackorder) (bool, error)
	// ListOpen lists rows with fulfilled_qty < shorted_qty; an empty batchID lists all batches.
	ListOpen(ctx context.Context, batchID string) ([]*entity.BatchBackorder, error)
	// AddFulfillment increments fulfilled_qty unless it would pass shorted_qty (domain.ErrConflict),
	// stamping resolved_by/fulfillment_time when the shortfall is covered.
	AddFulfillment(ctx context.Context, id string, f Fulfillment) (*entity.BatchBackorder, error)
}
