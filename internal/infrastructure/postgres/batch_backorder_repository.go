package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var _ repository.BatchBackorderRepository = (*BatchBackorderRepo)(nil)

const batchBackorderColumns = `id, batch_id, item_code, shorted_qty, fulfilled_qty, warehouse, note,
	resolved_by, fulfillment_time, created_at`

// BatchBackorderRepo implements BatchBackorderRepository (pool or tx).
type BatchBackorderRepo struct {
	q Querier
}

// NewBatchBackorderRepository builds the adapter.
func NewBatchBackorderRepository(q Querier) *BatchBackorderRepo {
	return &BatchBackorderRepo{q: q}
}

func scanBatchBackorder(row pgx.Row) (*entity.BatchBackorder, error) {
	var b entity.BatchBackorder
	err := row.Scan(&b.ID, &b.BatchID, &b.ItemCode, &b.ShortedQty, &b.FulfilledQty, &b.Warehouse, &b.Note,
		&b.ResolvedBy, &b.FulfillmentTime, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByBatchItem returns nil, nil when the batch has no shortfall for the item.
func (r *BatchBackorderRepo) GetByBatchItem(ctx context.Context, batchID, itemCode string) (*entity.BatchBackorder, error) {
	b, err := scanBatchBackorder(r.q.QueryRow(ctx, `SELECT `+batchBackorderColumns+`
		FROM batch_backorders WHERE batch_id = $1 AND item_code = $2`, batchID, itemCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch backorder: %w", err)
	}
	return b, nil
}

// CreateIfAbsent keeps the first shortfall recorded for (batch_id, item_code).
func (r *BatchBackorderRepo) CreateIfAbsent(ctx context.Context, bo *entity.BatchBackorder) (bool, error) {
	if bo.ID == "" {
		bo.ID = uuid.New().String()
	}
	cmd, err := r.q.Exec(ctx, `
		INSERT INTO batch_backorders (id, batch_id, item_code, shorted_qty, fulfilled_qty, warehouse, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (batch_id, item_code) DO NOTHING`,
		bo.ID, bo.BatchID, bo.ItemCode, bo.ShortedQty, bo.FulfilledQty, bo.Warehouse, bo.Note, bo.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert batch backorder: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListOpen lists shortfalls not yet covered; an empty batchID lists every batch.
func (r *BatchBackorderRepo) ListOpen(ctx context.Context, batchID string) ([]*entity.BatchBackorder, error) {
	rows, err := r.q.Query(ctx, `SELECT `+batchBackorderColumns+`
		FROM batch_backorders
		WHERE fulfilled_qty < shorted_qty AND ($1 = '' OR batch_id = $1)
		ORDER BY created_at, batch_id, item_code`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list open backorders: %w", err)
	}
	defer rows.Close()
	var list []*entity.BatchBackorder
	for rows.Next() {
		b, err := scanBatchBackorder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch backorder: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// AddFulfillment increments fulfilled_qty in one statement so two resolvers cannot pass shorted_qty.
func (r *BatchBackorderRepo) AddFulfillment(ctx context.Context, id string, f repository.Fulfillment) (*entity.BatchBackorder, error) {
	b, err := scanBatchBackorder(r.q.QueryRow(ctx, `
		UPDATE batch_backorders
		SET fulfilled_qty    = fulfilled_qty + $2,
		    note             = CASE WHEN $3 = '' THEN note ELSE $3 END,
		    resolved_by      = CASE WHEN fulfilled_qty + $2 >= shorted_qty THEN $4 ELSE resolved_by END,
		    fulfillment_time = CASE WHEN fulfilled_qty + $2 >= shorted_qty THEN $5 ELSE fulfillment_time END
		WHERE id = $1 AND fulfilled_qty + $2 <= shorted_qty
		RETURNING `+batchBackorderColumns,
		id, f.Qty, f.Note, f.User, f.At,
	))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("add fulfillment %s: %w", id, err)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM batch_backorders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check batch backorder %s: %w", id, err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrConflict
}
