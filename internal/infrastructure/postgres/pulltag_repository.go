package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var _ repository.PulltagRepository = (*PulltagRepo)(nil)

const pulltagColumns = `uid, job_number, lot_number, roof_type, item_code, cost_code, description, uom,
	quantity, kitted_qty, backorder_qty, backorder_status, status, batch_id, warehouse,
	requested_by, requested_on, kitted_on, resolved_on, exported_on, uploaded_on, updated_by`

// PulltagRepo implements PulltagRepository on PostgreSQL (pool or tx).
type PulltagRepo struct {
	q Querier
}

// NewPulltagRepository builds the adapter. Pass a pool or a tx.
func NewPulltagRepository(q Querier) *PulltagRepo {
	return &PulltagRepo{q: q}
}

func scanPulltag(row pgx.Row) (*entity.Pulltag, error) {
	var t entity.Pulltag
	err := row.Scan(
		&t.UID, &t.JobNumber, &t.LotNumber, &t.RoofType, &t.ItemCode, &t.CostCode, &t.Description, &t.UOM,
		&t.Quantity, &t.KittedQty, &t.BackorderQty, &t.BackorderStatus, &t.Status, &t.BatchID, &t.Warehouse,
		&t.RequestedBy, &t.RequestedOn, &t.KittedOn, &t.ResolvedOn, &t.ExportedOn, &t.UploadedOn, &t.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PulltagRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Pulltag, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pulltags: %w", err)
	}
	defer rows.Close()
	var list []*entity.Pulltag
	for rows.Next() {
		t, err := scanPulltag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pulltag: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// InsertMany writes every pulltag with one batched round trip.
func (r *PulltagRepo) InsertMany(ctx context.Context, tags []*entity.Pulltag) error {
	if len(tags) == 0 {
		return nil
	}
	query := `INSERT INTO pulltags (` + pulltagColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	batch := &pgx.Batch{}
	for _, t := range tags {
		batch.Queue(query,
			t.UID, t.JobNumber, t.LotNumber, t.RoofType, t.ItemCode, t.CostCode, t.Description, t.UOM,
			t.Quantity, t.KittedQty, t.BackorderQty, t.BackorderStatus, t.Status, t.BatchID, t.Warehouse,
			t.RequestedBy, t.RequestedOn, t.KittedOn, t.ResolvedOn, t.ExportedOn, t.UploadedOn, t.UpdatedBy,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	for range tags {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert pulltag: %w", err)
		}
	}
	return br.Close()
}

// ListByBatch lists the rows of a batch in kitting order.
func (r *PulltagRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Pulltag, error) {
	return r.list(ctx, `SELECT `+pulltagColumns+` FROM pulltags
		WHERE batch_id = $1
		ORDER BY uploaded_on, job_number, lot_number, uid`, batchID)
}

// ListByJobLots lists every row of the given job/lot pairs.
func (r *PulltagRepo) ListByJobLots(ctx context.Context, keys []entity.JobLot) ([]*entity.Pulltag, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	jobs := make([]string, len(keys))
	lots := make([]string, len(keys))
	for i, k := range keys {
		jobs[i], lots[i] = k.JobNumber, k.LotNumber
	}
	return r.list(ctx, `SELECT `+pulltagColumns+` FROM pulltags
		WHERE (job_number, lot_number) IN (SELECT * FROM unnest($1::text[], $2::text[]))
		ORDER BY uploaded_on, job_number, lot_number, uid`, jobs, lots)
}

// MarkRequested moves only the rows still pending.
func (r *PulltagRepo) MarkRequested(ctx context.Context, key entity.JobLot, batchID, user string, at time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE pulltags
		SET status = 'requested', batch_id = $3, requested_by = $4, requested_on = $5, updated_by = $4
		WHERE job_number = $1 AND lot_number = $2 AND status = 'pending'`,
		key.JobNumber, key.LotNumber, batchID, user, at,
	)
	if err != nil {
		return 0, fmt.Errorf("mark requested %s: %w", key, err)
	}
	return cmd.RowsAffected(), nil
}

// MarkKitted applies the snapshot only if the row is still requested.
func (r *PulltagRepo) MarkKitted(ctx context.Context, uid string, upd repository.KitUpdate) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE pulltags
		SET status = 'kitted', kitted_qty = $2, backorder_qty = $3, backorder_status = $4,
		    warehouse = $5, kitted_on = $6, updated_by = $7
		WHERE uid = $1 AND status = 'requested'`,
		uid, upd.KittedQty, upd.BackorderQty, upd.BackorderStatus, upd.Warehouse, upd.KittedOn, upd.UpdatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("mark kitted %s: %w", uid, err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListOpenBackorders lists the rows still owed for an item of a batch, largest backorder first.
func (r *PulltagRepo) ListOpenBackorders(ctx context.Context, batchID, itemCode string) ([]*entity.Pulltag, error) {
	return r.list(ctx, `SELECT `+pulltagColumns+` FROM pulltags
		WHERE batch_id = $1 AND item_code = $2 AND backorder_qty > 0
		ORDER BY backorder_qty DESC, lot_number, uid`, batchID, itemCode)
}

// ApplyBackorder writes the fulfillment only if backorder_qty was not changed since it was read.
func (r *PulltagRepo) ApplyBackorder(ctx context.Context, uid string, expected decimal.Decimal, upd repository.BackorderUpdate) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE pulltags
		SET kitted_qty = $3, backorder_qty = $4, backorder_status = $5,
		    resolved_on = COALESCE($6, resolved_on), updated_by = $7
		WHERE uid = $1 AND backorder_qty = $2`,
		uid, expected, upd.KittedQty, upd.BackorderQty, upd.BackorderStatus, upd.ResolvedOn, upd.UpdatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("apply backorder %s: %w", uid, err)
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkExported moves kitted rows matching the (job, lot, item) keys to exported.
func (r *PulltagRepo) MarkExported(ctx context.Context, keys []repository.ItemKey, at time.Time) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	jobs := make([]string, len(keys))
	lots := make([]string, len(keys))
	items := make([]string, len(keys))
	for i, k := range keys {
		jobs[i], lots[i], items[i] = k.JobNumber, k.LotNumber, k.ItemCode
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE pulltags
		SET status = 'exported', exported_on = $4
		WHERE status = 'kitted'
		  AND (job_number, lot_number, item_code) IN (SELECT * FROM unnest($1::text[], $2::text[], $3::text[]))`,
		jobs, lots, items, at,
	)
	if err != nil {
		return 0, fmt.Errorf("mark exported: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// ListKittableBatches lists batch ids that still have requested rows.
func (r *PulltagRepo) ListKittableBatches(ctx context.Context) ([]string, error) {
	return r.strings(ctx, `SELECT DISTINCT batch_id FROM pulltags
		WHERE status = 'requested' AND batch_id IS NOT NULL ORDER BY batch_id`)
}

// RecentBatchesByUser lists the user's batches, most recent request first.
func (r *PulltagRepo) RecentBatchesByUser(ctx context.Context, user string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.strings(ctx, `SELECT batch_id FROM pulltags
		WHERE requested_by = $1 AND batch_id IS NOT NULL AND requested_on IS NOT NULL
		GROUP BY batch_id
		ORDER BY max(requested_on) DESC, batch_id
		LIMIT $2`, user, limit)
}

// FindBatchByJobLot returns the latest batch the lot was requested in, or "".
func (r *PulltagRepo) FindBatchByJobLot(ctx context.Context, key entity.JobLot) (string, error) {
	list, err := r.strings(ctx, `SELECT batch_id FROM pulltags
		WHERE job_number = $1 AND lot_number = $2 AND batch_id IS NOT NULL
		ORDER BY requested_on DESC NULLS LAST
		LIMIT 1`, key.JobNumber, key.LotNumber)
	if err != nil || len(list) == 0 {
		return "", err
	}
	return list[0], nil
}

func (r *PulltagRepo) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query batch ids: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan batch id: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
