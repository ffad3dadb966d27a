package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var _ repository.KittingLogRepository = (*KittingLogRepo)(nil)

const kittingLogColumns = `id, pulltag_uid, batch_id, item_code, description, cost_code, job_number, lot_number,
	quantity, note, kitting_type, kitted_by, kitted_on, warehouse, last_exported_on, export_batch_id`

// KittingLogRepo implements KittingLogRepository (pool or tx).
type KittingLogRepo struct {
	q Querier
}

// NewKittingLogRepository builds the adapter. Pass a pool or a tx.
func NewKittingLogRepository(q Querier) *KittingLogRepo {
	return &KittingLogRepo{q: q}
}

// Create appends a kitting log row.
func (r *KittingLogRepo) Create(ctx context.Context, log *entity.KittingLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO kitting_logs (`+kittingLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		log.ID, log.PulltagUID, log.BatchID, log.ItemCode, log.Description, log.CostCode, log.JobNumber, log.LotNumber,
		log.Quantity, log.Note, log.KittingType, log.KittedBy, log.KittedOn, log.Warehouse, log.LastExportedOn, log.ExportBatchID,
	)
	if err != nil {
		return fmt.Errorf("insert kitting log: %w", err)
	}
	return nil
}

// List returns the rows matching every non-empty filter field, oldest first.
func (r *KittingLogRepo) List(ctx context.Context, f repository.KittingLogFilter) ([]*entity.KittingLog, error) {
	where, args := kittingLogWhere(f)
	query := `SELECT ` + kittingLogColumns + ` FROM kitting_logs`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY kitted_on, lot_number, item_code, id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kitting logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.KittingLog
	for rows.Next() {
		var l entity.KittingLog
		if err := rows.Scan(
			&l.ID, &l.PulltagUID, &l.BatchID, &l.ItemCode, &l.Description, &l.CostCode, &l.JobNumber, &l.LotNumber,
			&l.Quantity, &l.Note, &l.KittingType, &l.KittedBy, &l.KittedOn, &l.Warehouse, &l.LastExportedOn, &l.ExportBatchID,
		); err != nil {
			return nil, fmt.Errorf("scan kitting log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// kittingLogWhere builds the AND-ed predicate and its positional arguments.
func kittingLogWhere(f repository.KittingLogFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.BatchIDs) > 0 {
		add("batch_id = ANY($%d)", f.BatchIDs)
	}
	if len(f.Warehouses) > 0 {
		add("warehouse = ANY($%d)", f.Warehouses)
	}
	if len(f.KittingTypes) > 0 {
		add("kitting_type = ANY($%d)", f.KittingTypes)
	}
	if f.From != nil {
		add("kitted_on >= $%d", *f.From)
	}
	if f.To != nil {
		add("kitted_on < $%d", *f.To)
	}
	if f.ExportBatchID != "" {
		add("export_batch_id = $%d", f.ExportBatchID)
	}
	return strings.Join(conds, " AND "), args
}

// StampExport records the export batch on the given rows.
func (r *KittingLogRepo) StampExport(ctx context.Context, ids []string, exportBatchID string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE kitting_logs SET last_exported_on = $2, export_batch_id = $3
		WHERE id = ANY($1::uuid[])`, ids, at, exportBatchID)
	if err != nil {
		return 0, fmt.Errorf("stamp export %s: %w", exportBatchID, err)
	}
	return cmd.RowsAffected(), nil
}
