package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var _ repository.KittingLogRepository = (*KittingLogRepo)(nil)

// KittingLogRepo is the in-memory kitting log table.
type KittingLogRepo struct{ s *Store }

func (r *KittingLogRepo) Create(ctx context.Context, log *entity.KittingLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("logs.Create"); err != nil {
		return err
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	r.s.logs = append(r.s.logs, *log)
	return nil
}

func (r *KittingLogRepo) List(ctx context.Context, f repository.KittingLogFilter) ([]*entity.KittingLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("logs.List"); err != nil {
		return nil, err
	}
	var out []*entity.KittingLog
	for _, l := range r.s.logs {
		if !matches(l, f) {
			continue
		}
		c := l
		out = append(out, &c)
	}
	return out, nil
}

func matches(l entity.KittingLog, f repository.KittingLogFilter) bool {
	if len(f.BatchIDs) > 0 && !contains(f.BatchIDs, l.BatchID) {
		return false
	}
	if len(f.Warehouses) > 0 && !contains(f.Warehouses, l.Warehouse) {
		return false
	}
	if len(f.KittingTypes) > 0 && !contains(f.KittingTypes, l.KittingType) {
		return false
	}
	if f.From != nil && l.KittedOn.Before(*f.From) {
		return false
	}
	if f.To != nil && !l.KittedOn.Before(*f.To) {
		return false
	}
	if f.ExportBatchID != "" && (l.ExportBatchID == nil || *l.ExportBatchID != f.ExportBatchID) {
		return false
	}
	return true
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func (r *KittingLogRepo) StampExport(ctx context.Context, ids []string, exportBatchID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("logs.StampExport"); err != nil {
		return 0, err
	}
	var n int64
	for i := range r.s.logs {
		if !contains(ids, r.s.logs[i].ID) {
			continue
		}
		ts := at
		r.s.logs[i].LastExportedOn = &ts
		r.s.logs[i].ExportBatchID = strPtr(exportBatchID)
		n++
	}
	return n, nil
}
