package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var _ repository.BatchBackorderRepository = (*BatchBackorderRepo)(nil)

// BatchBackorderRepo is the in-memory batch backorder table.
type BatchBackorderRepo struct{ s *Store }

func (r *BatchBackorderRepo) GetByBatchItem(ctx context.Context, batchID, itemCode string) (*entity.BatchBackorder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("backorders.GetByBatchItem"); err != nil {
		return nil, err
	}
	for _, b := range r.s.backorders {
		if b.BatchID == batchID && b.ItemCode == itemCode {
			c := b
			return &c, nil
		}
	}
	return nil, nil
}

func (r *BatchBackorderRepo) CreateIfAbsent(ctx context.Context, bo *entity.BatchBackorder) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("backorders.CreateIfAbsent"); err != nil {
		return false, err
	}
	for _, b := range r.s.backorders {
		if b.BatchID == bo.BatchID && b.ItemCode == bo.ItemCode {
			return false, nil
		}
	}
	if bo.ID == "" {
		bo.ID = uuid.NewString()
	}
	r.s.backorders = append(r.s.backorders, *bo)
	return true, nil
}

func (r *BatchBackorderRepo) ListOpen(ctx context.Context, batchID string) ([]*entity.BatchBackorder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.BatchBackorder
	for _, b := range r.s.backorders {
		if (batchID == "" || b.BatchID == batchID) && b.IsOpen() {
			c := b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *BatchBackorderRepo) AddFulfillment(ctx context.Context, id string, f repository.Fulfillment) (*entity.BatchBackorder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("backorders.AddFulfillment"); err != nil {
		return nil, err
	}
	for i := range r.s.backorders {
		b := &r.s.backorders[i]
		if b.ID != id {
			continue
		}
		next := b.FulfilledQty.Add(f.Qty)
		if next.GreaterThan(b.ShortedQty) {
			return nil, domain.ErrConflict
		}
		b.FulfilledQty = next
		if f.Note != "" {
			b.Note = f.Note
		}
		if !next.LessThan(b.ShortedQty) {
			at := f.At
			b.ResolvedBy = strPtr(f.User)
			b.FulfillmentTime = &at
		}
		c := *b
		return &c, nil
	}
	return nil, domain.ErrNotFound
}
