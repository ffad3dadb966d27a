package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var _ repository.PulltagRepository = (*PulltagRepo)(nil)

// PulltagRepo is the in-memory pulltag table.
type PulltagRepo struct{ s *Store }

func (r *PulltagRepo) InsertMany(ctx context.Context, tags []*entity.Pulltag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.InsertMany"); err != nil {
		return err
	}
	for _, t := range tags {
		if _, ok := r.s.pulltags[t.UID]; ok {
			return domain.ErrDuplicate
		}
	}
	for _, t := range tags {
		r.s.pulltags[t.UID] = *t
		r.s.order = append(r.s.order, t.UID)
	}
	return nil
}

// rows returns copies of the rows matching keep, in insertion order; caller holds mu.
func (r *PulltagRepo) rows(keep func(*entity.Pulltag) bool) []*entity.Pulltag {
	var out []*entity.Pulltag
	for _, uid := range r.s.order {
		t := r.s.pulltags[uid]
		if keep(&t) {
			c := t
			out = append(out, &c)
		}
	}
	return out
}

func (r *PulltagRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Pulltag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.ListByBatch"); err != nil {
		return nil, err
	}
	out := r.rows(func(t *entity.Pulltag) bool { return t.BatchID != nil && *t.BatchID == batchID })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.UploadedOn.Equal(b.UploadedOn) {
			return a.UploadedOn.Before(b.UploadedOn)
		}
		if a.JobNumber != b.JobNumber {
			return a.JobNumber < b.JobNumber
		}
		if a.LotNumber != b.LotNumber {
			return a.LotNumber < b.LotNumber
		}
		return a.UID < b.UID
	})
	return out, nil
}

func (r *PulltagRepo) ListByJobLots(ctx context.Context, keys []entity.JobLot) ([]*entity.Pulltag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.ListByJobLots"); err != nil {
		return nil, err
	}
	want := make(map[entity.JobLot]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	return r.rows(func(t *entity.Pulltag) bool {
		return want[entity.JobLot{JobNumber: t.JobNumber, LotNumber: t.LotNumber}]
	}), nil
}

func (r *PulltagRepo) MarkRequested(ctx context.Context, key entity.JobLot, batchID, user string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.MarkRequested"); err != nil {
		return 0, err
	}
	var n int64
	for uid, t := range r.s.pulltags {
		if t.JobNumber != key.JobNumber || t.LotNumber != key.LotNumber || t.Status != entity.PulltagPending {
			continue
		}
		ts := at
		t.Status = entity.PulltagRequested
		t.BatchID = strPtr(batchID)
		t.RequestedBy = strPtr(user)
		t.RequestedOn = &ts
		t.UpdatedBy = user
		r.s.pulltags[uid] = t
		n++
	}
	return n, nil
}

func (r *PulltagRepo) MarkKitted(ctx context.Context, uid string, upd repository.KitUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.MarkKitted"); err != nil {
		return false, err
	}
	t, ok := r.s.pulltags[uid]
	if !ok || t.Status != entity.PulltagRequested {
		return false, nil
	}
	ts := upd.KittedOn
	t.Status = entity.PulltagKitted
	t.KittedQty = upd.KittedQty
	t.BackorderQty = upd.BackorderQty
	t.BackorderStatus = upd.BackorderStatus
	t.Warehouse = strPtr(upd.Warehouse)
	t.KittedOn = &ts
	t.UpdatedBy = upd.UpdatedBy
	r.s.pulltags[uid] = t
	return true, nil
}

func (r *PulltagRepo) ListOpenBackorders(ctx context.Context, batchID, itemCode string) ([]*entity.Pulltag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.ListOpenBackorders"); err != nil {
		return nil, err
	}
	out := r.rows(func(t *entity.Pulltag) bool {
		return t.BatchID != nil && *t.BatchID == batchID && t.ItemCode == itemCode && t.BackorderQty.IsPositive()
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.BackorderQty.Cmp(b.BackorderQty); c != 0 {
			return c > 0
		}
		if a.LotNumber != b.LotNumber {
			return a.LotNumber < b.LotNumber
		}
		return a.UID < b.UID
	})
	return out, nil
}

func (r *PulltagRepo) ApplyBackorder(ctx context.Context, uid string, expected decimal.Decimal, upd repository.BackorderUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.ApplyBackorder"); err != nil {
		return false, err
	}
	t, ok := r.s.pulltags[uid]
	if !ok || !t.BackorderQty.Equal(expected) {
		return false, nil
	}
	t.KittedQty = upd.KittedQty
	t.BackorderQty = upd.BackorderQty
	t.BackorderStatus = upd.BackorderStatus
	if upd.ResolvedOn != nil {
		ts := *upd.ResolvedOn
		t.ResolvedOn = &ts
	}
	t.UpdatedBy = upd.UpdatedBy
	r.s.pulltags[uid] = t
	return true, nil
}

func (r *PulltagRepo) MarkExported(ctx context.Context, keys []repository.ItemKey, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("pulltags.MarkExported"); err != nil {
		return 0, err
	}
	want := make(map[repository.ItemKey]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var n int64
	for uid, t := range r.s.pulltags {
		if t.Status != entity.PulltagKitted || !want[repository.ItemKey{JobNumber: t.JobNumber, LotNumber: t.LotNumber, ItemCode: t.ItemCode}] {
			continue
		}
		ts := at
		t.Status = entity.PulltagExported
		t.ExportedOn = &ts
		r.s.pulltags[uid] = t
		n++
	}
	return n, nil
}

func (r *PulltagRepo) ListKittableBatches(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range r.s.pulltags {
		if t.Status == entity.PulltagRequested && t.BatchID != nil && !seen[*t.BatchID] {
			seen[*t.BatchID] = true
			out = append(out, *t.BatchID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *PulltagRepo) RecentBatchesByUser(ctx context.Context, user string, limit int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	latest := map[string]time.Time{}
	for _, t := range r.s.pulltags {
		if t.BatchID == nil || t.RequestedBy == nil || *t.RequestedBy != user || t.RequestedOn == nil {
			continue
		}
		if cur, ok := latest[*t.BatchID]; !ok || t.RequestedOn.After(cur) {
			latest[*t.BatchID] = *t.RequestedOn
		}
	}
	out := make([]string, 0, len(latest))
	for id := range latest {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if !latest[out[i]].Equal(latest[out[j]]) {
			return latest[out[i]].After(latest[out[j]])
		}
		return out[i] < out[j]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PulltagRepo) FindBatchByJobLot(ctx context.Context, key entity.JobLot) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var (
		batch string
		when  time.Time
	)
	for _, t := range r.s.pulltags {
		if t.JobNumber != key.JobNumber || t.LotNumber != key.LotNumber || t.BatchID == nil {
			continue
		}
		var at time.Time
		if t.RequestedOn != nil {
			at = *t.RequestedOn
		}
		if batch == "" || at.After(when) {
			batch, when = *t.BatchID, at
		}
	}
	return batch, nil
}
