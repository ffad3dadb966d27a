package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

var (
	_ repository.ItemRepository          = (*ItemRepo)(nil)
	_ repository.RoofTypeRepository      = (*RoofTypeRepo)(nil)
	_ repository.CommunityRuleRepository = (*CommunityRuleRepo)(nil)
	_ repository.WarehouseRepository     = (*WarehouseRepo)(nil)
)

// ItemRepo is the in-memory items master.
type ItemRepo struct{ s *Store }

func (r *ItemRepo) ListAll(ctx context.Context) ([]*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("items.ListAll"); err != nil {
		return nil, err
	}
	out := make([]*entity.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		c := it
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out, nil
}

func (r *ItemRepo) GetByCode(ctx context.Context, itemCode string) (*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.ItemCode == itemCode {
			c := it
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) ListByCodes(ctx context.Context, codes []string) ([]*entity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Item
	for _, it := range r.s.items {
		if contains(codes, it.ItemCode) {
			c := it
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.ItemCode == item.ItemCode {
			return domain.ErrDuplicate
		}
	}
	r.s.items = append(r.s.items, *item)
	return nil
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.items {
		if r.s.items[i].ItemCode == item.ItemCode {
			r.s.items[i] = *item
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *ItemRepo) Delete(ctx context.Context, itemCode string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.items {
		if r.s.items[i].ItemCode == itemCode {
			r.s.items = append(r.s.items[:i], r.s.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// RoofTypeRepo is the in-memory roof type table.
type RoofTypeRepo struct{ s *Store }

func (r *RoofTypeRepo) ListAll(ctx context.Context) ([]*entity.RoofTypeCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("roofTypes.ListAll"); err != nil {
		return nil, err
	}
	out := make([]*entity.RoofTypeCode, 0, len(r.s.roofTypes))
	for _, rt := range r.s.roofTypes {
		c := rt
		out = append(out, &c)
	}
	return out, nil
}

func (r *RoofTypeRepo) Create(ctx context.Context, rt *entity.RoofTypeCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.roofTypes {
		if x == *rt {
			return domain.ErrDuplicate
		}
	}
	r.s.roofTypes = append(r.s.roofTypes, *rt)
	return nil
}

func (r *RoofTypeRepo) Delete(ctx context.Context, rt *entity.RoofTypeCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.roofTypes {
		if x == *rt {
			r.s.roofTypes = append(r.s.roofTypes[:i], r.s.roofTypes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// CommunityRuleRepo is the in-memory community rule table.
type CommunityRuleRepo struct{ s *Store }

func (r *CommunityRuleRepo) ListAll(ctx context.Context) ([]*entity.CommunityRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("communities.ListAll"); err != nil {
		return nil, err
	}
	out := make([]*entity.CommunityRule, 0, len(r.s.rules))
	for _, cr := range r.s.rules {
		c := cr
		out = append(out, &c)
	}
	return out, nil
}

func (r *CommunityRuleRepo) Search(ctx context.Context, q string, limit int) ([]*entity.CommunityRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q = strings.ToLower(q)
	var out []*entity.CommunityRule
	for _, cr := range r.s.rules {
		if q != "" && !strings.Contains(strings.ToLower(cr.JobNumber), q) && !strings.Contains(strings.ToLower(cr.RoofType), q) {
			continue
		}
		c := cr
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *CommunityRuleRepo) Upsert(ctx context.Context, rule *entity.CommunityRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	for i := range r.s.rules {
		if r.s.rules[i].ID == rule.ID {
			r.s.rules[i] = *rule
			return nil
		}
	}
	r.s.rules = append(r.s.rules, *rule)
	return nil
}

func (r *CommunityRuleRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.rules {
		if r.s.rules[i].ID == id {
			r.s.rules = append(r.s.rules[:i], r.s.rules[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// WarehouseRepo is the in-memory warehouse table.
type WarehouseRepo struct{ s *Store }

func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		c := w
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *WarehouseRepo) GetByName(ctx context.Context, name string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("warehouses.GetByName"); err != nil {
		return nil, err
	}
	for _, w := range r.s.warehouses {
		if w.Name == name {
			c := w
			return &c, nil
		}
	}
	return nil, nil
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.warehouses {
		if x.Name == w.Name {
			return domain.ErrDuplicate
		}
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	r.s.warehouses = append(r.s.warehouses, *w)
	return nil
}

func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.warehouses {
		if r.s.warehouses[i].ID == id {
			r.s.warehouses = append(r.s.warehouses[:i], r.s.warehouses[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
