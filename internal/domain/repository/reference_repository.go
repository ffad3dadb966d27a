package repository

import (
	"context"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// ItemRepository is the persistence port for the items master.
type ItemRepository interface {
	ListAll(ctx context.Context) ([]*entity.Item, error)
	GetByCode(ctx context.Context, itemCode string) (*entity.Item, error)
	ListByCodes(ctx context.Context, codes []string) ([]*entity.Item, error)
	Create(ctx context.Context, item *entity.Item) error
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, itemCode string) error
}

// RoofTypeRepository is the persistence port for roof type to cost code mappings.
type RoofTypeRepository interface {
	// ListAll returns mappings in the table's natural (insertion) order.
	ListAll(ctx context.Context) ([]*entity.RoofTypeCode, error)
	Create(ctx context.Context, rt *entity.RoofTypeCode) error
	Delete(ctx context.Context, rt *entity.RoofTypeCode) error
}

// CommunityRuleRepository is the persistence port for community item rules.
type CommunityRuleRepository interface {
	ListAll(ctx context.Context) ([]*entity.CommunityRule, error)
	// Search matches job_number or roof_type case-insensitively.
	Search(ctx context.Context, q string, limit int) ([]*entity.CommunityRule, error)
	Upsert(ctx context.Context, rule *entity.CommunityRule) error
	Delete(ctx context.Context, id string) error
}

// WarehouseRepository is the persistence port for warehouses.
type WarehouseRepository interface {
	List(ctx context.Context) ([]*entity.Warehouse, error)
	GetByName(ctx context.Context, name string) (*entity.Warehouse, error)
	Create(ctx context.Context, w *entity.Warehouse) error
	Delete(ctx context.Context, id string) error
}
