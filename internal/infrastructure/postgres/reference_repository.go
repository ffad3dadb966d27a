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

var (
	_ repository.ItemRepository          = (*ItemRepo)(nil)
	_ repository.RoofTypeRepository      = (*RoofTypeRepo)(nil)
	_ repository.CommunityRuleRepository = (*CommunityRuleRepo)(nil)
)

// ItemRepo items master on PostgreSQL.
type ItemRepo struct {
	q Querier
}

// NewItemRepository builds the adapter.
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func (r *ItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ItemCode, &it.Description, &it.UOM); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func (r *ItemRepo) ListAll(ctx context.Context) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT item_code, description, uom FROM items ORDER BY item_code`)
}

func (r *ItemRepo) ListByCodes(ctx context.Context, codes []string) ([]*entity.Item, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT item_code, description, uom FROM items WHERE item_code = ANY($1) ORDER BY item_code`, codes)
}

// GetByCode returns nil, nil for an unknown code.
func (r *ItemRepo) GetByCode(ctx context.Context, itemCode string) (*entity.Item, error) {
	var it entity.Item
	err := r.q.QueryRow(ctx, `SELECT item_code, description, uom FROM items WHERE item_code = $1`, itemCode).
		Scan(&it.ItemCode, &it.Description, &it.UOM)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	_, err := r.q.Exec(ctx, `INSERT INTO items (item_code, description, uom) VALUES ($1, $2, $3)`,
		item.ItemCode, item.Description, item.UOM)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	cmd, err := r.q.Exec(ctx, `UPDATE items SET description = $2, uom = $3 WHERE item_code = $1`,
		item.ItemCode, item.Description, item.UOM)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) Delete(ctx context.Context, itemCode string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM items WHERE item_code = $1`, itemCode)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RoofTypeRepo roof type / cost code table. The serial id keeps insertion order.
type RoofTypeRepo struct {
	q Querier
}

// NewRoofTypeRepository builds the adapter.
func NewRoofTypeRepository(q Querier) *RoofTypeRepo {
	return &RoofTypeRepo{q: q}
}

func (r *RoofTypeRepo) ListAll(ctx context.Context) ([]*entity.RoofTypeCode, error) {
	rows, err := r.q.Query(ctx, `SELECT roof_type, cost_code FROM roof_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roof types: %w", err)
	}
	defer rows.Close()
	var list []*entity.RoofTypeCode
	for rows.Next() {
		var rt entity.RoofTypeCode
		if err := rows.Scan(&rt.RoofType, &rt.CostCode); err != nil {
			return nil, fmt.Errorf("scan roof type: %w", err)
		}
		list = append(list, &rt)
	}
	return list, rows.Err()
}

func (r *RoofTypeRepo) Create(ctx context.Context, rt *entity.RoofTypeCode) error {
	_, err := r.q.Exec(ctx, `INSERT INTO roof_types (roof_type, cost_code) VALUES ($1, $2)`, rt.RoofType, rt.CostCode)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert roof type: %w", err)
	}
	return nil
}

func (r *RoofTypeRepo) Delete(ctx context.Context, rt *entity.RoofTypeCode) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM roof_types WHERE roof_type = $1 AND cost_code = $2`, rt.RoofType, rt.CostCode)
	if err != nil {
		return fmt.Errorf("delete roof type: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CommunityRuleRepo community item rules.
type CommunityRuleRepo struct {
	q Querier
}

// NewCommunityRuleRepository builds the adapter.
func NewCommunityRuleRepository(q Querier) *CommunityRuleRepo {
	return &CommunityRuleRepo{q: q}
}

const communityRuleColumns = `id, job_number, roof_type, cost_code, item_code, uom, item_code_qty, updated_at`

func (r *CommunityRuleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.CommunityRule, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list community rules: %w", err)
	}
	defer rows.Close()
	var list []*entity.CommunityRule
	for rows.Next() {
		var c entity.CommunityRule
		if err := rows.Scan(&c.ID, &c.JobNumber, &c.RoofType, &c.CostCode, &c.ItemCode, &c.UOM, &c.ItemCodeQty, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan community rule: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CommunityRuleRepo) ListAll(ctx context.Context) ([]*entity.CommunityRule, error) {
	return r.list(ctx, `SELECT `+communityRuleColumns+` FROM community_rules ORDER BY job_number, roof_type, cost_code, item_code`)
}

func (r *CommunityRuleRepo) Search(ctx context.Context, q string, limit int) ([]*entity.CommunityRule, error) {
	return r.list(ctx, `SELECT `+communityRuleColumns+` FROM community_rules
		WHERE $1 = '' OR job_number ILIKE '%' || $1 || '%' OR roof_type ILIKE '%' || $1 || '%'
		ORDER BY job_number, roof_type, cost_code, item_code
		LIMIT $2`, q, limit)
}

// Upsert inserts the rule or replaces the row with the same id.
func (r *CommunityRuleRepo) Upsert(ctx context.Context, rule *entity.CommunityRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO community_rules (`+communityRuleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			job_number = EXCLUDED.job_number, roof_type = EXCLUDED.roof_type, cost_code = EXCLUDED.cost_code,
			item_code = EXCLUDED.item_code, uom = EXCLUDED.uom, item_code_qty = EXCLUDED.item_code_qty,
			updated_at = EXCLUDED.updated_at`,
		rule.ID, rule.JobNumber, rule.RoofType, rule.CostCode, rule.ItemCode, rule.UOM, rule.ItemCodeQty, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert community rule: %w", err)
	}
	return nil
}

func (r *CommunityRuleRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM community_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete community rule: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
