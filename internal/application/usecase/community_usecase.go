package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/quantity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// CommunityUseCase maintains the community item rules.
type CommunityUseCase struct {
	repo  repository.CommunityRuleRepository
	items repository.ItemRepository
}

// NewCommunityUseCase builds the use case.
func NewCommunityUseCase(repo repository.CommunityRuleRepository, items repository.ItemRepository) *CommunityUseCase {
	return &CommunityUseCase{repo: repo, items: items}
}

// Save creates (empty id) or replaces a rule. The quantity rule must parse and the item
// must exist in the items master.
func (uc *CommunityUseCase) Save(ctx context.Context, id string, in dto.CommunityRuleRequest) (*dto.CommunityRuleResponse, error) {
	rule := &entity.CommunityRule{
		ID:          id,
		JobNumber:   strings.TrimSpace(in.JobNumber),
		RoofType:    strings.TrimSpace(in.RoofType),
		CostCode:    strings.ToUpper(strings.TrimSpace(in.CostCode)),
		ItemCode:    strings.ToUpper(strings.TrimSpace(in.ItemCode)),
		UOM:         strings.ToUpper(strings.TrimSpace(in.UOM)),
		ItemCodeQty: strings.TrimSpace(in.ItemCodeQty),
		UpdatedAt:   time.Now(),
	}
	var missing []string
	for _, f := range [][2]string{
		{"job_number", rule.JobNumber},
		{"roof_type", rule.RoofType},
		{"cost_code", rule.CostCode},
		{"item_code", rule.ItemCode},
	} {
		if f[1] == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return nil, domain.Invalid("required fields missing", missing...)
	}
	parsed := quantity.Parse(rule.ItemCodeQty)
	if !parsed.Valid() {
		return nil, domain.Invalid("item_code_qty is not a valid rule", rule.ItemCodeQty)
	}
	item, err := uc.items.GetByCode(ctx, rule.ItemCode)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.Invalid("unknown item code", rule.ItemCode)
	}
	if rule.UOM == "" {
		rule.UOM = item.UOM
	}
	if err := uc.repo.Upsert(ctx, rule); err != nil {
		return nil, err
	}
	return toCommunityResponse(rule), nil
}

// Search finds rules by job number or roof type.
func (uc *CommunityUseCase) Search(ctx context.Context, q string, limit int) ([]dto.CommunityRuleResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	list, err := uc.repo.Search(ctx, strings.TrimSpace(q), limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommunityRuleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toCommunityResponse(r))
	}
	return out, nil
}

// Delete removes a rule.
func (uc *CommunityUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toCommunityResponse(r *entity.CommunityRule) *dto.CommunityRuleResponse {
	return &dto.CommunityRuleResponse{
		ID:          r.ID,
		JobNumber:   r.JobNumber,
		RoofType:    r.RoofType,
		CostCode:    r.CostCode,
		ItemCode:    r.ItemCode,
		UOM:         r.UOM,
		ItemCodeQty: r.ItemCodeQty,
		RuleKind:    quantity.Parse(r.ItemCodeQty).Kind.String(),
		UpdatedAt:   r.UpdatedAt,
	}
}
