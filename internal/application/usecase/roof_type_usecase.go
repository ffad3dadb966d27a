package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// RoofTypeUseCase maintains the roof type to cost code table.
// Table order matters: the first matching roof type wins during generation.
type RoofTypeUseCase struct {
	repo repository.RoofTypeRepository
}

// NewRoofTypeUseCase builds the use case.
func NewRoofTypeUseCase(repo repository.RoofTypeRepository) *RoofTypeUseCase {
	return &RoofTypeUseCase{repo: repo}
}

// Create appends a pair; both values are stored upper-case.
func (uc *RoofTypeUseCase) Create(ctx context.Context, in dto.RoofTypeRequest) (*dto.RoofTypeResponse, error) {
	rt, err := normalizeRoofType(in)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, rt); err != nil {
		return nil, err
	}
	return &dto.RoofTypeResponse{RoofType: rt.RoofType, CostCode: rt.CostCode}, nil
}

// List returns the table in its natural order.
func (uc *RoofTypeUseCase) List(ctx context.Context) ([]dto.RoofTypeResponse, error) {
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoofTypeResponse, 0, len(list))
	for _, rt := range list {
		out = append(out, dto.RoofTypeResponse{RoofType: rt.RoofType, CostCode: rt.CostCode})
	}
	return out, nil
}

// Delete removes a pair.
func (uc *RoofTypeUseCase) Delete(ctx context.Context, in dto.RoofTypeRequest) error {
	rt, err := normalizeRoofType(in)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, rt)
}

func normalizeRoofType(in dto.RoofTypeRequest) (*entity.RoofTypeCode, error) {
	rt := &entity.RoofTypeCode{
		RoofType: strings.ToUpper(strings.TrimSpace(in.RoofType)),
		CostCode: strings.ToUpper(strings.TrimSpace(in.CostCode)),
	}
	if rt.RoofType == "" || rt.CostCode == "" {
		return nil, domain.Invalid("roof type and cost code are required")
	}
	return rt, nil
}
