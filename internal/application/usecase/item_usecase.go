package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/repository"
)

// ItemUseCase maintains the items master. Item codes are stored upper-case.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase builds the use case.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create adds an item; the code must be new.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.ItemRequest) (*dto.ItemResponse, error) {
	item, err := normalizeItem(in)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, item.ItemCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Update replaces description and uom of an existing item.
func (uc *ItemUseCase) Update(ctx context.Context, itemCode string, in dto.ItemRequest) (*dto.ItemResponse, error) {
	in.ItemCode = itemCode
	item, err := normalizeItem(in)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, item.ItemCode)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List returns every item ordered by code.
func (uc *ItemUseCase) List(ctx context.Context) ([]dto.ItemResponse, error) {
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, *toItemResponse(it))
	}
	return out, nil
}

// Delete removes an item.
func (uc *ItemUseCase) Delete(ctx context.Context, itemCode string) error {
	return uc.repo.Delete(ctx, strings.ToUpper(strings.TrimSpace(itemCode)))
}

func normalizeItem(in dto.ItemRequest) (*entity.Item, error) {
	code := strings.ToUpper(strings.TrimSpace(in.ItemCode))
	if code == "" {
		return nil, domain.Invalid("item code is required")
	}
	return &entity.Item{
		ItemCode:    code,
		Description: strings.TrimSpace(in.Description),
		UOM:         strings.ToUpper(strings.TrimSpace(in.UOM)),
	}, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{ItemCode: it.ItemCode, Description: it.Description, UOM: it.UOM}
}
