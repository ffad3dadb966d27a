package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/testutil/memstore"
)

func TestWarehouseUseCase_CreateUniqueName(t *testing.T) {
	ctx := context.Background()
	uc := NewWarehouseUseCase(memstore.New().Warehouses())

	w, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "  North Yard "})
	require.NoError(t, err)
	assert.Equal(t, "North Yard", w.Name)
	assert.NotEmpty(t, w.ID)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Name: "North Yard"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, uc.Delete(ctx, w.ID))
	assert.ErrorIs(t, uc.Delete(ctx, w.ID), domain.ErrNotFound)
}

func TestItemUseCase_NormalizesCode(t *testing.T) {
	ctx := context.Background()
	uc := NewItemUseCase(memstore.New().Items())

	it, err := uc.Create(ctx, dto.ItemRequest{ItemCode: " nc134 ", Description: "Coil nails", UOM: "bx"})
	require.NoError(t, err)
	assert.Equal(t, "NC134", it.ItemCode)
	assert.Equal(t, "BX", it.UOM)

	_, err = uc.Create(ctx, dto.ItemRequest{ItemCode: "NC134"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	upd, err := uc.Update(ctx, "nc134", dto.ItemRequest{Description: "Coil nails 1-1/4", UOM: "BX"})
	require.NoError(t, err)
	assert.Equal(t, "Coil nails 1-1/4", upd.Description)

	_, err = uc.Update(ctx, "MISSING", dto.ItemRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoofTypeUseCase_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	uc := NewRoofTypeUseCase(memstore.New().RoofTypes())

	_, err := uc.Create(ctx, dto.RoofTypeRequest{RoofType: "tile", CostCode: "r-100"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.RoofTypeRequest{RoofType: "shingle", CostCode: "r-200"})
	require.NoError(t, err)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, dto.RoofTypeResponse{RoofType: "TILE", CostCode: "R-100"}, list[0])
	assert.Equal(t, "SHINGLE", list[1].RoofType)

	_, err = uc.Create(ctx, dto.RoofTypeRequest{RoofType: "tile"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCommunityUseCase_Save(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	items := NewItemUseCase(store.Items())
	_, err := items.Create(ctx, dto.ItemRequest{ItemCode: "NC134", UOM: "BX"})
	require.NoError(t, err)
	uc := NewCommunityUseCase(store.Communities(), store.Items())

	tests := []struct {
		name    string
		in      dto.CommunityRuleRequest
		wantErr error
		kind    string
	}{
		{
			name: "multiply rule",
			in:   dto.CommunityRuleRequest{JobNumber: "12345", RoofType: "TILE", CostCode: "r-100", ItemCode: "nc134", ItemCodeQty: "Units Budget * 0.5"},
			kind: "multiply",
		},
		{
			name: "constant rule",
			in:   dto.CommunityRuleRequest{JobNumber: "12345", RoofType: "TILE", CostCode: "R-100", ItemCode: "NC134", ItemCodeQty: "4"},
			kind: "constant",
		},
		{
			name:    "garbage rule",
			in:      dto.CommunityRuleRequest{JobNumber: "12345", RoofType: "TILE", CostCode: "R-100", ItemCode: "NC134", ItemCodeQty: "lots"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "factor before units",
			in:      dto.CommunityRuleRequest{JobNumber: "12345", RoofType: "TILE", CostCode: "R-100", ItemCode: "NC134", ItemCodeQty: "2 * Units Budget"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown item",
			in:      dto.CommunityRuleRequest{JobNumber: "12345", RoofType: "TILE", CostCode: "R-100", ItemCode: "XX1", ItemCodeQty: "Units Budget"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing job",
			in:      dto.CommunityRuleRequest{RoofType: "TILE", CostCode: "R-100", ItemCode: "NC134", ItemCodeQty: "Units Budget"},
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Save(ctx, "", tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.kind, got.RuleKind)
			assert.Equal(t, "NC134", got.ItemCode)
			assert.Equal(t, "BX", got.UOM)
		})
	}

	found, err := uc.Search(ctx, "1234", 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestCommunityUseCase_MissingFieldsListed(t *testing.T) {
	uc := NewCommunityUseCase(memstore.New().Communities(), memstore.New().Items())
	_, err := uc.Save(context.Background(), "", dto.CommunityRuleRequest{ItemCodeQty: "Units Budget"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"job_number", "roof_type", "cost_code", "item_code"}, verr.Rows)
}
