package budget

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/roofing-ops/internal/domain/entity"
	"github.com/jhoicas/roofing-ops/internal/domain/quantity"
)

func testReference() Reference {
	return Reference{
		RoofTypes: []*entity.RoofTypeCode{
			{RoofType: "Tile", CostCode: "R100"},
			{RoofType: "Shingle", CostCode: "R200"},
			{RoofType: "Shingle", CostCode: "R100"},
		},
		Items: []*entity.Item{
			{ItemCode: "TILE-A", Description: "Concrete tile", UOM: "SQ"},
			{ItemCode: "NC134", Description: "Coil nails", UOM: "BX"},
			{ItemCode: "FELT", Description: "Underlayment", UOM: "RL"},
		},
		Communities: []*entity.CommunityRule{
			{JobNumber: "12345", RoofType: "tile", CostCode: "r100", ItemCode: "TILE-A", ItemCodeQty: "Units Budget * 0.5"},
			{JobNumber: "12345", RoofType: "Tile", CostCode: "R100", ItemCode: "NC134", ItemCodeQty: "Units Budget * 0.5"},
			{JobNumber: "12345", RoofType: "Tile", CostCode: "R300", ItemCode: "FELT", ItemCodeQty: "2"},
			{JobNumber: "99999", RoofType: "Tile", CostCode: "R100", ItemCode: "FELT", ItemCodeQty: "Units Budget"},
		},
	}
}

func testOptions() Options {
	n := 0
	return Options{
		Policy:       quantity.NewPolicy([]string{"NC134"}),
		JobPrefixLen: 5,
		User:         "jdoe",
		Now:          time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		NewUID: func() string {
			n++
			return fmt.Sprintf("uid-%d", n)
		},
	}
}

func TestGenerate_EmitsPendingPulltags(t *testing.T) {
	lines := []entity.BudgetLine{
		{JobNumber: "12345-01", LotNumber: "0002", CostCode: "R100", UnitsBudget: 101},
		{JobNumber: "12345-01", LotNumber: "0002", CostCode: "R300", UnitsBudget: 4},
	}

	tags, warnings := Generate(lines, testReference(), testOptions())
	require.Empty(t, warnings)
	require.Len(t, tags, 3)

	tile := tags[0]
	assert.Equal(t, "uid-1", tile.UID)
	assert.Equal(t, "TILE-A", tile.ItemCode)
	assert.Equal(t, "Tile", tile.RoofType)
	assert.Equal(t, "R100", tile.CostCode)
	assert.Equal(t, "Concrete tile", tile.Description)
	assert.Equal(t, "SQ", tile.UOM)
	assert.Equal(t, "51", tile.Quantity.String())
	assert.Equal(t, entity.PulltagPending, tile.Status)
	assert.Equal(t, entity.BackorderNone, tile.BackorderStatus)
	assert.Zero(t, tile.KittedQty)
	assert.True(t, tile.BackorderQty.IsZero())
	assert.Equal(t, "jdoe", tile.UpdatedBy)
	assert.False(t, tile.UploadedOn.IsZero())

	assert.Equal(t, "NC134", tags[1].ItemCode)
	assert.Equal(t, "50.5", tags[1].Quantity.String())

	assert.Equal(t, "FELT", tags[2].ItemCode)
	assert.Equal(t, "2", tags[2].Quantity.String())
}

func TestGenerate_RoofTypeFirstMatchInTableOrder(t *testing.T) {
	lines := []entity.BudgetLine{
		{JobNumber: "12345-01", LotNumber: "1", CostCode: "R100", UnitsBudget: 10},
		{JobNumber: "12345-01", LotNumber: "1", CostCode: "R200", UnitsBudget: 10},
	}
	tags, _ := Generate(lines, testReference(), testOptions())
	require.NotEmpty(t, tags)
	for _, tag := range tags {
		assert.Equal(t, "Tile", tag.RoofType)
	}
}

func TestGenerate_NoRoofTypeWarns(t *testing.T) {
	lines := []entity.BudgetLine{
		{JobNumber: "12345-01", LotNumber: "7", CostCode: "X999", UnitsBudget: 10},
	}
	tags, warnings := Generate(lines, testReference(), testOptions())
	assert.Empty(t, tags)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnNoRoofType, warnings[0].Kind)
	assert.Equal(t, "7", warnings[0].LotNumber)
}

func TestGenerate_CommunityPrefix(t *testing.T) {
	lines := []entity.BudgetLine{
		{JobNumber: "99999-04", LotNumber: "1", CostCode: "R100", UnitsBudget: 3},
	}
	tags, _ := Generate(lines, testReference(), testOptions())
	require.Len(t, tags, 1)
	assert.Equal(t, "FELT", tags[0].ItemCode)
	assert.Equal(t, "3", tags[0].Quantity.String())
}

func TestGenerate_SkipsInvalidRulesAndUnknownItems(t *testing.T) {
	ref := testReference()
	ref.Communities = append(ref.Communities,
		&entity.CommunityRule{JobNumber: "12345", RoofType: "Tile", CostCode: "R100", ItemCode: "FELT", ItemCodeQty: "Units Budget / 0"},
		&entity.CommunityRule{JobNumber: "12345", RoofType: "Tile", CostCode: "R100", ItemCode: "GHOST", ItemCodeQty: "1"},
	)
	lines := []entity.BudgetLine{
		{JobNumber: "12345-01", LotNumber: "1", CostCode: "R100", UnitsBudget: 10},
	}

	tags, warnings := Generate(lines, ref, testOptions())
	assert.Len(t, tags, 2)
	require.Len(t, warnings, 2)
	assert.Equal(t, WarnInvalidRule, warnings[0].Kind)
	assert.Equal(t, WarnUnknownItem, warnings[1].Kind)
}

func TestGenerate_GroupsSortedByJobAndLot(t *testing.T) {
	lines := []entity.BudgetLine{
		{JobNumber: "12345-02", LotNumber: "1", CostCode: "R300", UnitsBudget: 1},
		{JobNumber: "12345-01", LotNumber: "2", CostCode: "R100", UnitsBudget: 1},
		{JobNumber: "12345-01", LotNumber: "1", CostCode: "R100", UnitsBudget: 1},
	}
	ref := testReference()
	ref.RoofTypes = append(ref.RoofTypes, &entity.RoofTypeCode{RoofType: "Tile", CostCode: "R300"})

	tags, _ := Generate(lines, ref, testOptions())
	require.NotEmpty(t, tags)
	assert.Equal(t, entity.JobLot{JobNumber: "12345-01", LotNumber: "1"}, entity.JobLot{JobNumber: tags[0].JobNumber, LotNumber: tags[0].LotNumber})
	assert.Equal(t, "12345-02", tags[len(tags)-1].JobNumber)
}
