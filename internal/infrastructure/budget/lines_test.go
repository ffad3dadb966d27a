package budget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rsc.io/pdf"

	"github.com/jhoicas/roofing-ops/internal/domain"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

func TestParseLines(t *testing.T) {
	lines := []string{
		"Budget Report                     Page 1",
		"12345-001 Sunset Ridge",
		"R-100 Shingles before any lot 10 SQ",
		"0012 2450 Plan 2 (B)",
		"R-100 Architectural shingles 30 yr 31.67 SQ",
		"NC134 Coil nails 1-1/4\" 2.5 BOX",
		"Lot 0012 total 34.17",
		"0013 2450 Plan 3 (C)",
		"r-200 Ridge cap 4 BNDL",
		"R-300 Unknown unit 4 GAL",
	}

	got := ParseLines(lines)
	require.Len(t, got, 3)
	assert.Equal(t, entity.BudgetLine{
		Community:   "Sunset Ridge",
		JobNumber:   "12345-001",
		LotNumber:   "0012",
		CostCode:    "R-100",
		Description: "Architectural shingles 30 yr",
		UnitsBudget: 31.67,
		UOM:         "SQ",
	}, got[0])
	assert.Equal(t, "NC134", got[1].CostCode)
	assert.Equal(t, 2.5, got[1].UnitsBudget)
	assert.Equal(t, "0013", got[2].LotNumber)
	assert.Equal(t, "R-200", got[2].CostCode)
}

func TestPageLines_GroupsByBaseline(t *testing.T) {
	glyphs := []pdf.Text{
		{X: 50, Y: 700.2, W: 5, FontSize: 10, S: "B"},
		{X: 10, Y: 700, W: 5, FontSize: 10, S: "R"},
		{X: 15, Y: 700, W: 5, FontSize: 10, S: "-"},
		{X: 20, Y: 699.8, W: 5, FontSize: 10, S: "1"},
		{X: 10, Y: 650, W: 5, FontSize: 10, S: "x"},
	}
	assert.Equal(t, []string{"R-1 B", "x"}, pageLines(glyphs))
}

func TestExtractLines_Garbage(t *testing.T) {
	_, err := ExtractLines(context.Background(), []byte("not a pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
